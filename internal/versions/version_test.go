package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVersionInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		version       string
		commit        string
		buildDate     string
		wantVersion   string
		wantBuildDate string
	}{
		{
			name:          "release build",
			version:       "v1.4.0",
			commit:        "0123456789abcdef",
			buildDate:     "2026-03-01T10:00:00Z",
			wantVersion:   "v1.4.0",
			wantBuildDate: "2026-03-01 10:00:00 UTC",
		},
		{
			name:          "dev build named after commit",
			version:       "dev",
			commit:        "0123456789abcdef",
			buildDate:     "not-a-timestamp",
			wantVersion:   "build-01234567",
			wantBuildDate: "not-a-timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := newVersionInfo(tt.version, tt.commit, tt.buildDate)
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.commit, info.Commit)
			assert.Equal(t, tt.wantBuildDate, info.BuildDate)
			assert.Equal(t, APIVersion, info.APIVersion)
			assert.Equal(t, runtime.Version(), info.GoVersion)
			assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
		})
	}
}
