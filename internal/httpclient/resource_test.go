package httpclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/containerd/errdefs"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/stacklok/dbcluster-console/internal/httpclient"
	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

func TestResourceClient(t *testing.T) {
	t.Parallel()
	RegisterFailHandler(Fail)
	RunSpecs(t, "Console Resource Client Suite")
}

// clusterServer serves a single database cluster and enforces resourceVersion checks on PUT.
type clusterServer struct {
	mu      sync.Mutex
	cluster *v1alpha1.DatabaseCluster
	puts    int
}

func (s *clusterServer) bump() {
	rv, _ := strconv.Atoi(s.cluster.ResourceVersion)
	s.cluster.ResourceVersion = strconv.Itoa(rv + 1)
}

func (s *clusterServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/namespaces/default/database-clusters":
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{s.cluster}, "count": 1})
	case r.Method == http.MethodGet && r.URL.Path == "/v1/namespaces/default/database-clusters/orders":
		_ = json.NewEncoder(w).Encode(s.cluster)
	case r.Method == http.MethodPut && r.URL.Path == "/v1/namespaces/default/database-clusters/orders":
		s.puts++
		body, _ := io.ReadAll(r.Body)
		var in v1alpha1.DatabaseCluster
		if err := json.Unmarshal(body, &in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"malformed body","code":"invalid"}`))
			return
		}
		if in.ResourceVersion != s.cluster.ResourceVersion {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"the object has been modified","code":"conflict"}`))
			return
		}
		s.cluster.Spec = in.Spec
		s.bump()
		_ = json.NewEncoder(w).Encode(s.cluster)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found","code":"not_found"}`))
	}
}

var _ = Describe("ConsoleClient", func() {
	var (
		ctx     context.Context
		backend *clusterServer
		client  *httpclient.ConsoleClient
		key     = types.NamespacedName{Namespace: "default", Name: "orders"}
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = &clusterServer{cluster: &v1alpha1.DatabaseCluster{
			ObjectMeta: metav1.ObjectMeta{
				Name:            "orders",
				Namespace:       "default",
				Generation:      1,
				ResourceVersion: "100",
			},
			Spec: v1alpha1.DatabaseClusterSpec{
				Engine: v1alpha1.Engine{Type: v1alpha1.EngineTypePostgresql, Replicas: 1},
			},
		}}
		mockServer := newTestServer(backend)
		DeferCleanup(mockServer.Close)

		var err error
		client, err = httpclient.NewConsoleClient(mockServer.URL+"/", httpclient.NewDefaultClient(5*time.Second))
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects invalid server URLs", func() {
		_, err := httpclient.NewConsoleClient("ftp://example.com", nil)
		Expect(err).To(MatchError(ContainSubstring("scheme must be http or https")))
	})

	It("gets a cluster", func() {
		cluster, err := client.GetDatabaseCluster(ctx, key)
		Expect(err).NotTo(HaveOccurred())
		Expect(cluster.ResourceVersion).To(Equal("100"))
		Expect(cluster.Spec.Engine.Replicas).To(Equal(int32(1)))
	})

	It("lists clusters in a namespace", func() {
		clusters, err := client.ListDatabaseClusters(ctx, "default")
		Expect(err).NotTo(HaveOccurred())
		Expect(clusters).To(HaveLen(1))
		Expect(clusters[0].Name).To(Equal("orders"))
	})

	It("reports missing objects as not found", func() {
		_, err := client.GetDatabaseCluster(ctx, types.NamespacedName{Namespace: "default", Name: "missing"})
		Expect(err).To(HaveOccurred())
		Expect(errdefs.IsNotFound(err)).To(BeTrue())
	})

	It("reports a stale resourceVersion as a conflict", func() {
		cluster, err := client.GetDatabaseCluster(ctx, key)
		Expect(err).NotTo(HaveOccurred())

		backend.mu.Lock()
		backend.bump()
		backend.mu.Unlock()

		cluster.Spec.Engine.Replicas = 3
		_, err = client.UpdateDatabaseCluster(ctx, cluster)
		Expect(err).To(HaveOccurred())
		Expect(mutation.IsConflict(err)).To(BeTrue())
	})

	It("lets the coordinator rebase over a concurrent status write", func() {
		baseline, err := client.GetDatabaseCluster(ctx, key)
		Expect(err).NotTo(HaveOccurred())

		backend.mu.Lock()
		backend.bump()
		backend.mu.Unlock()

		clusters := client.DatabaseClusters()
		coord, err := mutation.NewCoordinator(baseline, mutation.Collaborators[*v1alpha1.DatabaseCluster]{
			Mutator:   clusters.Mutator(),
			Refetcher: clusters.Refetcher(key),
		}, mutation.WithRetryDelay(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		desired := baseline.DeepCopy()
		desired.Spec.Engine.Replicas = 3

		result, err := coord.Apply(ctx, desired)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Spec.Engine.Replicas).To(Equal(int32(3)))
		Expect(result.ResourceVersion).To(Equal("102"))
		backend.mu.Lock()
		defer backend.mu.Unlock()
		Expect(backend.puts).To(Equal(2))
	})
})
