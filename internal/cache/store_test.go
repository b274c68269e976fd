package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

var _ mutation.Cache[*v1alpha1.DatabaseCluster] = (*Entry[*v1alpha1.DatabaseCluster])(nil)

func cluster(namespace, name, rv string) *v1alpha1.DatabaseCluster {
	return &v1alpha1.DatabaseCluster{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name, ResourceVersion: rv, Generation: 1},
		Spec: v1alpha1.DatabaseClusterSpec{
			Engine: v1alpha1.Engine{Type: v1alpha1.EngineTypePostgresql, Replicas: 1},
		},
	}
}

func TestStore_GetReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewStore[*v1alpha1.DatabaseCluster]()
	original := cluster("prod", "orders", "100")
	store.Upsert(original)

	// Mutating the caller's object does not reach the store.
	original.Spec.Engine.Replicas = 9

	got, ok := store.Get(types.NamespacedName{Namespace: "prod", Name: "orders"})
	require.True(t, ok)
	assert.Equal(t, int32(1), got.Spec.Engine.Replicas)

	// Neither does mutating what the store handed out.
	got.Spec.Engine.Replicas = 5
	again, _ := store.Get(types.NamespacedName{Namespace: "prod", Name: "orders"})
	assert.Equal(t, int32(1), again.Spec.Engine.Replicas)
}

func TestStore_ListAndDelete(t *testing.T) {
	t.Parallel()

	store := NewStore[*v1alpha1.DatabaseCluster]()
	store.Upsert(cluster("prod", "orders", "1"))
	store.Upsert(cluster("prod", "billing", "2"))
	store.Upsert(cluster("staging", "orders", "3"))

	assert.Equal(t, 3, store.Len())

	prod := store.List("prod")
	require.Len(t, prod, 2)
	assert.Equal(t, "billing", prod[0].Name)
	assert.Equal(t, "orders", prod[1].Name)

	all := store.List("")
	require.Len(t, all, 3)
	assert.Equal(t, "staging", all[2].Namespace)

	assert.True(t, store.Delete(types.NamespacedName{Namespace: "prod", Name: "orders"}))
	assert.False(t, store.Delete(types.NamespacedName{Namespace: "prod", Name: "orders"}))
	assert.Equal(t, 2, store.Len())

	_, ok := store.Get(types.NamespacedName{Namespace: "prod", Name: "orders"})
	assert.False(t, ok)
}

func TestStore_UpsertReplaces(t *testing.T) {
	t.Parallel()

	store := NewStore[*v1alpha1.DatabaseCluster]()
	store.Upsert(cluster("prod", "orders", "100"))
	store.Upsert(cluster("prod", "orders", "101"))

	got, ok := store.Get(types.NamespacedName{Namespace: "prod", Name: "orders"})
	require.True(t, ok)
	assert.Equal(t, "101", got.ResourceVersion)
	assert.Equal(t, 1, store.Len())
}

func TestStore_UpsertIfVersion(t *testing.T) {
	t.Parallel()

	key := types.NamespacedName{Namespace: "prod", Name: "orders"}

	t.Run("stores into an empty slot", func(t *testing.T) {
		t.Parallel()

		store := NewStore[*v1alpha1.DatabaseCluster]()
		assert.True(t, store.UpsertIfVersion(cluster("prod", "orders", "101"), "100"))

		got, ok := store.Get(key)
		require.True(t, ok)
		assert.Equal(t, "101", got.ResourceVersion)
	})

	t.Run("replaces the version it started from", func(t *testing.T) {
		t.Parallel()

		store := NewStore[*v1alpha1.DatabaseCluster]()
		store.Upsert(cluster("prod", "orders", "100"))
		assert.True(t, store.UpsertIfVersion(cluster("prod", "orders", "101"), "100"))

		got, _ := store.Get(key)
		assert.Equal(t, "101", got.ResourceVersion)
	})

	t.Run("keeps an object stored in the meantime", func(t *testing.T) {
		t.Parallel()

		store := NewStore[*v1alpha1.DatabaseCluster]()
		store.Upsert(cluster("prod", "orders", "102"))
		assert.False(t, store.UpsertIfVersion(cluster("prod", "orders", "101"), "100"))

		got, _ := store.Get(key)
		assert.Equal(t, "102", got.ResourceVersion)
	})
}

func TestEntry(t *testing.T) {
	t.Parallel()

	store := NewStore[*v1alpha1.DatabaseCluster]()
	key := types.NamespacedName{Namespace: "prod", Name: "orders"}
	entry := store.Entry(key)

	assert.Equal(t, key, entry.Key())

	_, ok := entry.Cached()
	assert.False(t, ok)

	entry.Store(cluster("prod", "orders", "100"))
	got, ok := entry.Cached()
	require.True(t, ok)
	assert.Equal(t, "100", got.ResourceVersion)

	// Objects for a different key are ignored.
	entry.Store(cluster("prod", "billing", "7"))
	assert.Equal(t, 1, store.Len())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewStore[*v1alpha1.DatabaseCluster]()
	key := types.NamespacedName{Namespace: "prod", Name: "orders"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Upsert(cluster("prod", "orders", "100"))
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get(key)
			_ = store.List("prod")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}
