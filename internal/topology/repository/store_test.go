package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeDocument() *domain.Document {
	return &domain.Document{
		Nodes: []domain.Node{
			{ID: "a", Name: "A", Type: "backend", Latency: 10},
			{ID: "b", Name: "B", Type: "database", ErrorRate: 0.5},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "a", Target: "b", Protocol: "HTTP", RPS: 100},
		},
	}
}

// testStoreContract exercises the behavior every SnapshotStore shares.
func testStoreContract(t *testing.T, store SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("load initializes an empty document", func(t *testing.T) {
		doc, err := store.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, doc.Nodes)
		assert.NotNil(t, doc.Edges)
		assert.Empty(t, doc.Nodes)
		assert.Empty(t, doc.Edges)
	})

	t.Run("replace then load round trips", func(t *testing.T) {
		want := twoNodeDocument()
		require.NoError(t, store.Replace(ctx, want))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("loaded documents are independent copies", func(t *testing.T) {
		first, err := store.Load(ctx)
		require.NoError(t, err)
		first.Nodes[0].Name = "mutated"

		second, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "A", second.Nodes[0].Name)
	})

	t.Run("concurrent loads never observe a partial document", func(t *testing.T) {
		small := twoNodeDocument()
		large := twoNodeDocument()
		for i := 0; i < 50; i++ {
			large.Nodes = append(large.Nodes, domain.Node{ID: fmt.Sprintf("n%d", i), Name: "filler"})
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				doc := small
				if i%2 == 0 {
					doc = large
				}
				assert.NoError(t, store.Replace(ctx, doc))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				doc, err := store.Load(ctx)
				if !assert.NoError(t, err) {
					return
				}
				n := len(doc.Nodes)
				assert.True(t, n == len(small.Nodes) || n == len(large.Nodes), "unexpected node count %d", n)
			}
		}()
		wg.Wait()
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "data.json")
	store := NewFileStore(path)
	testStoreContract(t, store)

	t.Run("snapshot is readable json on disk", func(t *testing.T) {
		require.NoError(t, store.Replace(context.Background(), twoNodeDocument()))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var doc domain.Document
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Len(t, doc.Nodes, 2)
		assert.Len(t, doc.Edges, 1)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp files must not be left behind")
	})
}

func TestFileStore_Unavailable(t *testing.T) {
	dir := t.TempDir()

	t.Run("unreadable path", func(t *testing.T) {
		store := NewFileStore(dir)
		_, err := store.Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})

	t.Run("unwritable directory", func(t *testing.T) {
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		store := NewFileStore(filepath.Join(blocker, "data.json"))
		err := store.Replace(context.Background(), twoNodeDocument())
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})

	t.Run("failed replace keeps the previous snapshot", func(t *testing.T) {
		path := filepath.Join(dir, "keep.json")
		store := NewFileStore(path)
		require.NoError(t, store.Replace(context.Background(), twoNodeDocument()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, store.Replace(ctx, domain.NewDocument()), domain.ErrStoreUnavailable)

		doc, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, doc.Nodes, 2)
	})
}
