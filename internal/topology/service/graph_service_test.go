package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*GraphService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewGraphService(store, WithSynthesizer(domain.NewSeededSynthesizer(1, nil))), store
}

func mustCreateNode(t *testing.T, svc *GraphService, id, name, typ string) *domain.Node {
	t.Helper()
	n, err := svc.CreateNode(context.Background(), domain.NodeInput{ID: &id, Name: &name, Type: &typ})
	require.NoError(t, err)
	return n
}

func mustCreateEdge(t *testing.T, svc *GraphService, source, target string) *domain.Edge {
	t.Helper()
	e, err := svc.CreateEdge(context.Background(), domain.EdgeInput{Source: source, Target: target})
	require.NoError(t, err)
	return e
}

// flakyStore fails Replace or Load on demand.
type flakyStore struct {
	*repository.MemoryStore
	failLoad    atomic.Bool
	failReplace atomic.Bool
}

func (s *flakyStore) Load(ctx context.Context) (*domain.Document, error) {
	if s.failLoad.Load() {
		return nil, domain.StoreUnavailable("load snapshot", errors.New("permission denied"))
	}
	return s.MemoryStore.Load(ctx)
}

func (s *flakyStore) Replace(ctx context.Context, doc *domain.Document) error {
	if s.failReplace.Load() {
		return domain.StoreUnavailable("replace snapshot", errors.New("no space left on device"))
	}
	return s.MemoryStore.Replace(ctx, doc)
}

func TestGraphService_CreateNode(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults", func(t *testing.T) {
		svc, _ := newTestService(t)

		n, err := svc.CreateNode(ctx, domain.NodeInput{})
		require.NoError(t, err)
		assert.Regexp(t, `^service-\d+-[0-9a-f]{8}$`, n.ID)
		assert.NotEmpty(t, n.Name)
		assert.Contains(t, domain.DefaultNodeTypes, n.Type)

		doc, err := svc.ListGraph(ctx)
		require.NoError(t, err)
		require.Len(t, doc.Nodes, 1)
		assert.Equal(t, *n, doc.Nodes[0])
	})

	t.Run("preserves supplied fields", func(t *testing.T) {
		svc, _ := newTestService(t)

		n, err := svc.CreateNode(ctx, domain.NodeInput{
			ID:      ptr("n1"),
			Name:    ptr("X"),
			Type:    ptr("cache"),
			Latency: ptr(10.0),
		})
		require.NoError(t, err)
		assert.Equal(t, "n1", n.ID)
		assert.Equal(t, "X", n.Name)
		assert.Equal(t, "cache", n.Type)
		assert.Equal(t, 10.0, n.Latency)
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateNode(t, svc, "n1", "first", "backend")

		_, err := svc.CreateNode(ctx, domain.NodeInput{ID: ptr("n1"), Name: ptr("second")})
		assert.ErrorIs(t, err, domain.ErrDuplicateID)

		doc, err := svc.ListGraph(ctx)
		require.NoError(t, err)
		require.Len(t, doc.Nodes, 1)
		assert.Equal(t, "first", doc.Nodes[0].Name)
	})

	t.Run("rejects out of range telemetry", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.CreateNode(ctx, domain.NodeInput{ErrorRate: ptr(2.0)})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("regenerates colliding generated ids", func(t *testing.T) {
		calls := 0
		ids := func(prefix string) string {
			calls++
			if calls <= 2 {
				return prefix + "-same"
			}
			return fmt.Sprintf("%s-%d", prefix, calls)
		}
		store := repository.NewMemoryStore()
		svc := NewGraphService(store, WithSynthesizer(domain.NewSeededSynthesizer(3, ids)))

		first, err := svc.CreateNode(ctx, domain.NodeInput{})
		require.NoError(t, err)
		second, err := svc.CreateNode(ctx, domain.NodeInput{})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestGraphService_UpdateNode(t *testing.T) {
	ctx := context.Background()

	t.Run("merges present fields only", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CreateNode(ctx, domain.NodeInput{
			ID: ptr("n1"), Name: ptr("X"), Latency: ptr(10.0), Type: ptr("backend"),
			ErrorRate: ptr(0.1), Traffic: ptr(5.0), X: ptr(1.0), Y: ptr(2.0),
		})
		require.NoError(t, err)

		updated, err := svc.UpdateNode(ctx, "n1", domain.NodeInput{Latency: ptr(20.0)})
		require.NoError(t, err)
		assert.Equal(t, domain.Node{
			ID: "n1", Name: "X", Type: "backend", Latency: 20,
			ErrorRate: 0.1, Traffic: 5, X: 1, Y: 2,
		}, *updated)

		doc, err := svc.ListGraph(ctx)
		require.NoError(t, err)
		assert.Equal(t, *updated, doc.Nodes[0])
	})

	t.Run("never changes the id", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateNode(t, svc, "a", "A", "backend")
		mustCreateNode(t, svc, "b", "B", "backend")
		mustCreateEdge(t, svc, "a", "b")

		updated, err := svc.UpdateNode(ctx, "a", domain.NodeInput{ID: ptr("z"), Name: ptr("renamed")})
		require.NoError(t, err)
		assert.Equal(t, "a", updated.ID)
		assert.Equal(t, "renamed", updated.Name)

		doc, err := svc.ListGraph(ctx)
		require.NoError(t, err)
		require.NoError(t, doc.Validate())
		assert.Equal(t, -1, doc.NodeIndex("z"))
	})

	t.Run("unknown node", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.UpdateNode(ctx, "ghost", domain.NodeInput{Name: ptr("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rejects invalid merged values", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateNode(t, svc, "n1", "X", "backend")

		_, err := svc.UpdateNode(ctx, "n1", domain.NodeInput{Latency: ptr(-5.0)})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestGraphService_DeleteNodeCascades(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	mustCreateNode(t, svc, "A", "a", "backend")
	mustCreateNode(t, svc, "B", "b", "backend")
	mustCreateNode(t, svc, "C", "c", "backend")
	mustCreateEdge(t, svc, "A", "B")
	mustCreateEdge(t, svc, "B", "C")

	require.NoError(t, svc.DeleteNode(ctx, "B"))

	doc, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
	assert.Empty(t, doc.Edges)

	assert.ErrorIs(t, svc.DeleteNode(ctx, "B"), domain.ErrNotFound)
}

func TestGraphService_CreateEdge(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults protocol and id", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateNode(t, svc, "A", "a", "backend")
		mustCreateNode(t, svc, "B", "b", "backend")

		e := mustCreateEdge(t, svc, "A", "B")
		assert.Equal(t, domain.DefaultProtocol, e.Protocol)
		assert.Regexp(t, `^edge-`, e.ID)
	})

	t.Run("second identical edge conflicts", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateNode(t, svc, "A", "a", "backend")
		mustCreateNode(t, svc, "B", "b", "backend")
		mustCreateEdge(t, svc, "A", "B")

		_, err := svc.CreateEdge(ctx, domain.EdgeInput{Source: "A", Target: "B"})
		assert.ErrorIs(t, err, domain.ErrConflict)

		doc, err := svc.ListGraph(ctx)
		require.NoError(t, err)
		assert.Len(t, doc.Edges, 1)
	})

	t.Run("missing endpoint is invalid", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CreateEdge(ctx, domain.EdgeInput{Source: "A"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, "target", domain.FieldOf(err))

		_, err = svc.CreateEdge(ctx, domain.EdgeInput{Target: "A"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, "source", domain.FieldOf(err))
	})

	t.Run("unknown source leaves document unchanged", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateNode(t, svc, "A", "a", "backend")
		before, err := svc.ListGraph(ctx)
		require.NoError(t, err)

		_, err = svc.CreateEdge(ctx, domain.EdgeInput{Source: "X", Target: "A"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "source", domain.FieldOf(err))

		after, err := svc.ListGraph(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown target", func(t *testing.T) {
		svc, _ := newTestService(t)
		mustCreateNode(t, svc, "A", "a", "backend")

		_, err := svc.CreateEdge(ctx, domain.EdgeInput{Source: "A", Target: "Y"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "target", domain.FieldOf(err))
	})
}

func TestGraphService_DeleteEdge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	mustCreateNode(t, svc, "A", "a", "backend")
	mustCreateNode(t, svc, "B", "b", "backend")
	mustCreateEdge(t, svc, "A", "B")

	assert.ErrorIs(t, svc.DeleteEdge(ctx, "B", "A"), domain.ErrNotFound)
	require.NoError(t, svc.DeleteEdge(ctx, "A", "B"))

	doc, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Edges)
	assert.Len(t, doc.Nodes, 2)
}

func TestGraphService_SearchAndFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	mustCreateNode(t, svc, "1", "Payment Gateway", "gateway")
	mustCreateNode(t, svc, "2", "payments-db", "Database")
	mustCreateNode(t, svc, "3", "Frontend", "frontend")

	found, err := svc.SearchNodes(ctx, "PAYMENT")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "1", found[0].ID)
	assert.Equal(t, "2", found[1].ID)

	filtered, err := svc.FilterNodes(ctx, "database")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "2", filtered[0].ID)

	_, err = svc.SearchNodes(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.SearchNodes(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.FilterNodes(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGraphService_ListGraphIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	mustCreateNode(t, svc, "A", "a", "backend")
	mustCreateNode(t, svc, "B", "b", "backend")
	mustCreateEdge(t, svc, "A", "B")

	first, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	second, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGraphService_ConcurrentCreatesLoseNothing(t *testing.T) {
	const n = 64
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewGraphService(store)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.CreateNode(ctx, domain.NodeInput{})
			return err
		})
	}
	require.NoError(t, g.Wait())

	doc, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, n)

	ids := make(map[string]struct{}, n)
	for _, node := range doc.Nodes {
		ids[node.ID] = struct{}{}
	}
	assert.Len(t, ids, n)
}

func TestGraphService_ConcurrentMixedOperationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	for i := 0; i < 8; i++ {
		mustCreateNode(t, svc, fmt.Sprintf("n%d", i), fmt.Sprintf("node %d", i), "backend")
	}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 20; i++ {
				src := fmt.Sprintf("n%d", (w+i)%8)
				dst := fmt.Sprintf("n%d", (w+2*i+1)%8)
				_, _ = svc.CreateEdge(ctx, domain.EdgeInput{Source: src, Target: dst})
				if i%5 == 0 {
					_ = svc.DeleteNode(ctx, dst)
					_, _ = svc.CreateNode(ctx, domain.NodeInput{ID: &dst})
				}
				if _, err := svc.ListGraph(ctx); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	doc, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	assert.NoError(t, doc.Validate())
}

// Random operation sequences must keep every edge endpoint resolvable.
func TestGraphService_RandomOperationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(2024, 7))
	ids := []string{"a", "b", "c", "d", "e", "f"}
	pick := func() string { return ids[rng.IntN(len(ids))] }

	for seq := 0; seq < 20; seq++ {
		svc, _ := newTestService(t)
		for step := 0; step < 150; step++ {
			switch rng.IntN(6) {
			case 0, 1:
				id := pick()
				_, _ = svc.CreateNode(ctx, domain.NodeInput{ID: &id})
			case 2:
				_ = svc.DeleteNode(ctx, pick())
			case 3, 4:
				_, _ = svc.CreateEdge(ctx, domain.EdgeInput{Source: pick(), Target: pick()})
			case 5:
				_ = svc.DeleteEdge(ctx, pick(), pick())
			}

			doc, err := svc.ListGraph(ctx)
			require.NoError(t, err)
			require.NoError(t, doc.Validate(), "seq %d step %d", seq, step)
			for _, e := range doc.Edges {
				require.True(t, doc.HasNode(e.Source))
				require.True(t, doc.HasNode(e.Target))
			}
		}
	}
}

func TestGraphService_StoreFailures(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	svc := NewGraphService(store)
	mustCreateNode(t, svc, "A", "a", "backend")

	store.failReplace.Store(true)
	_, err := svc.CreateNode(ctx, domain.NodeInput{ID: ptr("B")})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, svc.DeleteNode(ctx, "A"), domain.ErrStoreUnavailable)
	store.failReplace.Store(false)

	doc, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, "A", doc.Nodes[0].ID)

	store.failLoad.Store(true)
	_, err = svc.ListGraph(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = svc.UpdateNode(ctx, "A", domain.NodeInput{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestGraphService_ReplaceGraph(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	mustCreateNode(t, svc, "old", "old", "backend")

	bad := &domain.Document{
		Nodes: []domain.Node{{ID: "a"}},
		Edges: []domain.Edge{{ID: "e", Source: "a", Target: "missing"}},
	}
	assert.ErrorIs(t, svc.ReplaceGraph(ctx, bad), domain.ErrNotFound)

	good := &domain.Document{
		Nodes: []domain.Node{{ID: "a"}, {ID: "b"}},
		Edges: []domain.Edge{{ID: "e", Source: "a", Target: "b"}},
	}
	require.NoError(t, svc.ReplaceGraph(ctx, good))

	doc, err := svc.ListGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, good, doc)
}

func TestGraphService_CheckHealth(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	svc := NewGraphService(store, WithStartTime(time.Now().Add(-90*time.Second)))
	mustCreateNode(t, svc, "A", "a", "backend")

	h := svc.CheckHealth(ctx)
	assert.Equal(t, domain.StatusHealthy, h.Status)
	assert.GreaterOrEqual(t, h.Uptime, 90.0)
	assert.Equal(t, 1, h.Nodes)
	_, err := time.Parse(time.RFC3339, h.Timestamp)
	assert.NoError(t, err)

	store.failLoad.Store(true)
	h = svc.CheckHealth(ctx)
	assert.Equal(t, domain.StatusUnhealthy, h.Status)
	assert.Contains(t, h.Error, "permission denied")
}
