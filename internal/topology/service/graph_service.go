package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/topology-backend/internal/logger"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/repository"
)

// maxIDAttempts bounds regeneration of a colliding generated id.
const maxIDAttempts = 5

// GraphService serializes every mutation of the topology document. A
// mutation holds the write lock across load, validate, mutate and replace;
// queries hold the read lock across load.
type GraphService struct {
	store     repository.SnapshotStore
	synth     *domain.Synthesizer
	startedAt time.Time

	mu sync.RWMutex
}

type Option func(*GraphService)

// WithSynthesizer replaces the default-value generator, e.g. with a seeded one.
func WithSynthesizer(s *domain.Synthesizer) Option {
	return func(g *GraphService) { g.synth = s }
}

// WithStartTime sets the reference point for uptime reporting.
func WithStartTime(t time.Time) Option {
	return func(g *GraphService) { g.startedAt = t }
}

func NewGraphService(store repository.SnapshotStore, opts ...Option) *GraphService {
	g := &GraphService{
		store:     store,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.synth == nil {
		g.synth = domain.NewSynthesizer(nil, nil)
	}
	return g
}

// ListGraph returns the current document.
func (g *GraphService) ListGraph(ctx context.Context) (*domain.Document, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.store.Load(ctx)
}

// CreateNode synthesizes a node from in, appends it and persists.
func (g *GraphService) CreateNode(ctx context.Context, in domain.NodeInput) (*domain.Node, error) {
	var created domain.Node
	err := g.mutate(ctx, "create node", func(doc *domain.Document) error {
		n := g.synth.Node(in)
		if in.ID == nil || strings.TrimSpace(*in.ID) == "" {
			for i := 0; doc.HasNode(n.ID) && i < maxIDAttempts; i++ {
				n.ID = g.synth.NodeID()
			}
		}
		if err := doc.CheckNewNode(n); err != nil {
			return err
		}
		doc.Nodes = append(doc.Nodes, n)
		created = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("node created", "id", created.ID, "type", created.Type)
	return &created, nil
}

// UpdateNode merges the present fields of in over the stored node. The id
// field of in is ignored.
func (g *GraphService) UpdateNode(ctx context.Context, id string, in domain.NodeInput) (*domain.Node, error) {
	var updated domain.Node
	err := g.mutate(ctx, "update node", func(doc *domain.Document) error {
		idx := doc.NodeIndex(id)
		if idx < 0 {
			return domain.NotFound("id", fmt.Sprintf("node %q not found", id))
		}
		merged := doc.Nodes[idx].Merge(in)
		if err := domain.ValidateNodeFields(merged); err != nil {
			return err
		}
		doc.Nodes[idx] = merged
		updated = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteNode removes the node and every edge that references it.
func (g *GraphService) DeleteNode(ctx context.Context, id string) error {
	var removed int
	err := g.mutate(ctx, "delete node", func(doc *domain.Document) error {
		n, err := doc.RemoveNode(id)
		removed = n
		return err
	})
	if err != nil {
		return err
	}
	logger.Debug("node deleted", "id", id, "edges_removed", removed)
	return nil
}

// SearchNodes returns nodes whose name contains query, ignoring case.
func (g *GraphService) SearchNodes(ctx context.Context, query string) ([]domain.Node, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.InvalidArgument("q", "search query is required")
	}
	doc, err := g.ListGraph(ctx)
	if err != nil {
		return nil, err
	}
	return doc.SearchByName(query), nil
}

// FilterNodes returns nodes whose type equals typ, ignoring case.
func (g *GraphService) FilterNodes(ctx context.Context, typ string) ([]domain.Node, error) {
	if strings.TrimSpace(typ) == "" {
		return nil, domain.InvalidArgument("type", "type parameter is required")
	}
	doc, err := g.ListGraph(ctx)
	if err != nil {
		return nil, err
	}
	return doc.FilterByType(typ), nil
}

// CreateEdge synthesizes an edge from in after checking both endpoints exist
// and the (source, target) pair is free.
func (g *GraphService) CreateEdge(ctx context.Context, in domain.EdgeInput) (*domain.Edge, error) {
	if strings.TrimSpace(in.Source) == "" {
		return nil, domain.InvalidArgument("source", "source is required")
	}
	if strings.TrimSpace(in.Target) == "" {
		return nil, domain.InvalidArgument("target", "target is required")
	}

	var created domain.Edge
	err := g.mutate(ctx, "create edge", func(doc *domain.Document) error {
		e := g.synth.Edge(in)
		if in.ID == nil || strings.TrimSpace(*in.ID) == "" {
			for i := 0; doc.HasEdgeID(e.ID) && i < maxIDAttempts; i++ {
				e.ID = g.synth.EdgeID()
			}
		}
		if err := doc.CheckNewEdge(e); err != nil {
			return err
		}
		doc.Edges = append(doc.Edges, e)
		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteEdge removes the edge with the exact (source, target) pair.
func (g *GraphService) DeleteEdge(ctx context.Context, source, target string) error {
	return g.mutate(ctx, "delete edge", func(doc *domain.Document) error {
		return doc.RemoveEdge(source, target)
	})
}

// ReplaceGraph validates doc and stores it as the whole topology.
func (g *GraphService) ReplaceGraph(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.InvalidArgument("document", "document is required")
	}
	return g.mutate(ctx, "replace graph", func(current *domain.Document) error {
		next := doc.Clone().Normalize()
		if err := next.Validate(); err != nil {
			return err
		}
		current.Nodes = next.Nodes
		current.Edges = next.Edges
		return nil
	})
}

// CheckHealth probes the store. Store failures are reported in the result,
// not as an error.
func (g *GraphService) CheckHealth(ctx context.Context) *domain.Health {
	now := time.Now().UTC()
	uptime := now.Sub(g.startedAt)
	h := &domain.Health{
		Timestamp:   now.Format(time.RFC3339),
		Uptime:      uptime.Seconds(),
		UptimeHuman: uptime.Round(time.Second).String(),
	}

	doc, err := g.ListGraph(ctx)
	if err != nil {
		h.Status = domain.StatusUnhealthy
		h.Error = err.Error()
		return h
	}
	h.Status = domain.StatusHealthy
	h.Nodes = len(doc.Nodes)
	h.Edges = len(doc.Edges)
	return h
}

// StoreName reports which snapshot backend is in use.
func (g *GraphService) StoreName() string {
	return g.store.Name()
}

// mutate runs fn against a private copy of the current document and
// persists the result only when fn succeeds and the copy still satisfies
// every invariant.
func (g *GraphService) mutate(ctx context.Context, op string, fn func(doc *domain.Document) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	current, err := g.store.Load(ctx)
	if err != nil {
		logger.Error("failed to load snapshot", "op", op, "store", g.store.Name(), "err", err)
		return err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		logger.Error("mutation would break document invariants", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := g.store.Replace(ctx, next); err != nil {
		logger.Error("failed to persist snapshot", "op", op, "store", g.store.Name(), "err", err)
		return err
	}
	return nil
}
