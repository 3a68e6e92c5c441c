package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
)

// SnapshotStore loads and atomically replaces the serialized topology
// document. Load on an uninitialized medium writes and returns an empty
// document. A concurrent Load observes either the old or the new document.
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.Document, error)
	Replace(ctx context.Context, doc *domain.Document) error
	// Name identifies the backend in logs and health output.
	Name() string
}

func encodeDocument(doc *domain.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc.Clone().Normalize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte) (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc.Normalize(), nil
}
