package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GoSim-25-26J-441/topology-backend/config"
	"github.com/GoSim-25-26J-441/topology-backend/internal/logger"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/backup"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/service"
)

var errUsage = errors.New("missing file argument")

func runExport(ctx context.Context, graph *service.GraphService, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	doc, err := graph.ListGraph(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if args[0] != "-" {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := writeDocument(w, doc); err != nil {
		return err
	}
	logger.Info("exported topology", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return nil
}

func runImport(ctx context.Context, graph *service.GraphService, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	doc, err := readDocument(r)
	if err != nil {
		return err
	}
	if err := graph.ReplaceGraph(ctx, doc); err != nil {
		return err
	}
	logger.Info("imported topology", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return nil
}

func runValidate(ctx context.Context, graph *service.GraphService) error {
	doc, err := graph.ListGraph(ctx)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("stored topology is invalid: %w", err)
	}
	logger.Info("topology is valid", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return nil
}

func runBackup(ctx context.Context, graph *service.GraphService, cfg *config.Config) error {
	path, err := backup.New(graph, cfg.Backup.Dir, cfg.Backup.Keep).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("backup written", "path", path)
	return nil
}

func readDocument(r io.Reader) (*domain.Document, error) {
	var doc domain.Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode topology: %w", err)
	}
	return doc.Normalize(), nil
}

func writeDocument(w io.Writer, doc *domain.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
