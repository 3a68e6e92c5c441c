package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/GoSim-25-26J-441/topology-backend/internal/logger"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/gin-gonic/gin"
)

// GraphService is the subset of the topology service the handlers call.
type GraphService interface {
	ListGraph(ctx context.Context) (*domain.Document, error)
	CreateNode(ctx context.Context, in domain.NodeInput) (*domain.Node, error)
	UpdateNode(ctx context.Context, id string, in domain.NodeInput) (*domain.Node, error)
	DeleteNode(ctx context.Context, id string) error
	SearchNodes(ctx context.Context, query string) ([]domain.Node, error)
	FilterNodes(ctx context.Context, typ string) ([]domain.Node, error)
	CreateEdge(ctx context.Context, in domain.EdgeInput) (*domain.Edge, error)
	DeleteEdge(ctx context.Context, source, target string) error
}

// Handler handles HTTP requests for the topology graph
type Handler struct {
	svc GraphService
}

// New creates a new Handler
func New(svc GraphService) *Handler {
	return &Handler{svc: svc}
}

// StatusFor maps a service error to the HTTP status returned to callers.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message, "details": cause} plus extra
// context fields. Internal failures are logged.
func respondError(c *gin.Context, err error, message string, extra gin.H) {
	status := StatusFor(err)
	body := gin.H{"error": message, "details": err.Error()}
	if field := domain.FieldOf(err); field != "" {
		body["field"] = field
	}
	for k, v := range extra {
		body[k] = v
	}
	if status >= http.StatusInternalServerError {
		logger.Error(message, "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, body)
}

// bindOptionalJSON binds the request body into dst. An empty body leaves dst
// untouched.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
