package http

import (
	"net/http"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/gin-gonic/gin"
)

// CreateEdge connects two existing nodes
func (h *Handler) CreateEdge(c *gin.Context) {
	var in domain.EdgeInput
	if err := bindOptionalJSON(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	edge, err := h.svc.CreateEdge(c.Request.Context(), in)
	if err != nil {
		msg := "Failed to add edge"
		switch StatusFor(err) {
		case http.StatusBadRequest:
			msg = "Source and target are required"
		case http.StatusNotFound:
			msg = "Source or target node does not exist"
		case http.StatusConflict:
			msg = "Edge already exists"
		}
		respondError(c, err, msg, gin.H{"source": in.Source, "target": in.Target})
		return
	}
	c.JSON(http.StatusCreated, edge)
}

type edgeRef struct {
	Source string `json:"source" form:"source"`
	Target string `json:"target" form:"target"`
}

// DeleteEdge removes the edge named by source and target, read from the
// JSON body or, failing that, the query string.
func (h *Handler) DeleteEdge(c *gin.Context) {
	var ref edgeRef
	if err := bindOptionalJSON(c, &ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if ref.Source == "" {
		ref.Source = c.Query("source")
	}
	if ref.Target == "" {
		ref.Target = c.Query("target")
	}

	if err := h.svc.DeleteEdge(c.Request.Context(), ref.Source, ref.Target); err != nil {
		msg := "Failed to delete edge"
		if StatusFor(err) == http.StatusNotFound {
			msg = "Edge not found"
		}
		respondError(c, err, msg, gin.H{"source": ref.Source, "target": ref.Target})
		return
	}
	c.Status(http.StatusNoContent)
}
