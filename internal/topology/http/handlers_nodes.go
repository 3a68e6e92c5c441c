package http

import (
	"net/http"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/gin-gonic/gin"
)

// GetGraph returns the whole document
func (h *Handler) GetGraph(c *gin.Context) {
	doc, err := h.svc.ListGraph(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to read graph data", nil)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// CreateNode adds a node, filling absent fields with defaults
func (h *Handler) CreateNode(c *gin.Context) {
	var in domain.NodeInput
	if err := bindOptionalJSON(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	node, err := h.svc.CreateNode(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to add node", nil)
		return
	}
	c.JSON(http.StatusCreated, node)
}

// UpdateNode merges the body into an existing node
func (h *Handler) UpdateNode(c *gin.Context) {
	nodeID := c.Param("id")

	var in domain.NodeInput
	if err := bindOptionalJSON(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	node, err := h.svc.UpdateNode(c.Request.Context(), nodeID, in)
	if err != nil {
		msg := "Failed to update node"
		if StatusFor(err) == http.StatusNotFound {
			msg = "Node not found"
		}
		respondError(c, err, msg, gin.H{"nodeId": nodeID})
		return
	}
	c.JSON(http.StatusOK, node)
}

// DeleteNode removes a node and its edges
func (h *Handler) DeleteNode(c *gin.Context) {
	nodeID := c.Param("id")

	if err := h.svc.DeleteNode(c.Request.Context(), nodeID); err != nil {
		msg := "Failed to delete node"
		if StatusFor(err) == http.StatusNotFound {
			msg = "Node not found"
		}
		respondError(c, err, msg, gin.H{"nodeId": nodeID})
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchNodes matches ?q= against node names
func (h *Handler) SearchNodes(c *gin.Context) {
	nodes, err := h.svc.SearchNodes(c.Request.Context(), c.Query("q"))
	if err != nil {
		msg := "Failed to search nodes"
		if StatusFor(err) == http.StatusBadRequest {
			msg = "Search query is required"
		}
		respondError(c, err, msg, nil)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// FilterNodes matches ?type= against node types
func (h *Handler) FilterNodes(c *gin.Context) {
	nodes, err := h.svc.FilterNodes(c.Request.Context(), c.Query("type"))
	if err != nil {
		msg := "Failed to filter nodes"
		if StatusFor(err) == http.StatusBadRequest {
			msg = "Type parameter is required"
		}
		respondError(c, err, msg, nil)
		return
	}
	c.JSON(http.StatusOK, nodes)
}
