package http

import "github.com/gin-gonic/gin"

// Register registers the topology routes. writeMiddleware wraps only the
// routes that mutate the graph.
func (h *Handler) Register(rg *gin.RouterGroup, writeMiddleware ...gin.HandlerFunc) {
	rg.GET("/graph", h.GetGraph)
	rg.GET("/nodes/search", h.SearchNodes)
	rg.GET("/nodes/filter", h.FilterNodes)

	w := rg.Group("", writeMiddleware...)
	w.POST("/nodes", h.CreateNode)
	w.PUT("/nodes/:id", h.UpdateNode)
	w.DELETE("/nodes/:id", h.DeleteNode)
	w.POST("/edges", h.CreateEdge)
	w.DELETE("/edges", h.DeleteEdge)
}
