package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Register mounts the record endpoints on r.
func Register(r gin.IRouter, h *Handler) {
	r.GET("/all_user", h.ListClockIns)
	r.GET("/clock-in/:id", h.GetClockIn)
	r.GET("/clock-filter/", h.FilterClockIns)
	r.POST("/clock-in", h.CreateClockIn)
	r.PUT("/clock-in/:id", h.UpdateClockIn)
	r.DELETE("/clock-in/:id", h.DeleteClockIn)

	r.GET("/all_item", h.ListItems)
	r.GET("/item/:id", h.GetItem)
	r.GET("/item-filter/", h.FilterItems)
	r.POST("/item", h.CreateItem)
	r.PUT("/update_item_details/:id", h.UpdateItemDetails)
	r.GET("/items/count-by-email", h.CountItemsByEmail)
	r.DELETE("/item/:id", h.DeleteItem)
}

// NewEngine builds the gin engine serving the records API with request
// logging, metrics and panic recovery.
func NewEngine(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), Metrics())
	Register(r, h)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}
