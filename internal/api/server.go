// Package api wires the HTTP surface: the participant-facing webhook
// and websocket routes, a health check and the JWT-guarded operator
// endpoints over the order archive.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"domibot/internal/models"
	"domibot/internal/transport"
)

// Server owns the gin router.
type Server struct {
	router    *gin.Engine
	handler   transport.Handler
	db        *gorm.DB
	jwtSecret string
}

// NewServer creates the API server. db may be nil when the archive is
// disabled; the operator endpoints then report the archive unavailable.
func NewServer(handler transport.Handler, db *gorm.DB, jwtSecret string) *Server {
	s := &Server{
		router:    gin.Default(),
		handler:   handler,
		db:        db,
		jwtSecret: jwtSecret,
	}
	s.setupRoutes()
	return s
}

// Router returns the Gin router.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "DomiBot API is running"})
	})

	s.router.POST("/webhook/messages", s.handleWebhook)
	s.router.GET("/ws", transport.ServeWS(s.handler))

	v1 := s.router.Group("/api/v1", AuthMiddleware(s.jwtSecret))
	{
		v1.GET("/orders", s.handleListOrders)
		v1.GET("/orders/:id", s.handleGetOrder)
	}
}

// handleWebhook accepts one inbound message and answers with the
// ordered replies, for provider bridges that relay the conversation
// over HTTP.
func (s *Server) handleWebhook(c *gin.Context) {
	var in transport.Inbound
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id is required"})
		return
	}

	replies := s.handler.HandleMessage(c.Request.Context(), in)
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// handleListOrders returns archived orders, newest first. With
// ?manual_review=true only orders flagged for manual review are
// returned.
func (s *Server) handleListOrders(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "order archive disabled"})
		return
	}

	query := s.db.Preload("Items").Order("created_at desc")
	if c.Query("manual_review") == "true" {
		query = query.Where("needs_manual_review = ?", true)
	}

	var orders []models.ArchivedOrder
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// handleGetOrder returns a single archived order by id.
func (s *Server) handleGetOrder(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "order archive disabled"})
		return
	}

	var order models.ArchivedOrder
	if err := s.db.Preload("Items").Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}
