package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
)

// RouteHandler exposes the operator-facing route management API
type RouteHandler struct {
	routeRepo    *database.RouteRepository
	operatorRepo *database.OperatorRepository
}

// NewRouteHandler creates a new RouteHandler
func NewRouteHandler(routeRepo *database.RouteRepository, operatorRepo *database.OperatorRepository) *RouteHandler {
	return &RouteHandler{routeRepo: routeRepo, operatorRepo: operatorRepo}
}

// ListRoutes retrieves all routes
// GET /api/v1/routes
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	routes, err := h.routeRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list routes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// CreateRoute creates a new route under the default operator
// POST /api/v1/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	operator, err := h.operatorRepo.GetDefault()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get operator"})
		return
	}
	if operator == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No operator configured, seed one first"})
		return
	}

	route, err := h.routeRepo.Create(operator.ID, req.Source, req.Destination, req.Price)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create route"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"route": route})
}
