package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
)

// RouteRepository handles route database operations
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a new route
func (r *RouteRepository) Create(operatorID uuid.UUID, source, destination string, price float64) (*models.Route, error) {
	route := &models.Route{
		ID:          uuid.New(),
		OperatorID:  operatorID,
		Source:      source,
		Destination: destination,
		Price:       price,
		CreatedAt:   time.Now(),
	}

	query := `
		INSERT INTO routes (id, operator_id, source, destination, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query, route.ID, route.OperatorID, route.Source, route.Destination, route.Price, route.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}
	return route, nil
}

// GetByID retrieves a route by ID
func (r *RouteRepository) GetByID(id uuid.UUID) (*models.Route, error) {
	var route models.Route
	query := `
		SELECT id, operator_id, source, destination, price, created_at
		FROM routes
		WHERE id = $1`

	err := r.db.Get(&route, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

// List retrieves all routes
func (r *RouteRepository) List() ([]models.Route, error) {
	routes := []models.Route{}
	query := `
		SELECT id, operator_id, source, destination, price, created_at
		FROM routes
		ORDER BY source, destination`

	if err := r.db.Select(&routes, query); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// FindByEndpoints matches routes by case-insensitive substring on source and
// destination. Returns every match so the caller can distinguish an
// unambiguous hit from zero or multiple candidates.
func (r *RouteRepository) FindByEndpoints(source, destination string) ([]models.Route, error) {
	routes := []models.Route{}
	query := `
		SELECT id, operator_id, source, destination, price, created_at
		FROM routes
		WHERE source ILIKE '%' || $1 || '%'
		  AND destination ILIKE '%' || $2 || '%'
		ORDER BY created_at ASC`

	if err := r.db.Select(&routes, query, source, destination); err != nil {
		return nil, fmt.Errorf("failed to find routes: %w", err)
	}
	return routes, nil
}
