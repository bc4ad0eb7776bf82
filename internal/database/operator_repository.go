package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/seatwave/whatsapp-booking-backend/internal/models"
)

// OperatorRepository handles operator database operations
type OperatorRepository struct {
	db *sqlx.DB
}

// NewOperatorRepository creates a new OperatorRepository
func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// Create inserts a new operator. Phone must already be normalized.
func (r *OperatorRepository) Create(name, phone string) (*models.Operator, error) {
	operator := &models.Operator{
		ID:         uuid.New(),
		Name:       name,
		Phone:      phone,
		IsApproved: true,
		CreatedAt:  time.Now(),
	}

	query := `
		INSERT INTO operators (id, name, phone, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, operator.ID, operator.Name, operator.Phone, operator.IsApproved, operator.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}
	return operator, nil
}

// GetByPhone retrieves an approved operator by normalized phone number.
// Returns nil when no operator matches; the caller treats the sender as a
// customer.
func (r *OperatorRepository) GetByPhone(phone string) (*models.Operator, error) {
	var operator models.Operator
	query := `
		SELECT id, name, phone, is_approved, created_at
		FROM operators
		WHERE phone = $1 AND is_approved = true`

	err := r.db.Get(&operator, query, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator by phone: %w", err)
	}
	return &operator, nil
}

// GetDefault retrieves the singleton operator record
func (r *OperatorRepository) GetDefault() (*models.Operator, error) {
	var operator models.Operator
	query := `
		SELECT id, name, phone, is_approved, created_at
		FROM operators
		WHERE is_approved = true
		ORDER BY created_at ASC
		LIMIT 1`

	err := r.db.Get(&operator, query)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default operator: %w", err)
	}
	return &operator, nil
}
