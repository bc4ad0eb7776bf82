package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var operatorColumns = []string{"id", "name", "phone", "is_approved", "created_at"}

func TestGetOperatorByPhone(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewOperatorRepository(sqlxDB)

	t.Run("Found", func(t *testing.T) {
		operatorID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM operators`).
			WithArgs("919999999999").
			WillReturnRows(sqlmock.NewRows(operatorColumns).
				AddRow(operatorID, "SeatWave Travels", "919999999999", true, time.Now()))

		operator, err := repo.GetByPhone("919999999999")
		require.NoError(t, err)
		require.NotNil(t, operator)
		assert.Equal(t, operatorID, operator.ID)
		assert.True(t, operator.IsApproved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Phone Is Customer", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM operators`).
			WithArgs("919876543210").
			WillReturnError(sql.ErrNoRows)

		operator, err := repo.GetByPhone("919876543210")
		require.NoError(t, err)
		assert.Nil(t, operator)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetDefaultOperator(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewOperatorRepository(sqlxDB)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM operators`).
			WillReturnRows(sqlmock.NewRows(operatorColumns).
				AddRow(uuid.New(), "SeatWave Travels", "919999999999", true, time.Now()))

		operator, err := repo.GetDefault()
		require.NoError(t, err)
		require.NotNil(t, operator)
		assert.Equal(t, "919999999999", operator.Phone)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Seeded", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM operators`).
			WillReturnError(sql.ErrNoRows)

		operator, err := repo.GetDefault()
		require.NoError(t, err)
		assert.Nil(t, operator)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
