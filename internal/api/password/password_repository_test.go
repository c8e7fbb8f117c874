package password

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokeswarareddy/worst-passwords-api/internal/api"
	"github.com/lokeswarareddy/worst-passwords-api/internal/types"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresPasswordRepo) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool, NewPostgresPasswordRepo(mockPool, testLogger())
}

func passwordRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "password", "site", "username", "created_by", "owner_name", "created_at"})
}

func TestPostgresCreatePassword(t *testing.T) {
	mockPool, repo := newMockRepo(t)
	ctx := context.Background()

	ownerID := uuid.New()
	record := types.PasswordRecord{
		ID:        uuid.New(),
		Password:  "abc123",
		Site:      "example.com",
		Username:  "leaky",
		CreatedBy: &ownerID,
		CreatedAt: time.Now(),
	}

	mockPool.ExpectExec("INSERT INTO passwords").
		WithArgs(record.ID, record.Password, record.Site, record.Username, record.CreatedBy, record.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.CreatePassword(ctx, record)

	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresListPasswords(t *testing.T) {
	mockPool, repo := newMockRepo(t)
	ctx := context.Background()

	ownerID := uuid.New()
	ownerName := "testuser"
	now := time.Now()

	mockPool.ExpectQuery("SELECT (.+) FROM passwords p").
		WithArgs(20, 0).
		WillReturnRows(passwordRows().
			AddRow(uuid.New(), "abc123", "example.com", "leaky", &ownerID, &ownerName, now).
			AddRow(uuid.New(), "qwerty1", "", "Anonymous", nil, nil, now.Add(-time.Minute)))

	records, err := repo.ListPasswords(ctx, 20, 0)

	assert.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "abc123", records[0].Password)
	assert.Equal(t, &ownerID, records[0].CreatedBy)
	assert.Nil(t, records[1].CreatedBy)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresGetPassword(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)
		ctx := context.Background()
		id := uuid.New()

		mockPool.ExpectQuery("SELECT (.+) FROM passwords p").
			WithArgs(id).
			WillReturnRows(passwordRows().
				AddRow(id, "abc123", "", "Anonymous", nil, nil, time.Now()))

		record, err := repo.GetPassword(ctx, id)

		assert.NoError(t, err)
		assert.Equal(t, id, record.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)
		ctx := context.Background()
		id := uuid.New()

		mockPool.ExpectQuery("SELECT (.+) FROM passwords p").
			WithArgs(id).
			WillReturnRows(passwordRows())

		record, err := repo.GetPassword(ctx, id)

		assert.Error(t, err)
		assert.Nil(t, record)
		assert.ErrorIs(t, err, api.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresCountPasswords(t *testing.T) {
	mockPool, repo := newMockRepo(t)
	ctx := context.Background()

	mockPool.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.CountPasswords(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresDeletePassword(t *testing.T) {
	t.Run("Deleted", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)
		ctx := context.Background()
		id := uuid.New()

		mockPool.ExpectExec("DELETE FROM passwords").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.DeletePassword(ctx, id))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)
		ctx := context.Background()
		id := uuid.New()

		mockPool.ExpectExec("DELETE FROM passwords").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeletePassword(ctx, id)

		assert.ErrorIs(t, err, api.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresUpdatePassword(t *testing.T) {
	mockPool, repo := newMockRepo(t)
	ctx := context.Background()
	id := uuid.New()

	mockPool.ExpectQuery("UPDATE passwords").
		WithArgs(id, "hunter2", "example.com", "leaky").
		WillReturnRows(pgxmock.NewRows([]string{"id", "password", "site", "username", "created_by", "created_at"}).
			AddRow(id, "hunter2", "example.com", "leaky", nil, time.Now()))

	record, err := repo.UpdatePassword(ctx, id, "hunter2", "example.com", "leaky")

	assert.NoError(t, err)
	assert.Equal(t, "hunter2", record.Password)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
