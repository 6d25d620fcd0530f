package repo

import (
	"context"
	"testing"
	"time"

	"github.com/librarium/library/internal/db"
	"github.com/librarium/library/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2026, time.January, n, 0, 0, 0, 0, time.UTC)
}

func appendReservation(t *testing.T, ledger *LedgerRepo, item *db.Item, email string, from, to time.Time) *db.Reservation {
	res, err := db.NewReservation(item, email, from, to)
	require.NoError(t, err)
	require.NoError(t, ledger.Append(context.Background(), res))
	return res
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	ledger := NewLedgerRepo(database, log)

	item := mustBook(t, 1, "Book")

	first := appendReservation(t, ledger, item, "a@example.com", day(1), day(3))
	second := appendReservation(t, ledger, item, "b@example.com", day(4), day(6))

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
}

func TestGetReservationNotFound(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	ledger := NewLedgerRepo(database, log)

	_, err := ledger.GetReservation(context.Background(), 7)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestActiveForUser(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	ledger := NewLedgerRepo(database, log)

	ctx := context.Background()
	item := mustBook(t, 1, "Book")

	mine := appendReservation(t, ledger, item, "me@example.com", day(1), day(3))
	appendReservation(t, ledger, item, "other@example.com", day(4), day(6))
	cancelled := appendReservation(t, ledger, item, "me@example.com", day(7), day(9))
	require.NoError(t, ledger.MarkInactive(ctx, database.DB, cancelled.ID))

	active, err := ledger.ActiveForUser(ctx, "me@example.com")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, mine.ID, active[0].ID)
}

func TestActiveForItem(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	ledger := NewLedgerRepo(database, log)

	ctx := context.Background()
	first := mustBook(t, 1, "First")
	second := mustBook(t, 2, "Second")

	a := appendReservation(t, ledger, first, "a@example.com", day(1), day(3))
	b := appendReservation(t, ledger, first, "b@example.com", day(4), day(6))
	appendReservation(t, ledger, second, "c@example.com", day(1), day(3))

	active, err := ledger.ActiveForItem(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, b.ID, active[1].ID)
}

func TestAllReservationsKeepsHistory(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	ledger := NewLedgerRepo(database, log)

	ctx := context.Background()
	item := mustBook(t, 1, "Book")

	kept := appendReservation(t, ledger, item, "a@example.com", day(1), day(3))
	gone := appendReservation(t, ledger, item, "b@example.com", day(4), day(6))
	require.NoError(t, ledger.MarkInactive(ctx, database.DB, gone.ID))

	all, err := ledger.AllReservations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, kept.ID, all[0].ID)
	assert.True(t, all[0].Active)
	assert.Equal(t, gone.ID, all[1].ID)
	assert.False(t, all[1].Active)
}
