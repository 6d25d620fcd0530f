package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/librarium/library/internal/db"
	"github.com/librarium/library/internal/repo"
	"github.com/librarium/library/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	database *db.DB
	service  *Service
	catalog  *repo.CatalogRepo
	ledger   *repo.LedgerRepo
}

func setup(t *testing.T) *fixture {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	database := &db.DB{DB: gormDB}
	require.NoError(t, db.RunMigrations(database))

	log := logger.NewLogger("test", "info")
	catalog := repo.NewCatalogRepo(database, log)
	ledger := repo.NewLedgerRepo(database, log)

	return &fixture{
		database: database,
		service:  New(ledger, catalog),
		catalog:  catalog,
		ledger:   ledger,
	}
}

func day(n int) time.Time {
	return time.Date(2026, time.April, n, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) addBook(t *testing.T, id int, title string) *db.Item {
	item, err := db.NewBook(id, title, "Author", "ISBN")
	require.NoError(t, err)
	require.NoError(t, f.catalog.AddItem(context.Background(), item))
	return item
}

func (f *fixture) reserve(t *testing.T, item *db.Item, email string, from, to time.Time) *db.Reservation {
	res, err := db.NewReservation(item, email, from, to)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Append(context.Background(), res))
	return res
}

func TestEmptyHistory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	total, err := f.service.TotalReservations(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	avg, err := f.service.AverageLengthDays(ctx)
	require.NoError(t, err)
	assert.Zero(t, avg)

	popular, err := f.service.MostPopularItemTitle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "N/A", popular)

	rate, err := f.service.FulfillmentRate(ctx)
	require.NoError(t, err)
	assert.Zero(t, rate)
}

func TestAverageLengthDays(t *testing.T) {
	f := setup(t)

	book := f.addBook(t, 1, "Book")
	f.reserve(t, book, "a@example.com", day(1), day(4))  // 3 days
	f.reserve(t, book, "b@example.com", day(1), day(8))  // 7 days

	avg, err := f.service.AverageLengthDays(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, avg, 0.001)
}

func TestMostPopularItemTitle(t *testing.T) {
	f := setup(t)

	quiet := f.addBook(t, 1, "Quiet Book")
	loud := f.addBook(t, 2, "Loud Book")

	f.reserve(t, quiet, "a@example.com", day(1), day(2))
	f.reserve(t, loud, "b@example.com", day(1), day(2))
	f.reserve(t, loud, "c@example.com", day(3), day(4))

	popular, err := f.service.MostPopularItemTitle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Loud Book", popular)
}

func TestFulfillmentRate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	book := f.addBook(t, 1, "Book")
	f.reserve(t, book, "a@example.com", day(1), day(2))
	gone := f.reserve(t, book, "b@example.com", day(3), day(4))
	require.NoError(t, f.ledger.MarkInactive(ctx, f.database.DB, gone.ID))

	rate, err := f.service.FulfillmentRate(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, rate, 0.001)
}

func TestLogPopularityScore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	book := f.addBook(t, 1, "The Title")
	f.reserve(t, book, "a@example.com", day(1), day(2))
	f.reserve(t, book, "b@example.com", day(3), day(4))

	score, err := f.service.LogPopularityScore(ctx, "the title")
	require.NoError(t, err)
	assert.InDelta(t, math.Log(3), score, 0.001)

	score, err = f.service.LogPopularityScore(ctx, "Unknown")
	require.NoError(t, err)
	assert.Zero(t, score)

	_, err = f.service.LogPopularityScore(ctx, "  ")
	assert.ErrorIs(t, err, db.ErrTitleRequired)
}
