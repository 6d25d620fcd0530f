// Package engine orchestrates reservation admission: it validates the user
// against the registry, the item against the catalog, scans the ledger for
// period conflicts, then commits the ledger append and availability flip
// atomically before notifying observers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/librarium/library/internal/db"
	"github.com/librarium/library/internal/events"
	"github.com/librarium/library/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrUserNotRegistered is returned when the requesting email is unknown to the registry.
	ErrUserNotRegistered = errors.New("user is not registered")

	// ErrReservationConflict is returned when the requested period overlaps
	// an existing active reservation for the same item.
	ErrReservationConflict = errors.New("item is already reserved for the requested period")
)

// Engine coordinates the catalog, ledger and registry. A single mutex spans
// each operation's full read-validate-mutate sequence, so two concurrent
// requests for the same item cannot both pass the availability check before
// either commits. Events are published after commit, outside the lock.
type Engine struct {
	mu       sync.Mutex
	database *db.DB
	catalog  *repo.CatalogRepo
	ledger   *repo.LedgerRepo
	users    *repo.UserRepo
	notifier *events.Notifier
	log      *zap.Logger
}

// New creates a reservation engine over the given repositories.
func New(database *db.DB, catalog *repo.CatalogRepo, ledger *repo.LedgerRepo, users *repo.UserRepo, notifier *events.Notifier, log *zap.Logger) *Engine {
	return &Engine{
		database: database,
		catalog:  catalog,
		ledger:   ledger,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// CreateReservation admits or rejects a reservation request. The validation
// chain is fixed and fails fast, in this order: blank email, unregistered
// user, unknown item, unavailable item, period conflict. Nothing is
// mutated and no event fires unless every check passes; the ledger append
// and the availability flip commit in one transaction.
//
// The overlap scan runs even though the availability gate already blocks any
// second reservation on the same item: availability is a plain flag, not a
// function of the active periods, so at most one active reservation exists
// per item and the scan finds nothing to collide with. Both checks are kept
// so the distinct conflict error survives if availability ever becomes
// period-aware.
func (e *Engine) CreateReservation(ctx context.Context, itemID int, userEmail string, from, to time.Time) (*db.Reservation, error) {
	res, item, err := e.createLocked(ctx, itemID, userEmail, from, to)
	if err != nil {
		return nil, err
	}

	e.notifier.Publish(events.Event{
		Kind:        events.KindNewReservation,
		Reservation: *res,
		Item:        *item,
	})

	return res, nil
}

func (e *Engine) createLocked(ctx context.Context, itemID int, userEmail string, from, to time.Time) (*db.Reservation, *db.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if isBlank(userEmail) {
		return nil, nil, db.ErrEmailRequired
	}

	registered, err := e.users.IsRegistered(ctx, userEmail)
	if err != nil {
		return nil, nil, err
	}
	if !registered {
		return nil, nil, fmt.Errorf("%q: %w", userEmail, ErrUserNotRegistered)
	}

	item, err := e.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	if !item.Available {
		return nil, nil, fmt.Errorf("item %q: %w", item.Title, db.ErrItemNotAvailable)
	}

	active, err := e.ledger.ActiveForItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range active {
		if r.Overlaps(from, to) {
			return nil, nil, fmt.Errorf("item %q: %w", item.Title, ErrReservationConflict)
		}
	}

	res, err := db.NewReservation(item, userEmail, from, to)
	if err != nil {
		return nil, nil, err
	}

	err = e.database.Transaction(func(tx *gorm.DB) error {
		if err := e.ledger.AppendTx(ctx, tx, res); err != nil {
			return err
		}
		return e.catalog.SetAvailabilityTx(ctx, tx, item.ID, false)
	})
	if err != nil {
		return nil, nil, err
	}
	item.Available = false

	e.log.Info("Reservation created",
		zap.Int("id", res.ID),
		zap.Int("item_id", item.ID),
		zap.String("user_email", userEmail),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	return res, item, nil
}

// CancelReservation moves a reservation to its terminal inactive state and
// returns the item to the available pool. Cancelling an unknown id is
// not-found; cancelling twice surfaces the reservation's own invalid-state
// error unchanged.
func (e *Engine) CancelReservation(ctx context.Context, reservationID int) error {
	res, item, err := e.cancelLocked(ctx, reservationID)
	if err != nil {
		return err
	}

	e.notifier.Publish(events.Event{
		Kind:        events.KindReservationCancelled,
		Reservation: *res,
		Item:        *item,
	})

	return nil
}

func (e *Engine) cancelLocked(ctx context.Context, reservationID int) (*db.Reservation, *db.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.ledger.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	if err := res.Cancel(); err != nil {
		return nil, nil, err
	}

	item, err := e.catalog.GetItem(ctx, res.ItemID)
	if err != nil {
		return nil, nil, err
	}

	err = e.database.Transaction(func(tx *gorm.DB) error {
		if err := e.ledger.MarkInactive(ctx, tx, res.ID); err != nil {
			return err
		}
		return e.catalog.SetAvailabilityTx(ctx, tx, res.ItemID, true)
	})
	if err != nil {
		return nil, nil, err
	}
	item.Available = true

	e.log.Info("Reservation cancelled",
		zap.Int("id", res.ID),
		zap.Int("item_id", res.ItemID),
		zap.String("user_email", res.UserEmail),
	)

	return res, item, nil
}

// UserReservations returns the caller's active reservations in creation order.
func (e *Engine) UserReservations(ctx context.Context, userEmail string) ([]*db.Reservation, error) {
	if isBlank(userEmail) {
		return nil, db.ErrEmailRequired
	}
	return e.ledger.ActiveForUser(ctx, userEmail)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
