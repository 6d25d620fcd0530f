package repo

import (
	"context"
	"errors"

	"github.com/librarium/library/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrReservationNotFound is returned when a reservation is not found
var ErrReservationNotFound = errors.New("reservation not found")

// LedgerRepo owns the append-only reservation history. Rows are never
// deleted; cancellation clears the Active flag through MarkInactive. Ids are
// assigned by the store's autoincrement sequence, which starts at 1 and,
// with no deletes, stays strictly increasing with no reuse.
type LedgerRepo struct {
	db  *db.DB
	log *zap.Logger
}

// NewLedgerRepo creates a new ledger repository
func NewLedgerRepo(database *db.DB, logger *zap.Logger) *LedgerRepo {
	return &LedgerRepo{
		db:  database,
		log: logger,
	}
}

// Append inserts a reservation into the history and populates its id.
func (r *LedgerRepo) Append(ctx context.Context, res *db.Reservation) error {
	return r.AppendTx(ctx, r.db.DB, res)
}

// AppendTx is Append scoped to an existing transaction; the caller commits
// or rolls back.
func (r *LedgerRepo) AppendTx(ctx context.Context, tx *gorm.DB, res *db.Reservation) error {
	if err := tx.WithContext(ctx).Create(res).Error; err != nil {
		r.log.Error("Failed to append reservation",
			zap.Int("item_id", res.ItemID),
			zap.String("user_email", res.UserEmail),
			zap.Error(err),
		)
		return err
	}

	r.log.Info("Reservation appended",
		zap.Int("id", res.ID),
		zap.Int("item_id", res.ItemID),
		zap.String("user_email", res.UserEmail),
	)
	return nil
}

// GetReservation retrieves a reservation by id, active or not.
func (r *LedgerRepo) GetReservation(ctx context.Context, id int) (*db.Reservation, error) {
	var res db.Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		r.log.Error("Failed to get reservation", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return &res, nil
}

// MarkInactive persists a cancellation. The active-state transition itself
// is validated by Reservation.Cancel before this is called.
func (r *LedgerRepo) MarkInactive(ctx context.Context, tx *gorm.DB, id int) error {
	result := tx.WithContext(ctx).Model(&db.Reservation{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		r.log.Error("Failed to mark reservation inactive", zap.Int("id", id), zap.Error(result.Error))
		return result.Error
	}
	return nil
}

// ActiveForUser returns the user's active reservations in creation order.
// The query is re-evaluated on every call.
func (r *LedgerRepo) ActiveForUser(ctx context.Context, email string) ([]*db.Reservation, error) {
	var out []*db.Reservation
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND active = ?", email, true).
		Order("id").
		Find(&out).Error
	if err != nil {
		r.log.Error("Failed to list user reservations", zap.String("user_email", email), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ActiveForItem returns the item's active reservations in creation order,
// for the engine's overlap scan.
func (r *LedgerRepo) ActiveForItem(ctx context.Context, itemID int) ([]*db.Reservation, error) {
	var out []*db.Reservation
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND active = ?", itemID, true).
		Order("id").
		Find(&out).Error
	if err != nil {
		r.log.Error("Failed to list item reservations", zap.Int("item_id", itemID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// AllReservations returns the full history including cancelled entries, in
// creation order, for reporting.
func (r *LedgerRepo) AllReservations(ctx context.Context) ([]*db.Reservation, error) {
	var out []*db.Reservation
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		r.log.Error("Failed to list reservations", zap.Error(err))
		return nil, err
	}
	return out, nil
}
