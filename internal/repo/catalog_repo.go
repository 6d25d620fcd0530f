package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/librarium/library/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrItemNotFound is returned when a catalog item is not found
	ErrItemNotFound = errors.New("item not found")

	// ErrNilItem is returned when a nil item is handed to the catalog
	ErrNilItem = errors.New("item is required")
)

// CatalogRepo owns the reservable items. Items are created once, never
// deleted, and mutated only through SetAvailability.
type CatalogRepo struct {
	db  *db.DB
	log *zap.Logger
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(database *db.DB, logger *zap.Logger) *CatalogRepo {
	return &CatalogRepo{
		db:  database,
		log: logger,
	}
}

// NextItemID returns the next item id. Ids are assigned monotonically from 1
// and never reused, so max+1 over a delete-free table is safe.
func (r *CatalogRepo) NextItemID(ctx context.Context) (int, error) {
	var last db.Item
	err := r.db.WithContext(ctx).Order("id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get last item: %w", err)
	}
	return last.ID + 1, nil
}

// AddItem inserts a new item. Id uniqueness is the caller's responsibility
// via NextItemID; the catalog itself performs no duplicate check.
func (r *CatalogRepo) AddItem(ctx context.Context, item *db.Item) error {
	if item == nil {
		return ErrNilItem
	}

	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		r.log.Error("Failed to add item", zap.Int("id", item.ID), zap.Error(err))
		return err
	}

	r.log.Info("Item added",
		zap.Int("id", item.ID),
		zap.String("kind", item.Kind),
		zap.String("title", item.Title),
	)
	return nil
}

// ListAvailable returns the items currently open for reservation, in
// insertion order. The query is re-evaluated on every call.
func (r *CatalogRepo) ListAvailable(ctx context.Context) ([]*db.Item, error) {
	var items []*db.Item
	if err := r.db.WithContext(ctx).Where("available = ?", true).Order("id").Find(&items).Error; err != nil {
		r.log.Error("Failed to list available items", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// ListAll returns every item in insertion order, available or not.
func (r *CatalogRepo) ListAll(ctx context.Context) ([]*db.Item, error) {
	var items []*db.Item
	if err := r.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		r.log.Error("Failed to list items", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// GetItem retrieves an item by id.
func (r *CatalogRepo) GetItem(ctx context.Context, id int) (*db.Item, error) {
	var item db.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		r.log.Error("Failed to get item", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return &item, nil
}

// SetAvailability flips the availability flag of an item. The toggle is
// idempotent; an unknown id is reported as ErrItemNotFound.
func (r *CatalogRepo) SetAvailability(ctx context.Context, id int, available bool) error {
	return r.SetAvailabilityTx(ctx, r.db.DB, id, available)
}

// SetAvailabilityTx is SetAvailability scoped to an existing transaction, so
// the engine can commit the flag flip together with the ledger append.
func (r *CatalogRepo) SetAvailabilityTx(ctx context.Context, tx *gorm.DB, id int, available bool) error {
	result := tx.WithContext(ctx).Model(&db.Item{}).Where("id = ?", id).Update("available", available)
	if result.Error != nil {
		r.log.Error("Failed to set availability", zap.Int("id", id), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Idempotent updates still touch the row, so zero rows means the id is unknown.
		var count int64
		if err := tx.WithContext(ctx).Model(&db.Item{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrItemNotFound
		}
	}
	return nil
}

// ByTitle filters items whose title contains the fragment, case-insensitive.
// A blank fragment matches everything.
func (r *CatalogRepo) ByTitle(ctx context.Context, fragment string) ([]*db.Item, error) {
	query := r.db.WithContext(ctx).Model(&db.Item{}).Order("id")
	if fragment != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(fragment)+"%")
	}
	var items []*db.Item
	if err := query.Find(&items).Error; err != nil {
		r.log.Error("Failed to search items by title", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// ByAuthor filters items whose author contains the fragment,
// case-insensitive. A blank fragment matches nothing.
func (r *CatalogRepo) ByAuthor(ctx context.Context, fragment string) ([]*db.Item, error) {
	if fragment == "" {
		return nil, nil
	}
	var items []*db.Item
	err := r.db.WithContext(ctx).
		Where("LOWER(author) LIKE ?", "%"+strings.ToLower(fragment)+"%").
		Order("id").
		Find(&items).Error
	if err != nil {
		r.log.Error("Failed to search items by author", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// Newest returns the most recently added items, newest first.
func (r *CatalogRepo) Newest(ctx context.Context, take int) ([]*db.Item, error) {
	var items []*db.Item
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(take).Find(&items).Error; err != nil {
		r.log.Error("Failed to list newest items", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// GetStats returns catalog counts for metrics.
func (r *CatalogRepo) GetStats(ctx context.Context) (total, available int64, err error) {
	if err := r.db.WithContext(ctx).Model(&db.Item{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count items: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&db.Item{}).Where("available = ?", true).Count(&available).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count available items: %w", err)
	}
	return total, available, nil
}
