package db

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Item kinds. EBooks carry every printed-book field plus a file format.
const (
	KindBook  = "book"
	KindEBook = "ebook"
)

var (
	// ErrTitleRequired is returned when an item is created without a title.
	ErrTitleRequired = errors.New("title is required")

	// ErrEmailRequired is returned when a reservation is requested without a user email.
	ErrEmailRequired = errors.New("user email is required")

	// ErrInvalidPeriod is returned when a reservation period does not satisfy from < to.
	ErrInvalidPeriod = errors.New("start date must be before end date")

	// ErrItemNotAvailable is returned when the target item is already reserved.
	ErrItemNotAvailable = errors.New("item is not available for reservation")

	// ErrReservationInactive is returned when cancelling an already cancelled reservation.
	ErrReservationInactive = errors.New("cannot cancel an inactive reservation")
)

// Item is a reservable catalog entry. Kind discriminates printed books from
// ebooks; Format is only set for ebooks. IDs are assigned by the caller from
// CatalogRepo.NextItemID and are never reused.
type Item struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"type:varchar(20);not null;index:idx_items_kind" json:"kind"`
	Title     string    `gorm:"type:varchar(255);not null;index:idx_items_title" json:"title"`
	Author    string    `gorm:"type:varchar(255);not null;index:idx_items_author" json:"author"`
	ISBN      string    `gorm:"type:varchar(32);not null" json:"isbn"`
	Format    string    `gorm:"type:varchar(20)" json:"format,omitempty"`
	Available bool      `gorm:"not null;default:true;index:idx_items_available" json:"available"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "items"
}

// NewBook builds a printed-book item. The id comes from the catalog's id
// generator; the title must be non-blank.
func NewBook(id int, title, author, isbn string) (*Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	return &Item{
		ID:        id,
		Kind:      KindBook,
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Available: true,
	}, nil
}

// NewEBook builds an ebook item carrying the printed-book fields plus a file format.
func NewEBook(id int, title, author, isbn, format string) (*Item, error) {
	item, err := NewBook(id, title, author, isbn)
	if err != nil {
		return nil, err
	}
	item.Kind = KindEBook
	item.Format = format
	return item, nil
}

// Describe renders the item for human-readable listings, per kind.
func (i *Item) Describe() string {
	switch i.Kind {
	case KindEBook:
		return fmt.Sprintf("[EBook] ID: %d, Title: %s, Author: %s, ISBN: %s, Format: %s, Available: %t",
			i.ID, i.Title, i.Author, i.ISBN, i.Format, i.Available)
	default:
		return fmt.Sprintf("[Book] ID: %d, Title: %s, Author: %s, ISBN: %s, Available: %t",
			i.ID, i.Title, i.Author, i.ISBN, i.Available)
	}
}

// Reservation is one entry in the append-only ledger. Rows are never deleted;
// cancellation only clears the Active flag, so ids stay strictly increasing
// for the lifetime of the store.
type Reservation struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID    int       `gorm:"not null;index:idx_reservations_item" json:"item_id"`
	UserEmail string    `gorm:"type:varchar(255);not null;index:idx_reservations_user" json:"user_email"`
	From      time.Time `gorm:"column:start_date;not null" json:"from"`
	To        time.Time `gorm:"column:end_date;not null" json:"to"`
	Active    bool      `gorm:"not null;default:true;index:idx_reservations_active" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for the Reservation model
func (Reservation) TableName() string {
	return "reservations"
}

// NewReservation validates and builds a reservation against an item. The item
// must still be available and the period must satisfy from < to; the engine
// checks both earlier in its validation chain, and the constructor enforces
// them again so a reservation can never exist in violation.
func NewReservation(item *Item, userEmail string, from, to time.Time) (*Reservation, error) {
	if strings.TrimSpace(userEmail) == "" {
		return nil, ErrEmailRequired
	}
	if !from.Before(to) {
		return nil, ErrInvalidPeriod
	}
	if !item.Available {
		return nil, fmt.Errorf("item %q: %w", item.Title, ErrItemNotAvailable)
	}
	return &Reservation{
		ItemID:    item.ID,
		UserEmail: userEmail,
		From:      from,
		To:        to,
		Active:    true,
	}, nil
}

// Cancel transitions the reservation to its terminal inactive state.
// Cancelling twice is an error, not a no-op.
func (r *Reservation) Cancel() error {
	if !r.Active {
		return ErrReservationInactive
	}
	r.Active = false
	return nil
}

// LengthDays returns the reservation length in whole days.
func (r *Reservation) LengthDays() int {
	return int(r.To.Sub(r.From).Hours() / 24)
}

// Overlaps reports whether the half-open period [from, to) collides with the
// reservation's own [From, To).
func (r *Reservation) Overlaps(from, to time.Time) bool {
	return (!from.Before(r.From) && from.Before(r.To)) ||
		(to.After(r.From) && !to.After(r.To)) ||
		(!from.After(r.From) && !to.Before(r.To))
}

// User is a registered library member, identified by email.
type User struct {
	Email     string    `gorm:"primaryKey;type:varchar(255)" json:"email"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
