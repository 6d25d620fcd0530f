package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/librarium/library/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrUserAlreadyRegistered is returned on a duplicate registration
	ErrUserAlreadyRegistered = errors.New("user already registered")
)

// UserRepo owns the set of registered users. Registration is permanent;
// users are never removed.
type UserRepo struct {
	db  *db.DB
	log *zap.Logger
}

// NewUserRepo creates a new user repository
func NewUserRepo(database *db.DB, logger *zap.Logger) *UserRepo {
	return &UserRepo{
		db:  database,
		log: logger,
	}
}

// Register records a new user. A blank email is rejected, and registering
// the same email twice is a conflict.
func (r *UserRepo) Register(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return db.ErrEmailRequired
	}

	var existing db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return ErrUserAlreadyRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Error("Failed to check user existence", zap.String("email", email), zap.Error(err))
		return err
	}

	if err := r.db.WithContext(ctx).Create(&db.User{Email: email}).Error; err != nil {
		r.log.Error("Failed to register user", zap.String("email", email), zap.Error(err))
		return err
	}

	r.log.Info("User registered", zap.String("email", email))
	return nil
}

// IsRegistered reports whether the email belongs to a registered user.
func (r *UserRepo) IsRegistered(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		r.log.Error("Failed to check registration", zap.String("email", email), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
