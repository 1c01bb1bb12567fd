package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/tool"
)

var ErrCardNotFound = errors.New("card: token not found")

type Store interface {
	// Save inserts c unless its token is already stored.
	Save(ctx context.Context, c *models.CardToken) error
	ListActive(ctx context.Context, userID string) ([]*models.CardToken, error)
	// FindActive returns the user's token, ErrCardNotFound when missing,
	// removed or owned by someone else.
	FindActive(ctx context.Context, userID, token string) (*models.CardToken, error)
	MarkRemoved(ctx context.Context, id string, at time.Time) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, c *models.CardToken) error {
	if c.ID == "" {
		c.ID = tool.GenerateUUIDV7()
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
		Create(c).Error
	if err != nil {
		return fmt.Errorf("failed to save card token: %w", err)
	}
	return nil
}

func (s *GormStore) ListActive(ctx context.Context, userID string) ([]*models.CardToken, error) {
	var rows []*models.CardToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND removed_at IS NULL", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list card tokens: %w", err)
	}
	return rows, nil
}

func (s *GormStore) FindActive(ctx context.Context, userID, token string) (*models.CardToken, error) {
	var c models.CardToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token = ? AND removed_at IS NULL", userID, token).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load card token: %w", err)
	}
	return &c, nil
}

func (s *GormStore) MarkRemoved(ctx context.Context, id string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.CardToken{}).
		Where("id = ?", id).
		Update("removed_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark card token removed: %w", err)
	}
	return nil
}
