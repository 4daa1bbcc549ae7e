package activity

import (
	"context"
	"encoding/json"
	"time"

	"socialboost-core/services/wallet"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheKey = "activity:feed"
	cacheTTL = 10 * time.Second
	feedSize = 20
)

// Entry is one row on the public activity board.
type Entry struct {
	Username    string    `json:"username"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

type Service struct {
	db    *gorm.DB
	redis *redis.Client
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Redis *redis.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB, redis: p.Redis}
}

// Feed returns the latest completed transactions. The projection is cached
// in redis briefly to absorb the clients' polling loop; the cache is a pure
// optimization and every failure falls through to the database.
func (s *Service) Feed(ctx context.Context) ([]Entry, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var entries []Entry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		}
	}

	var transactions []wallet.Transaction
	if err := s.db.WithContext(ctx).
		Where("status = ?", wallet.StatusCompleted).
		Order("created_at DESC").
		Limit(feedSize).
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(transactions))
	for _, t := range transactions {
		entries = append(entries, Entry{
			Username:    t.Username,
			Type:        string(t.Type),
			Amount:      t.Amount,
			Description: t.Description,
			Date:        t.CreatedAt,
		})
	}

	if s.redis != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.redis.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
				zap.L().Warn("failed to cache activity feed", zap.Error(err))
			}
		}
	}

	return entries, nil
}
