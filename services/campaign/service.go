package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialboost-core/pkg/db"
	"socialboost-core/pkg/errutil"
	"socialboost-core/pkg/verify"
	"socialboost-core/services/audit"
	"socialboost-core/services/user"
	"socialboost-core/services/wallet"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Completing a second task faster than this is treated as bot behaviour.
const velocityWindow = 5 * time.Second

type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	audit *audit.Service
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Audit *audit.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		audit: p.Audit,
	}
}

type CreateRequest struct {
	OwnerID     string
	Platform    string
	Type        Type
	Speed       Speed
	URL         string
	TargetCount int
}

// Create opens a campaign, debiting the owner's points for the full target
// in one locked transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Campaign, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	opts := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("owner_id", req.OwnerID),
		zap.String("platform", req.Platform),
	}

	if req.TargetCount <= 0 {
		return nil, errutil.ValidationFailed("target count must be positive")
	}
	if !req.Type.Valid() {
		return nil, errutil.ValidationFailed("unsupported campaign type")
	}
	if !verify.ValidateURL(req.Platform, req.URL) {
		return nil, errutil.ValidationFailed("profile URL does not match the selected platform")
	}

	price, err := PriceFor(req.Platform, req.Speed)
	if err != nil {
		return nil, err
	}
	totalCost := price.Cost * int64(req.TargetCount)

	c := &Campaign{
		ID:           s.node.Generate().String(),
		UserID:       req.OwnerID,
		Platform:     req.Platform,
		Type:         req.Type,
		Speed:        req.Speed,
		Username:     verify.ProfileName(req.URL),
		URL:          req.URL,
		TargetCount:  req.TargetCount,
		PointsReward: price.Reward,
		TotalCost:    totalCost,
		Active:       true,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner user.User
		if err := db.LockForUpdate(tx).Where("id = ?", req.OwnerID).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("user not found")
			}
			return err
		}

		if owner.Points < totalCost {
			return errutil.ValidationFailed("insufficient points for this campaign")
		}

		if err := tx.Model(&user.User{}).Where("id = ?", req.OwnerID).
			Update("points", gorm.Expr("points - ?", totalCost)).Error; err != nil {
			return err
		}

		if err := tx.Create(c).Error; err != nil {
			return err
		}

		entry := wallet.Transaction{
			ID:          s.node.Generate().String(),
			UserID:      req.OwnerID,
			Username:    owner.Username,
			Type:        wallet.TypeSpend,
			Status:      wallet.StatusCompleted,
			Amount:      totalCost,
			Description: fmt.Sprintf("Campaign %s on %s (%d %ss)", c.ID, c.Platform, c.TargetCount, c.Type),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return s.audit.RecordTx(tx, req.OwnerID, owner.Username, audit.ActionCampaignCreate,
			fmt.Sprintf("Created campaign %s (%s/%s, target %d, cost %d)", c.ID, c.Platform, c.Type, c.TargetCount, totalCost))
	}); err != nil {
		zap.L().With(opts...).Warn("failed to create campaign", zap.Error(err))
		return nil, err
	}

	zap.L().With(opts...).Info("campaign created", zap.String("campaign_id", c.ID))
	return c, nil
}

// RegisterCompletion credits a user for completing a campaign task. The
// velocity check runs before the transaction as a soft bot filter; the
// duplicate guard runs inside it, backed by the unique completer index.
func (s *Service) RegisterCompletion(ctx context.Context, campaignID, userID string) (*Completer, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	opts := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("campaign_id", campaignID),
		zap.String("user_id", userID),
	}

	if suspicious, err := s.velocitySuspicious(ctx, userID); err != nil {
		return nil, err
	} else if suspicious {
		return nil, errutil.SuspiciousVelocity("tasks completed too quickly, try again in a few seconds")
	}

	completer := &Completer{
		ID:         s.node.Generate().String(),
		CampaignID: campaignID,
		UserID:     userID,
		Rating:     RatingPending,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Campaign
		if err := db.LockForUpdate(tx).Where("id = ?", campaignID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("campaign not found")
			}
			return err
		}
		if !c.Active {
			return errutil.NotFound("campaign is no longer active")
		}
		if c.UserID == userID {
			return errutil.ValidationFailed("cannot complete your own campaign")
		}

		var u user.User
		if err := db.LockForUpdate(tx).Where("id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("user not found")
			}
			return err
		}
		completer.Username = u.Username

		var existing int64
		if err := tx.Model(&Completer{}).
			Where("campaign_id = ? AND user_id = ?", campaignID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errutil.DuplicateCompletion("task already completed")
		}

		if err := tx.Create(completer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errutil.DuplicateCompletion("task already completed")
			}
			return err
		}

		updates := map[string]any{
			"current_count": gorm.Expr("current_count + 1"),
		}
		if c.CurrentCount+1 >= c.TargetCount {
			updates["active"] = false
		}
		if err := tx.Model(&Campaign{}).Where("id = ?", campaignID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&user.User{}).Where("id = ?", userID).
			Update("points", gorm.Expr("points + ?", c.PointsReward)).Error; err != nil {
			return err
		}

		entry := wallet.Transaction{
			ID:          s.node.Generate().String(),
			UserID:      userID,
			Username:    u.Username,
			Type:        wallet.TypeEarn,
			Status:      wallet.StatusCompleted,
			Amount:      c.PointsReward,
			Description: fmt.Sprintf("Completed task for campaign %s", campaignID),
		}
		return tx.Create(&entry).Error
	}); err != nil {
		zap.L().With(opts...).Warn("failed to register completion", zap.Error(err))
		return nil, err
	}

	zap.L().With(opts...).Info("completion registered")
	return completer, nil
}

type ListFilter struct {
	ActiveOnly bool
	Platform   string
	OwnerID    string
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Campaign, error) {
	q := s.db.WithContext(ctx).Preload("Completers").Order("created_at DESC")
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.OwnerID != "" {
		q = q.Where("user_id = ?", filter.OwnerID)
	}

	var campaigns []Campaign
	if err := q.Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (s *Service) velocitySuspicious(ctx context.Context, userID string) (bool, error) {
	var last wallet.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, wallet.TypeEarn).
		Order("created_at DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return time.Since(last.CreatedAt) < velocityWindow, nil
}
