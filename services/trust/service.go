package trust

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialboost-core/pkg/db"
	"socialboost-core/pkg/errutil"
	"socialboost-core/pkg/task"
	"socialboost-core/services/audit"
	"socialboost-core/services/campaign"
	"socialboost-core/services/notify"
	"socialboost-core/services/user"
	"socialboost-core/services/wallet"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cycleThreshold  = 3
	favorableStep   = 1
	negativePenalty = 5

	maxTrust       = 100
	minTrust       = 0
	postClaimTrust = 90
)

type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	audit    *audit.Service
	enqueuer task.Enqueuer
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Audit    *audit.Service
	Enqueuer task.Enqueuer `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		audit:    p.Audit,
		enqueuer: p.Enqueuer,
	}
}

type RateResult struct {
	Message    string `json:"message"`
	TrustScore int    `json:"trustScore"`
}

// Rate records the campaign owner's verdict on a completer and feeds the
// completer's trust cycle. Each completion is rated at most once; the two
// cycle counters move independently and only a counter hitting the
// threshold resets itself.
func (s *Service) Rate(ctx context.Context, raterID, campaignID, completerUserID string, rating campaign.Rating) (*RateResult, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	opts := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("campaign_id", campaignID),
		zap.String("completer_id", completerUserID),
		zap.String("rating", string(rating)),
	}

	if rating != campaign.RatingFavorable && rating != campaign.RatingNegative {
		return nil, errutil.ValidationFailed("rating must be favorable or negative")
	}

	result := &RateResult{}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c campaign.Campaign
		if err := tx.Where("id = ?", campaignID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("campaign not found")
			}
			return err
		}

		if c.UserID != raterID {
			return errutil.Forbidden("only the campaign owner can rate completions")
		}

		var completer campaign.Completer
		if err := db.LockForUpdate(tx).
			Where("campaign_id = ? AND user_id = ?", campaignID, completerUserID).
			First(&completer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("user did not complete this campaign")
			}
			return err
		}

		if completer.Rating != campaign.RatingPending {
			return errutil.AlreadyRated("this completion has already been rated")
		}

		now := time.Now()
		if err := tx.Model(&campaign.Completer{}).Where("id = ?", completer.ID).Updates(map[string]any{
			"rating":   rating,
			"rated_at": now,
		}).Error; err != nil {
			return err
		}

		var u user.User
		if err := db.LockForUpdate(tx).Where("id = ?", completerUserID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("rated user not found")
			}
			return err
		}

		trust := u.TrustScore
		favorableCycle := u.FavorableRatingCycle
		negativeCycle := u.NegativeRatingCycle

		if rating == campaign.RatingFavorable {
			result.Message = "rating accepted"
			favorableCycle++
			if favorableCycle >= cycleThreshold {
				if trust < maxTrust {
					trust = min(maxTrust, trust+favorableStep)
					result.Message = "three favorable ratings, trust raised by 1%"
					if trust == maxTrust {
						result.Message = "trust reached 100%, the reward wheel is unlocked"
					}
				}
				favorableCycle = 0
			}
		} else {
			result.Message = "report recorded"
			negativeCycle++
			if negativeCycle >= cycleThreshold {
				trust = max(minTrust, trust-negativePenalty)
				result.Message = "three negative reports, trust lowered by 5%"
				negativeCycle = 0
			}
		}

		if err := tx.Model(&user.User{}).Where("id = ?", completerUserID).Updates(map[string]any{
			"trust_score":            trust,
			"favorable_rating_cycle": favorableCycle,
			"negative_rating_cycle":  negativeCycle,
		}).Error; err != nil {
			return err
		}

		result.TrustScore = trust

		return s.audit.RecordTx(tx, completerUserID, u.Username, audit.ActionRatingReceived,
			fmt.Sprintf("Received %s rating. New Trust: %d%%", rating, trust))
	}); err != nil {
		zap.L().With(opts...).Warn("failed to rate completion", zap.Error(err))
		return nil, err
	}

	zap.L().With(opts...).Info("completion rated", zap.Int("trust_score", result.TrustScore))
	return result, nil
}

type Eligibility struct {
	Eligible   bool       `json:"eligible"`
	TrustScore int        `json:"trustScore"`
	Claimed    bool       `json:"claimed"`
	ClaimedAt  *time.Time `json:"claimedAt,omitempty"`
}

// RewardEligibility reports whether the user can spin the trust-100 wheel.
func (s *Service) RewardEligibility(ctx context.Context, userID string) (*Eligibility, error) {
	var u user.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("user not found")
		}
		return nil, err
	}

	return &Eligibility{
		Eligible:   u.TrustScore == maxTrust && !u.TrustRewardClaimed,
		TrustScore: u.TrustScore,
		Claimed:    u.TrustRewardClaimed,
		ClaimedAt:  u.TrustRewardClaimedAt,
	}, nil
}

type ClaimResult struct {
	Prize      int64   `json:"prize"`
	Angle      float64 `json:"angle"`
	TrustScore int     `json:"trustScore"`
}

// ClaimReward spins the wheel once per lifetime for a trust-100 user. The
// prize credit, trust reset and claim flag commit atomically.
func (s *Service) ClaimReward(ctx context.Context, userID string) (*ClaimResult, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	angle, prize := Draw()
	result := &ClaimResult{Prize: prize, Angle: angle, TrustScore: postClaimTrust}

	var email string
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u user.User
		if err := db.LockForUpdate(tx).Where("id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("user not found")
			}
			return err
		}

		if u.TrustRewardClaimed {
			return errutil.Conflict("trust reward already claimed")
		}
		if u.TrustScore != maxTrust {
			return errutil.ValidationFailed("trust score must be 100 to claim the reward")
		}
		email = u.Email

		now := time.Now()
		if err := tx.Model(&user.User{}).Where("id = ?", userID).Updates(map[string]any{
			"points":                  gorm.Expr("points + ?", prize),
			"trust_score":             postClaimTrust,
			"favorable_rating_cycle":  0,
			"trust_reward_claimed":    true,
			"trust_reward_claimed_at": now,
		}).Error; err != nil {
			return err
		}

		entry := wallet.Transaction{
			ID:          s.node.Generate().String(),
			UserID:      userID,
			Username:    u.Username,
			Type:        wallet.TypeTrustReward,
			Status:      wallet.StatusCompleted,
			Amount:      prize,
			Description: "Trust wheel reward",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return s.audit.RecordTx(tx, userID, u.Username, audit.ActionTrustReward,
			fmt.Sprintf("Claimed trust wheel reward: %d gems", prize))
	}); err != nil {
		zap.L().Warn("failed to claim trust reward",
			zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	if s.enqueuer != nil {
		if t, err := notify.NewEmailTask(notify.EmailPayload{
			To:      email,
			Subject: "Trust reward claimed",
			Body:    fmt.Sprintf("You won %d gems on the trust wheel.", prize),
		}); err == nil {
			if _, err := s.enqueuer.Enqueue(t); err != nil {
				zap.L().Warn("failed to enqueue reward notification", zap.Error(err))
			}
		}
	}

	zap.L().Info("trust reward claimed",
		zap.String("user_id", userID), zap.Int64("prize", prize))
	return result, nil
}
