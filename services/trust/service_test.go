package trust

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialboost-core/pkg/errutil"
	"socialboost-core/services/audit"
	"socialboost-core/services/campaign"
	"socialboost-core/services/testutil"
	"socialboost-core/services/user"
	"socialboost-core/services/wallet"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t,
		&user.User{}, &user.LinkedAccount{},
		&campaign.Campaign{}, &campaign.Completer{},
		&wallet.Transaction{}, &audit.Log{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	auditSvc := audit.NewService(audit.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Node: node, Audit: auditSvc})
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, id string, trust, favorable, negative int) *user.User {
	t.Helper()
	u := &user.User{
		ID:                   id,
		Username:             "user-" + id,
		Email:                id + "@example.com",
		PasswordHash:         "x",
		Points:               200,
		Role:                 user.RoleUser,
		TrustScore:           trust,
		FavorableRatingCycle: favorable,
		NegativeRatingCycle:  negative,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCompletion(t *testing.T, db *gorm.DB, campaignID, ownerID, completerID string) {
	t.Helper()
	require.NoError(t, db.Create(&campaign.Campaign{
		ID:           campaignID,
		UserID:       ownerID,
		Platform:     "instagram",
		Type:         campaign.TypeFollow,
		Speed:        campaign.SpeedNormal,
		URL:          "https://instagram.com/someone",
		TargetCount:  10,
		PointsReward: 5,
		TotalCost:    60,
		Active:       true,
	}).Error)
	require.NoError(t, db.Create(&campaign.Completer{
		ID:         campaignID + "-" + completerID,
		CampaignID: campaignID,
		UserID:     completerID,
		Username:   "user-" + completerID,
		Rating:     campaign.RatingPending,
	}).Error)
}

func loadUser(t *testing.T, db *gorm.DB, id string) user.User {
	t.Helper()
	var u user.User
	require.NoError(t, db.Where("id = ?", id).First(&u).Error)
	return u
}

func TestRateFavorableIncrementsCycleOnly(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 90, 0, 0)
	seedCompletion(t, db, "c1", "owner", "worker")

	result, err := svc.Rate(context.Background(), "owner", "c1", "worker", campaign.RatingFavorable)
	require.NoError(t, err)
	require.Equal(t, 90, result.TrustScore)

	u := loadUser(t, db, "worker")
	require.Equal(t, 90, u.TrustScore)
	require.Equal(t, 1, u.FavorableRatingCycle)
	require.Equal(t, 0, u.NegativeRatingCycle)
}

func TestRateThirdFavorableRaisesTrustAndResetsCycle(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 90, 2, 0)
	seedCompletion(t, db, "c1", "owner", "worker")

	result, err := svc.Rate(context.Background(), "owner", "c1", "worker", campaign.RatingFavorable)
	require.NoError(t, err)
	require.Equal(t, 91, result.TrustScore)

	u := loadUser(t, db, "worker")
	require.Equal(t, 91, u.TrustScore)
	require.Equal(t, 0, u.FavorableRatingCycle)
}

func TestRateThirdNegativeDropsTrustByFive(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 90, 0, 2)
	seedCompletion(t, db, "c1", "owner", "worker")

	result, err := svc.Rate(context.Background(), "owner", "c1", "worker", campaign.RatingNegative)
	require.NoError(t, err)
	require.Equal(t, 85, result.TrustScore)

	u := loadUser(t, db, "worker")
	require.Equal(t, 85, u.TrustScore)
	require.Equal(t, 0, u.NegativeRatingCycle)
}

func TestRateTrustClampsAtZero(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 2, 0, 2)
	seedCompletion(t, db, "c1", "owner", "worker")

	result, err := svc.Rate(context.Background(), "owner", "c1", "worker", campaign.RatingNegative)
	require.NoError(t, err)
	require.Equal(t, 0, result.TrustScore)
}

func TestRateTrustClampsAtHundred(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 100, 2, 0)
	seedCompletion(t, db, "c1", "owner", "worker")

	result, err := svc.Rate(context.Background(), "owner", "c1", "worker", campaign.RatingFavorable)
	require.NoError(t, err)
	require.Equal(t, 100, result.TrustScore)

	// the cycle still resets even when the score cannot move
	u := loadUser(t, db, "worker")
	require.Equal(t, 0, u.FavorableRatingCycle)
}

func TestRateCyclesAreIndependent(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 90, 0, 0)

	ratings := []campaign.Rating{
		campaign.RatingFavorable,
		campaign.RatingNegative,
		campaign.RatingFavorable,
		campaign.RatingNegative,
	}
	for i, r := range ratings {
		id := fmt.Sprintf("c%d", i)
		seedCompletion(t, db, id, "owner", "worker")
		_, err := svc.Rate(context.Background(), "owner", id, "worker", r)
		require.NoError(t, err)
	}

	u := loadUser(t, db, "worker")
	require.Equal(t, 90, u.TrustScore)
	require.Equal(t, 2, u.FavorableRatingCycle)
	require.Equal(t, 2, u.NegativeRatingCycle)
}

func TestRateThirtyFavorablesReachHundred(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 90, 0, 0)

	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("c%d", i)
		seedCompletion(t, db, id, "owner", "worker")
		result, err := svc.Rate(context.Background(), "owner", id, "worker", campaign.RatingFavorable)
		require.NoError(t, err)
		if i == 29 {
			require.Equal(t, 100, result.TrustScore)
		}
	}

	u := loadUser(t, db, "worker")
	require.Equal(t, 100, u.TrustScore)
	require.Equal(t, 0, u.FavorableRatingCycle)
}

func TestRateRejectsSecondRating(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 90, 0, 0)
	seedCompletion(t, db, "c1", "owner", "worker")

	_, err := svc.Rate(context.Background(), "owner", "c1", "worker", campaign.RatingFavorable)
	require.NoError(t, err)

	_, err = svc.Rate(context.Background(), "owner", "c1", "worker", campaign.RatingNegative)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusAlreadyRated, be.Code)

	u := loadUser(t, db, "worker")
	require.Equal(t, 1, u.FavorableRatingCycle)
	require.Equal(t, 0, u.NegativeRatingCycle)
}

func TestRateOnlyOwnerCanRate(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "owner", 90, 0, 0)
	seedUser(t, db, "worker", 90, 0, 0)
	seedCompletion(t, db, "c1", "owner", "worker")

	_, err := svc.Rate(context.Background(), "worker", "c1", "worker", campaign.RatingFavorable)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusForbidden, be.Code)
}

func TestClaimRewardIsOneShot(t *testing.T) {
	svc, db := newTestService(t)
	u := seedUser(t, db, "worker", 90, 0, 0)
	require.NoError(t, db.Model(&user.User{}).Where("id = ?", u.ID).
		Update("trust_score", 100).Error)

	result, err := svc.ClaimReward(context.Background(), u.ID)
	require.NoError(t, err)
	require.Contains(t, []int64{20, 50, 100, 200, 500, 150, 300}, result.Prize)

	after := loadUser(t, db, u.ID)
	require.Equal(t, 90, after.TrustScore)
	require.True(t, after.TrustRewardClaimed)
	require.NotNil(t, after.TrustRewardClaimedAt)
	require.Equal(t, int64(200)+result.Prize, after.Points)

	var entry wallet.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", u.ID, wallet.TypeTrustReward).
		First(&entry).Error)
	require.Equal(t, result.Prize, entry.Amount)

	_, err = svc.ClaimReward(context.Background(), u.ID)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusConflict, be.Code)
}

func TestClaimRewardRequiresFullTrust(t *testing.T) {
	svc, db := newTestService(t)
	u := seedUser(t, db, "worker", 99, 0, 0)

	_, err := svc.ClaimReward(context.Background(), u.ID)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)

	after := loadUser(t, db, u.ID)
	require.False(t, after.TrustRewardClaimed)
	require.Equal(t, int64(200), after.Points)
}

func TestRewardEligibility(t *testing.T) {
	svc, db := newTestService(t)
	seedUser(t, db, "low", 90, 0, 0)
	high := seedUser(t, db, "high", 90, 0, 0)
	require.NoError(t, db.Model(&user.User{}).Where("id = ?", high.ID).
		Update("trust_score", 100).Error)

	e, err := svc.RewardEligibility(context.Background(), "low")
	require.NoError(t, err)
	require.False(t, e.Eligible)

	e, err = svc.RewardEligibility(context.Background(), "high")
	require.NoError(t, err)
	require.True(t, e.Eligible)

	_, err = svc.ClaimReward(context.Background(), "high")
	require.NoError(t, err)

	e, err = svc.RewardEligibility(context.Background(), "high")
	require.NoError(t, err)
	require.False(t, e.Eligible)
	require.True(t, e.Claimed)
}
