package campaign

import (
	"time"

	"socialboost-core/pkg/errutil"
)

type Type string
type Speed string
type Rating string

const (
	TypeFollow  Type = "follow"
	TypeLike    Type = "like"
	TypeComment Type = "comment"

	SpeedNormal Speed = "normal"
	SpeedFast   Speed = "fast"
	SpeedUltra  Speed = "ultra"

	RatingPending   Rating = "pending"
	RatingFavorable Rating = "favorable"
	RatingNegative  Rating = "negative"
)

func (t Type) Valid() bool {
	return t == TypeFollow || t == TypeLike || t == TypeComment
}

// Pricing is the per-unit cost charged to the owner and the reward credited
// to each completer, by platform and delivery speed.
type Pricing struct {
	Cost   int64
	Reward int64
}

var pricing = map[string]map[Speed]Pricing{
	"youtube": {
		SpeedNormal: {Cost: 12, Reward: 10},
		SpeedFast:   {Cost: 22, Reward: 18},
		SpeedUltra:  {Cost: 35, Reward: 30},
	},
	"instagram": {
		SpeedNormal: {Cost: 6, Reward: 5},
		SpeedFast:   {Cost: 12, Reward: 10},
		SpeedUltra:  {Cost: 20, Reward: 16},
	},
	"tiktok": {
		SpeedNormal: {Cost: 8, Reward: 6},
		SpeedFast:   {Cost: 15, Reward: 12},
		SpeedUltra:  {Cost: 25, Reward: 20},
	},
}

// PriceFor resolves the pricing row for a platform/speed pair.
func PriceFor(platform string, speed Speed) (Pricing, error) {
	speeds, ok := pricing[platform]
	if !ok {
		return Pricing{}, errutil.ValidationFailed("unsupported platform")
	}
	p, ok := speeds[speed]
	if !ok {
		return Pricing{}, errutil.ValidationFailed("unsupported delivery speed")
	}
	return p, nil
}

// Campaign is one promotion order. current_count only moves forward, inside
// locked completion transactions, and the row deactivates when the target is
// reached.
type Campaign struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	UserID       string    `gorm:"column:user_id;index;not null" json:"userId"`
	Platform     string    `gorm:"column:platform;type:varchar(50);not null" json:"platform"`
	Type         Type      `gorm:"column:type;type:varchar(20);not null;default:'follow'" json:"type"`
	Speed        Speed     `gorm:"column:speed;type:varchar(20);not null;default:'normal'" json:"speed"`
	Username     string    `gorm:"column:username;type:varchar(100)" json:"username"`
	URL          string    `gorm:"column:url;type:text;not null" json:"url"`
	TargetCount  int       `gorm:"column:target_count;not null" json:"targetCount"`
	CurrentCount int       `gorm:"column:current_count;not null;default:0" json:"currentCount"`
	PointsReward int64     `gorm:"column:points_reward;not null" json:"pointsReward"`
	TotalCost    int64     `gorm:"column:total_cost;not null" json:"totalCost"`
	Active       bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Completers []Completer `gorm:"foreignKey:CampaignID" json:"completers"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// Completer records one user's completion of one campaign. The unique index
// on (campaign_id, user_id) is the hard guarantee against duplicate rewards;
// the in-transaction existence check is only the friendly error path.
type Completer struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	CampaignID string     `gorm:"column:campaign_id;uniqueIndex:idx_campaign_completer;not null" json:"campaignId"`
	UserID     string     `gorm:"column:user_id;uniqueIndex:idx_campaign_completer;not null" json:"userId"`
	Username   string     `gorm:"column:username;type:varchar(100)" json:"username"`
	Rating     Rating     `gorm:"column:rating;type:varchar(20);not null;default:'pending'" json:"rating"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"date"`
	RatedAt    *time.Time `gorm:"column:rated_at" json:"ratedAt,omitempty"`
}

func (Completer) TableName() string {
	return "campaign_completers"
}
