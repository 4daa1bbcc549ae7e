package user

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	DefaultPoints      int64 = 200
	DefaultTrustScore  int   = 90
	DefaultCountryCode       = "MA"
)

// User is the account row. Points and trust fields are only ever mutated
// inside locked transactions.
type User struct {
	ID                   string     `gorm:"column:id;primaryKey" json:"id"`
	Username             string     `gorm:"column:username;type:varchar(100);not null" json:"username"`
	Email                string     `gorm:"column:email;type:varchar(150);uniqueIndex;not null" json:"email"`
	RecoveryEmail        string     `gorm:"column:recovery_email;type:varchar(150)" json:"recoveryEmail,omitempty"`
	PasswordHash         string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Points               int64      `gorm:"column:points;not null;default:200" json:"points"`
	Role                 Role       `gorm:"column:role;type:varchar(20);not null;default:'user'" json:"role"`
	TrustScore           int        `gorm:"column:trust_score;not null;default:90" json:"trustScore"`
	FavorableRatingCycle int        `gorm:"column:favorable_rating_cycle;not null;default:0" json:"favorableRatingCycle"`
	NegativeRatingCycle  int        `gorm:"column:negative_rating_cycle;not null;default:0" json:"negativeRatingCycle"`
	TrustRewardClaimed   bool       `gorm:"column:trust_reward_claimed;not null;default:false" json:"trustRewardClaimed"`
	TrustRewardClaimedAt *time.Time `gorm:"column:trust_reward_claimed_at" json:"trustRewardClaimedAt,omitempty"`
	IsSuspended          bool       `gorm:"column:is_suspended;not null;default:false" json:"isSuspended"`
	Avatar               string     `gorm:"column:avatar;type:text" json:"avatar,omitempty"`
	LinkingDismissed     bool       `gorm:"column:linking_dismissed;not null;default:false" json:"linkingDismissed"`
	IPAddress            string     `gorm:"column:ip_address;type:varchar(50)" json:"-"`
	CountryCode          string     `gorm:"column:country_code;type:varchar(10);default:'MA'" json:"countryCode"`
	ResetCode            string     `gorm:"column:reset_code;type:varchar(10)" json:"-"`
	TotalFollowsDone     int        `gorm:"column:total_follows_done;not null;default:0" json:"totalFollowsDone"`
	TotalFollowersGained int        `gorm:"column:total_followers_gained;not null;default:0" json:"totalFollowersReceived"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	LinkedAccounts []LinkedAccount `gorm:"foreignKey:UserID" json:"linkedAccounts"`
}

func (User) TableName() string {
	return "users"
}

// LinkedAccount is one verified social profile attached to a user.
type LinkedAccount struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;index;not null" json:"userId"`
	Platform  string    `gorm:"column:platform;type:varchar(50);not null" json:"platform"`
	URL       string    `gorm:"column:url;type:text;not null" json:"url"`
	Username  string    `gorm:"column:username;type:varchar(100)" json:"username"`
	Avatar    string    `gorm:"column:avatar;type:text" json:"avatar,omitempty"`
	Followers int       `gorm:"column:followers;not null;default:0" json:"followers"`
	Verified  bool      `gorm:"column:verified;not null;default:false" json:"verified"`
	LinkedAt  time.Time `gorm:"column:linked_at;autoCreateTime" json:"linkedAt"`
}

func (LinkedAccount) TableName() string {
	return "linked_accounts"
}
