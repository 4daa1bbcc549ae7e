package audit

import "time"

// Action tags recorded across the system.
const (
	ActionAccountCreate  = "ACCOUNT_CREATE"
	ActionSecurityUpdate = "SECURITY_UPDATE"
	ActionSuspend        = "ACCOUNT_SUSPEND"
	ActionCampaignCreate = "CAMPAIGN_CREATE"
	ActionRatingReceived = "rating_received"
	ActionTrustReward    = "TRUST_REWARD_CLAIM"
	ActionPurchaseReq    = "PURCHASE_REQUEST"
	ActionPointsAdjust   = "POINTS_ADJUST"
)

// Log is an append-only audit record. Rows are never updated or deleted.
type Log struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;index" json:"userId"`
	Username  string    `gorm:"column:username" json:"username"`
	Action    string    `gorm:"column:action;type:varchar(100);not null" json:"action"`
	Details   string    `gorm:"column:details;type:text" json:"details"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"timestamp"`
}

func (Log) TableName() string {
	return "audit_logs"
}
