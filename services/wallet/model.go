package wallet

import "time"

type TransactionType string
type TransactionStatus string

const (
	TypeEarn        TransactionType = "earn"
	TypeSpend       TransactionType = "spend"
	TypePurchase    TransactionType = "purchase"
	TypePenalty     TransactionType = "penalty"
	TypeDailyReward TransactionType = "daily_reward"
	TypeTrustReward TransactionType = "trust_reward"

	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusRejected  TransactionStatus = "rejected"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeEarn, TypeSpend, TypePurchase, TypePenalty, TypeDailyReward, TypeTrustReward:
		return true
	}
	return false
}

// Transaction is one immutable ledger row. Amount is always positive; the
// type carries the direction. Only purchases are born pending and only their
// status ever changes, exactly once.
type Transaction struct {
	ID          string            `gorm:"column:id;primaryKey" json:"id"`
	UserID      string            `gorm:"column:user_id;index;not null" json:"userId"`
	Username    string            `gorm:"column:username;type:varchar(100)" json:"username"`
	Type        TransactionType   `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Status      TransactionStatus `gorm:"column:status;type:varchar(20);not null;default:'completed'" json:"status"`
	Amount      int64             `gorm:"column:amount;not null" json:"amount"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index" json:"date"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// GemPackage is one purchasable bundle, reconciled manually by an admin.
type GemPackage struct {
	Gems       int64
	PriceLabel string
}

var Packages = map[int64]GemPackage{
	1000:  {Gems: 1000, PriceLabel: "50 DH"},
	5000:  {Gems: 5000, PriceLabel: "200 DH"},
	15000: {Gems: 15000, PriceLabel: "500 DH"},
	40000: {Gems: 40000, PriceLabel: "1000 DH"},
}
