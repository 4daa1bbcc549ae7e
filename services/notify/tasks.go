package notify

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeEmail           = "notify:email"
	TypePurchasePending = "notify:purchase_pending"
)

type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type PurchasePendingPayload struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Amount        int64  `json:"amount"`
	PriceLabel    string `json:"price_label"`
}

func NewEmailTask(p EmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmail, payload), nil
}

func NewPurchasePendingTask(p PurchasePendingPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePurchasePending, payload, asynq.Queue("low")), nil
}
