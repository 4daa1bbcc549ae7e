package notify

import (
	"context"
	"encoding/json"

	"socialboost-core/pkg/config"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Mailer delivers outbound mail. The default implementation only logs;
// a real SMTP/provider client satisfies the same interface in production.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type logMailer struct{}

func (logMailer) Send(ctx context.Context, to, subject, body string) error {
	zap.L().Info("outbound email",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

func NewLogMailer() Mailer {
	return logMailer{}
}

type Handler struct {
	cfg    *config.Config
	mailer Mailer
}

func NewHandler(cfg *config.Config, mailer Mailer) *Handler {
	return &Handler{cfg: cfg, mailer: mailer}
}

func (h *Handler) HandleEmail(ctx context.Context, t *asynq.Task) error {
	var p EmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	return h.mailer.Send(ctx, p.To, p.Subject, p.Body)
}

func (h *Handler) HandlePurchasePending(ctx context.Context, t *asynq.Task) error {
	var p PurchasePendingPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}

	zap.L().Info("purchase awaiting approval",
		zap.String("transaction_id", p.TransactionID),
		zap.String("user_id", p.UserID),
		zap.Int64("amount", p.Amount),
	)

	if h.cfg.Notify.AdminEmail == "" {
		return nil
	}
	return h.mailer.Send(ctx, h.cfg.Notify.AdminEmail,
		"Purchase pending approval",
		"Transaction "+p.TransactionID+" from "+p.Username+" is waiting for manual reconciliation ("+p.PriceLabel+").")
}
