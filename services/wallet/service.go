package wallet

import (
	"context"
	"errors"
	"fmt"

	"socialboost-core/pkg/db"
	"socialboost-core/pkg/errutil"
	"socialboost-core/pkg/task"
	"socialboost-core/services/audit"
	"socialboost-core/services/notify"
	"socialboost-core/services/user"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
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

type AppendRequest struct {
	UserID      string
	Username    string
	Type        TransactionType
	Amount      int64
	Description string
	Status      TransactionStatus
}

// Append writes one ledger row. Purchases default to pending, everything
// else to completed.
func (s *Service) Append(ctx context.Context, req AppendRequest) (*Transaction, error) {
	if req.Amount <= 0 {
		return nil, errutil.ValidationFailed("amount must be positive")
	}
	if !req.Type.Valid() {
		return nil, errutil.ValidationFailed("unsupported transaction type")
	}

	status := req.Status
	if status == "" {
		status = StatusCompleted
		if req.Type == TypePurchase {
			status = StatusPending
		}
	}

	t := &Transaction{
		ID:          s.node.Generate().String(),
		UserID:      req.UserID,
		Username:    req.Username,
		Type:        req.Type,
		Status:      status,
		Amount:      req.Amount,
		Description: req.Description,
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// List returns ledger rows newest first, optionally scoped to one user.
func (s *Service) List(ctx context.Context, userID string) ([]Transaction, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var transactions []Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// RequestPurchase opens a pending purchase for a known gem package and pings
// the admin channel. The ledger row stays pending until an admin processes it.
func (s *Service) RequestPurchase(ctx context.Context, userID string, gems int64) (*Transaction, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	pkg, ok := Packages[gems]
	if !ok {
		return nil, errutil.ValidationFailed("unknown gem package")
	}

	var u user.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, errutil.NotFound("user not found")
	}

	t := &Transaction{
		ID:          s.node.Generate().String(),
		UserID:      userID,
		Username:    u.Username,
		Type:        TypePurchase,
		Status:      StatusPending,
		Amount:      pkg.Gems,
		Description: fmt.Sprintf("Gem package %d (%s)", pkg.Gems, pkg.PriceLabel),
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return s.audit.RecordTx(tx, userID, u.Username, audit.ActionPurchaseReq, t.Description)
	}); err != nil {
		return nil, err
	}

	if s.enqueuer != nil {
		notifyTask, err := notify.NewPurchasePendingTask(notify.PurchasePendingPayload{
			TransactionID: t.ID,
			UserID:        userID,
			Username:      u.Username,
			Amount:        pkg.Gems,
			PriceLabel:    pkg.PriceLabel,
		})
		if err == nil {
			if _, err := s.enqueuer.Enqueue(notifyTask); err != nil {
				zap.L().Warn("failed to enqueue purchase notification",
					zap.String("transaction_id", t.ID), zap.Error(err))
			}
		}
	}

	return t, nil
}

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ProcessPurchase settles a pending purchase exactly once. Approval credits
// the points and completes the row in the same transaction, so a crash can
// never leave points granted with the row still pending.
func (s *Service) ProcessPurchase(ctx context.Context, transactionID, action string) error {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	opts := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("transaction_id", transactionID),
		zap.String("action", action),
	}

	if action != ActionApprove && action != ActionReject {
		return errutil.ValidationFailed("action must be approve or reject")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Transaction
		if err := db.LockForUpdate(tx).Where("id = ?", transactionID).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("transaction not found")
			}
			return err
		}

		if t.Status != StatusPending {
			return errutil.AlreadyProcessed("transaction has already been processed")
		}

		if action == ActionReject {
			return tx.Model(&Transaction{}).Where("id = ?", t.ID).
				Update("status", StatusRejected).Error
		}

		if err := db.LockForUpdate(tx).Model(&user.User{}).
			Where("id = ?", t.UserID).
			Update("points", gorm.Expr("points + ?", t.Amount)).Error; err != nil {
			return err
		}

		return tx.Model(&Transaction{}).Where("id = ?", t.ID).
			Update("status", StatusCompleted).Error
	})
	if err != nil {
		zap.L().With(opts...).Warn("failed to process purchase", zap.Error(err))
		return err
	}

	zap.L().With(opts...).Info("purchase processed")
	return nil
}

// AdjustPoints applies a manual admin balance change in one locked
// transaction. A delta that would push the balance negative is rejected.
func (s *Service) AdjustPoints(ctx context.Context, adminID, userID string, delta int64) error {
	if delta == 0 {
		return errutil.ValidationFailed("delta must be non-zero")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u user.User
		if err := db.LockForUpdate(tx).Where("id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("user not found")
			}
			return err
		}

		if u.Points+delta < 0 {
			return errutil.ValidationFailed("adjustment would make the balance negative")
		}

		if err := tx.Model(&user.User{}).Where("id = ?", userID).
			Update("points", gorm.Expr("points + ?", delta)).Error; err != nil {
			return err
		}

		txType := TypeEarn
		if delta < 0 {
			txType = TypeSpend
		}
		amount := delta
		if amount < 0 {
			amount = -amount
		}

		entry := Transaction{
			ID:          s.node.Generate().String(),
			UserID:      userID,
			Username:    u.Username,
			Type:        txType,
			Status:      StatusCompleted,
			Amount:      amount,
			Description: "Manual balance adjustment",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return s.audit.RecordTx(tx, userID, u.Username, audit.ActionPointsAdjust,
			fmt.Sprintf("Adjusted by %d (admin %s)", delta, adminID))
	})
}
