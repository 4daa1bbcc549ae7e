package audit

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
	}
}

// RecordTx appends an audit row inside an already-open transaction so the
// record commits or rolls back with the primary effect.
func (s *Service) RecordTx(tx *gorm.DB, userID, username, action, details string) error {
	entry := Log{
		ID:       s.node.Generate().String(),
		UserID:   userID,
		Username: username,
		Action:   action,
		Details:  details,
	}
	return tx.Create(&entry).Error
}

// Record appends an audit row outside any caller transaction.
func (s *Service) Record(ctx context.Context, userID, username, action, details string) error {
	if err := s.RecordTx(s.db.WithContext(ctx), userID, username, action, details); err != nil {
		zap.L().Error("failed to record audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

// List returns audit rows newest first.
func (s *Service) List(ctx context.Context) ([]Log, error) {
	var logs []Log
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
