package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"socialboost-core/pkg/errutil"
	"socialboost-core/pkg/task"
	"socialboost-core/pkg/verify"
	"socialboost-core/services/audit"
	"socialboost-core/services/notify"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
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

type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	IPAddress string
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	opts := []zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("email", req.Email),
	}

	if req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		return nil, errutil.ValidationFailed("username, email and a password of at least 6 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errutil.Internal("failed to hash password", errutil.WithErr(err))
	}

	u := &User{
		ID:           s.node.Generate().String(),
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Points:       DefaultPoints,
		Role:         RoleUser,
		TrustScore:   DefaultTrustScore,
		IPAddress:    req.IPAddress,
		CountryCode:  DefaultCountryCode,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errutil.Conflict("email already registered")
			}
			return err
		}
		return s.audit.RecordTx(tx, u.ID, u.Username, audit.ActionAccountCreate, "Account created")
	}); err != nil {
		zap.L().With(opts...).Error("failed to register user", zap.Error(err))
		return nil, err
	}

	zap.L().With(opts...).Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, errutil.Unauthorized("invalid email or password")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errutil.Unauthorized("invalid email or password")
	}

	if u.IsSuspended {
		return nil, errutil.Forbidden("account suspended, contact the administrators")
	}

	return u, nil
}

// VerifyIdentity checks the caller's current credentials before a sensitive
// change is allowed.
func (s *Service) VerifyIdentity(ctx context.Context, userID, email, password string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return errutil.IdentityMismatch("current credentials are incorrect")
	}

	if !strings.EqualFold(u.Email, email) ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return errutil.IdentityMismatch("current credentials are incorrect")
	}
	return nil
}

type SecurityUpdateRequest struct {
	CurrentEmail    string
	CurrentPassword string
	NewEmail        string
	NewPassword     string
}

func (s *Service) UpdateSecurity(ctx context.Context, userID string, req SecurityUpdateRequest) error {
	if err := s.VerifyIdentity(ctx, userID, req.CurrentEmail, req.CurrentPassword); err != nil {
		return err
	}

	updates := map[string]any{}
	changed := []string{}
	if req.NewEmail != "" {
		updates["email"] = strings.ToLower(req.NewEmail)
		changed = append(changed, "email")
	}
	if req.NewPassword != "" {
		if len(req.NewPassword) < 6 {
			return errutil.ValidationFailed("new password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return errutil.Internal("failed to hash password", errutil.WithErr(err))
		}
		updates["password_hash"] = string(hash)
		changed = append(changed, "password")
	}

	if len(updates) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		if err := tx.Where(&User{ID: userID}).First(&u).Error; err != nil {
			return errutil.NotFound("user not found")
		}
		if err := tx.Model(&User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errutil.Conflict("email already registered")
			}
			return err
		}
		return s.audit.RecordTx(tx, userID, u.Username, audit.ActionSecurityUpdate,
			"Updated "+strings.Join(changed, " "))
	})
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return errutil.NotFound("email is not registered")
	}

	code, err := generateResetCode()
	if err != nil {
		return errutil.Internal("failed to generate reset code", errutil.WithErr(err))
	}

	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", u.ID).
		Update("reset_code", code).Error; err != nil {
		return err
	}

	if s.enqueuer != nil {
		t, err := notify.NewEmailTask(notify.EmailPayload{
			To:      u.Email,
			Subject: "Password recovery code",
			Body:    "Your verification code is: " + code,
		})
		if err == nil {
			if _, err := s.enqueuer.Enqueue(t); err != nil {
				zap.L().Warn("failed to enqueue reset email", zap.Error(err))
			}
		}
	}

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 6 {
		return errutil.ValidationFailed("new password must be at least 6 characters")
	}

	var u User
	if err := s.db.WithContext(ctx).
		Where("email = ? AND reset_code = ? AND reset_code <> ''", strings.ToLower(email), code).
		First(&u).Error; err != nil {
		return errutil.BadRequest("verification code is incorrect or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errutil.Internal("failed to hash password", errutil.WithErr(err))
	}

	return s.db.WithContext(ctx).Model(&User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"password_hash": string(hash),
		"reset_code":    "",
	}).Error
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Preload("LinkedAccounts").
		Where(&User{ID: id}).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("user not found")
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Preload("LinkedAccounts").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) SetSuspended(ctx context.Context, id string, suspended bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		if err := tx.Where(&User{ID: id}).First(&u).Error; err != nil {
			return errutil.NotFound("user not found")
		}
		if err := tx.Model(&User{}).Where("id = ?", id).
			Update("is_suspended", suspended).Error; err != nil {
			return err
		}
		return s.audit.RecordTx(tx, id, u.Username, audit.ActionSuspend,
			fmt.Sprintf("Suspended=%t", suspended))
	})
}

type LinkAccountRequest struct {
	Platform string
	URL      string
}

func (s *Service) LinkAccount(ctx context.Context, userID string, req LinkAccountRequest) (*LinkedAccount, error) {
	if !verify.KnownPlatform(req.Platform) {
		return nil, errutil.ValidationFailed("unsupported platform")
	}
	if !verify.ValidateURL(req.Platform, req.URL) {
		return nil, errutil.ValidationFailed("profile URL does not match the selected platform")
	}

	account := &LinkedAccount{
		ID:       s.node.Generate().String(),
		UserID:   userID,
		Platform: req.Platform,
		URL:      req.URL,
		Username: verify.ProfileName(req.URL),
		Verified: true,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		if err := tx.Where(&User{ID: userID}).First(&u).Error; err != nil {
			return errutil.NotFound("user not found")
		}
		return tx.Create(account).Error
	}); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *Service) UnlinkAccount(ctx context.Context, userID, accountID string) error {
	res := s.db.WithContext(ctx).
		Where(&LinkedAccount{ID: accountID, UserID: userID}).
		Delete(&LinkedAccount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("linked account not found")
	}
	return nil
}

// CheckProfileURL validates a profile URL against the platform's canonical
// shape and returns the extracted profile name.
func (s *Service) CheckProfileURL(platform, url string) (bool, string) {
	if !verify.KnownPlatform(platform) || !verify.ValidateURL(platform, url) {
		return false, verify.ProfileName(url)
	}
	name := verify.ProfileName(url)
	if name == "" {
		name = "User"
	}
	return true, name
}

func (s *Service) findByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
