package user

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"socialboost-core/pkg/errutil"
	"socialboost-core/services/audit"
	"socialboost-core/services/notify"
	"socialboost-core/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeEnqueuer) {
	t.Helper()

	db := testutil.NewTestDB(t, &User{}, &LinkedAccount{}, &audit.Log{})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enqueuer := &fakeEnqueuer{}
	auditSvc := audit.NewService(audit.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Node: node, Audit: auditSvc, Enqueuer: enqueuer})
	return svc, db, enqueuer
}

func TestRegisterDefaults(t *testing.T) {
	svc, db, _ := newTestService(t)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: "mona",
		Email:    "Mona@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.Equal(t, int64(200), u.Points)
	require.Equal(t, 90, u.TrustScore)
	require.Equal(t, RoleUser, u.Role)
	require.Equal(t, "MA", u.CountryCode)
	require.Equal(t, "mona@example.com", u.Email)
	require.NotEqual(t, "secret1", u.PasswordHash)

	var logCount int64
	require.NoError(t, db.Model(&audit.Log{}).
		Where("action = ?", audit.ActionAccountCreate).Count(&logCount).Error)
	require.Equal(t, int64(1), logCount)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "b", Email: "a@example.com", Password: "secret2",
	})
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusConflict, be.Code)
}

func TestLogin(t *testing.T) {
	svc, db, _ := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	u, err := svc.Login(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)

	_, err = svc.Login(context.Background(), "a@example.com", "wrong")
	require.Error(t, err)

	require.NoError(t, db.Model(&User{}).Where("id = ?", created.ID).
		Update("is_suspended", true).Error)

	_, err = svc.Login(context.Background(), "a@example.com", "secret1")
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusForbidden, be.Code)
}

func TestVerifyIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.VerifyIdentity(context.Background(), created.ID, "a@example.com", "secret1"))

	err = svc.VerifyIdentity(context.Background(), created.ID, "a@example.com", "nope")
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusIdentityMismatch, be.Code)
}

func TestUpdateSecurity(t *testing.T) {
	svc, db, _ := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateSecurity(context.Background(), created.ID, SecurityUpdateRequest{
		CurrentEmail:    "a@example.com",
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
	}))

	_, err = svc.Login(context.Background(), "a@example.com", "secret2")
	require.NoError(t, err)

	var logCount int64
	require.NoError(t, db.Model(&audit.Log{}).
		Where("action = ?", audit.ActionSecurityUpdate).Count(&logCount).Error)
	require.Equal(t, int64(1), logCount)

	// wrong current credentials are refused
	err = svc.UpdateSecurity(context.Background(), created.ID, SecurityUpdateRequest{
		CurrentEmail:    "a@example.com",
		CurrentPassword: "secret1",
		NewPassword:     "secret3",
	})
	require.Error(t, err)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	svc, db, enqueuer := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@example.com"))
	require.Len(t, enqueuer.tasks, 1)
	require.Equal(t, notify.TypeEmail, enqueuer.tasks[0].Type())

	var stored User
	require.NoError(t, db.Where("id = ?", created.ID).First(&stored).Error)
	require.Len(t, stored.ResetCode, 6)

	require.Error(t, svc.ResetPassword(context.Background(), "a@example.com", "000000", "secret2"))

	require.NoError(t, svc.ResetPassword(context.Background(), "a@example.com", stored.ResetCode, "secret2"))

	_, err = svc.Login(context.Background(), "a@example.com", "secret2")
	require.NoError(t, err)

	// code is single use
	require.Error(t, svc.ResetPassword(context.Background(), "a@example.com", stored.ResetCode, "secret3"))
}

func TestLinkAccount(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	account, err := svc.LinkAccount(context.Background(), created.ID, LinkAccountRequest{
		Platform: "tiktok",
		URL:      "https://tiktok.com/@mona",
	})
	require.NoError(t, err)
	require.Equal(t, "mona", account.Username)
	require.True(t, account.Verified)

	_, err = svc.LinkAccount(context.Background(), created.ID, LinkAccountRequest{
		Platform: "instagram",
		URL:      "https://tiktok.com/@mona",
	})
	require.Error(t, err)

	require.NoError(t, svc.UnlinkAccount(context.Background(), created.ID, account.ID))
	require.Error(t, svc.UnlinkAccount(context.Background(), created.ID, account.ID))
}

func TestSetSuspended(t *testing.T) {
	svc, db, _ := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetSuspended(context.Background(), created.ID, true))

	var stored User
	require.NoError(t, db.Where("id = ?", created.ID).First(&stored).Error)
	require.True(t, stored.IsSuspended)

	require.Error(t, svc.SetSuspended(context.Background(), "missing", true))
}

func TestPasswordsAreHashed(t *testing.T) {
	svc, db, _ := newTestService(t)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	var stored User
	require.NoError(t, db.Where("id = ?", created.ID).First(&stored).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}
