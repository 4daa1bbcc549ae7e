package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialboost-core/pkg/errutil"
	"socialboost-core/services/audit"
	"socialboost-core/services/notify"
	"socialboost-core/services/testutil"
	"socialboost-core/services/user"
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

	db := testutil.NewTestDB(t,
		&user.User{}, &user.LinkedAccount{},
		&Transaction{}, &audit.Log{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enqueuer := &fakeEnqueuer{}
	auditSvc := audit.NewService(audit.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Node: node, Audit: auditSvc, Enqueuer: enqueuer})
	return svc, db, enqueuer
}

func seedUser(t *testing.T, db *gorm.DB, id string, points int64) *user.User {
	t.Helper()
	u := &user.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Points:       points,
		Role:         user.RoleUser,
		TrustScore:   90,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func loadUser(t *testing.T, db *gorm.DB, id string) user.User {
	t.Helper()
	var u user.User
	require.NoError(t, db.Where("id = ?", id).First(&u).Error)
	return u
}

func TestAppendDefaultsStatusByType(t *testing.T) {
	svc, _, _ := newTestService(t)

	earned, err := svc.Append(context.Background(), AppendRequest{
		UserID: "u1", Type: TypeEarn, Amount: 10, Description: "task",
	})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, earned.Status)

	purchase, err := svc.Append(context.Background(), AppendRequest{
		UserID: "u1", Type: TypePurchase, Amount: 1000, Description: "package",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, purchase.Status)
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Append(context.Background(), AppendRequest{
		UserID: "u1", Type: TypeEarn, Amount: 0,
	})
	require.Error(t, err)

	_, err = svc.Append(context.Background(), AppendRequest{
		UserID: "u1", Type: TransactionType("bonus"), Amount: 10,
	})
	require.Error(t, err)
}

func TestRequestPurchaseCreatesPendingAndNotifies(t *testing.T) {
	svc, db, enqueuer := newTestService(t)
	seedUser(t, db, "buyer", 200)

	created, err := svc.RequestPurchase(context.Background(), "buyer", 5000)
	require.NoError(t, err)
	require.Equal(t, StatusPending, created.Status)
	require.Equal(t, int64(5000), created.Amount)

	// points untouched until an admin approves
	buyer := loadUser(t, db, "buyer")
	require.Equal(t, int64(200), buyer.Points)

	require.Len(t, enqueuer.tasks, 1)
	require.Equal(t, notify.TypePurchasePending, enqueuer.tasks[0].Type())
}

func TestRequestPurchaseRejectsUnknownPackage(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedUser(t, db, "buyer", 200)

	_, err := svc.RequestPurchase(context.Background(), "buyer", 777)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)
}

func TestProcessPurchaseApproveExactlyOnce(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedUser(t, db, "buyer", 200)

	created, err := svc.RequestPurchase(context.Background(), "buyer", 1000)
	require.NoError(t, err)

	require.NoError(t, svc.ProcessPurchase(context.Background(), created.ID, ActionApprove))

	buyer := loadUser(t, db, "buyer")
	require.Equal(t, int64(1200), buyer.Points)

	var processed Transaction
	require.NoError(t, db.Where("id = ?", created.ID).First(&processed).Error)
	require.Equal(t, StatusCompleted, processed.Status)

	// a second approval must not credit again
	err = svc.ProcessPurchase(context.Background(), created.ID, ActionApprove)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusAlreadyProcessed, be.Code)

	buyer = loadUser(t, db, "buyer")
	require.Equal(t, int64(1200), buyer.Points)
}

func TestProcessPurchaseRejectThenApproveFails(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedUser(t, db, "buyer", 200)

	created, err := svc.RequestPurchase(context.Background(), "buyer", 1000)
	require.NoError(t, err)

	require.NoError(t, svc.ProcessPurchase(context.Background(), created.ID, ActionReject))

	var rejected Transaction
	require.NoError(t, db.Where("id = ?", created.ID).First(&rejected).Error)
	require.Equal(t, StatusRejected, rejected.Status)

	err = svc.ProcessPurchase(context.Background(), created.ID, ActionApprove)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusAlreadyProcessed, be.Code)

	buyer := loadUser(t, db, "buyer")
	require.Equal(t, int64(200), buyer.Points)
}

func TestProcessPurchaseConcurrentApprovals(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedUser(t, db, "buyer", 100)

	created, err := svc.RequestPurchase(context.Background(), "buyer", 1000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ProcessPurchase(context.Background(), created.ID, ActionApprove)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Equal(t, 1, succeeded)

	buyer := loadUser(t, db, "buyer")
	require.Equal(t, int64(1100), buyer.Points)
}

func TestProcessPurchaseNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ProcessPurchase(context.Background(), "missing", ActionApprove)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusNotFound, be.Code)
}

func TestAdjustPointsWritesLedgerAndAudit(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedUser(t, db, "target", 100)

	require.NoError(t, svc.AdjustPoints(context.Background(), "admin", "target", 50))

	u := loadUser(t, db, "target")
	require.Equal(t, int64(150), u.Points)

	var entry Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", "target", TypeEarn).
		First(&entry).Error)
	require.Equal(t, int64(50), entry.Amount)

	require.NoError(t, svc.AdjustPoints(context.Background(), "admin", "target", -30))

	u = loadUser(t, db, "target")
	require.Equal(t, int64(120), u.Points)

	// fresh dest, First would otherwise filter on the earn entry's primary key
	var spend Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", "target", TypeSpend).
		First(&spend).Error)
	require.Equal(t, int64(30), spend.Amount)

	var logCount int64
	require.NoError(t, db.Model(&audit.Log{}).
		Where("action = ?", audit.ActionPointsAdjust).Count(&logCount).Error)
	require.Equal(t, int64(2), logCount)
}

func TestAdjustPointsRejectsNegativeResult(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedUser(t, db, "target", 20)

	err := svc.AdjustPoints(context.Background(), "admin", "target", -50)
	require.Error(t, err)

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)

	u := loadUser(t, db, "target")
	require.Equal(t, int64(20), u.Points)

	var count int64
	require.NoError(t, db.Model(&Transaction{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestListScopesToUser(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedUser(t, db, "a", 100)
	seedUser(t, db, "b", 100)

	_, err := svc.Append(context.Background(), AppendRequest{UserID: "a", Type: TypeEarn, Amount: 10})
	require.NoError(t, err)
	_, err = svc.Append(context.Background(), AppendRequest{UserID: "b", Type: TypeEarn, Amount: 20})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := svc.List(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "a", mine[0].UserID)
}
