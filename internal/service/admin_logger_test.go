package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/observability"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

type failingActivityRepo struct {
	err   error
	panic bool
}

func (r failingActivityRepo) Create(context.Context, *models.AdminActivity) error {
	if r.panic {
		panic("connection reset")
	}
	return r.err
}

func (r failingActivityRepo) List(context.Context, repository.AdminActivityFilter) ([]models.AdminActivity, int64, error) {
	return nil, 0, nil
}

type failureRecorder struct {
	mu      sync.Mutex
	entries []AdminActivityEntry
	errs    []error
}

func (f *failureRecorder) handle(entry AdminActivityEntry, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	f.errs = append(f.errs, err)
}

func (f *failureRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errs)
}

func TestAdminLoggerWritesAfterRequestContextEnds(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewAdminActivityRepository(db)
	logger := NewAdminLogger(repo, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	logger.Log(ctx, AdminActivityEntry{
		AdminID:    7,
		Action:     "delete",
		TargetType: models.TargetArtwork,
		TargetID:   "42",
		Details:    map[string]interface{}{"title": "Blue Harbour"},
		Request:    &RequestMeta{IP: "203.0.113.9", UserAgent: strings.Repeat("a", 600)},
	})
	cancel()
	logger.Wait()

	records, total, err := repo.List(context.Background(), repository.AdminActivityFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, models.AdminActionDelete, records[0].Action)
	require.Equal(t, "42", records[0].TargetID)
	require.Equal(t, "203.0.113.9", records[0].IPAddress)
	require.Len(t, records[0].UserAgent, 512)
	require.Equal(t, "Blue Harbour", records[0].Details["title"])
}

func TestAdminLoggerRejectsUnknownEnums(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewAdminActivityRepository(db)
	recorder := &failureRecorder{}
	logger := NewAdminLogger(repo, testLogger(), WithAuditFailureHandler(recorder.handle))

	logger.Log(context.Background(), AdminActivityEntry{AdminID: 1, Action: "PUBLISH", TargetType: models.TargetUser})
	logger.Log(context.Background(), AdminActivityEntry{AdminID: 1, Action: models.AdminActionUpdate, TargetType: "Review"})
	logger.Log(context.Background(), AdminActivityEntry{Action: models.AdminActionUpdate, TargetType: models.TargetUser})
	logger.Wait()

	require.Equal(t, 3, recorder.count())
	_, total, err := repo.List(context.Background(), repository.AdminActivityFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestAdminLoggerReportsWriteFailures(t *testing.T) {
	recorder := &failureRecorder{}
	logger := NewAdminLogger(failingActivityRepo{err: errors.New("db down")}, testLogger(), WithAuditFailureHandler(recorder.handle))

	logger.Log(context.Background(), AdminActivityEntry{AdminID: 1, Action: models.AdminActionSuspend, TargetType: models.TargetUser, TargetID: "9"})
	logger.Wait()

	require.Equal(t, 1, recorder.count())
	require.EqualError(t, recorder.errs[0], "db down")
	require.Equal(t, "9", recorder.entries[0].TargetID)
}

func TestAdminLoggerRecoversFromPanickingWrites(t *testing.T) {
	recorder := &failureRecorder{}
	logger := NewAdminLogger(failingActivityRepo{panic: true}, testLogger(), WithAuditFailureHandler(recorder.handle))

	require.NotPanics(t, func() {
		logger.Log(context.Background(), AdminActivityEntry{AdminID: 1, Action: models.AdminActionDelete, TargetType: models.TargetEvent})
		logger.Wait()
	})
	require.Equal(t, 1, recorder.count())
	require.Contains(t, recorder.errs[0].Error(), "panicked")
}

func TestAdminLoggerDefaultHandlerCountsFailures(t *testing.T) {
	before := testutil.ToFloat64(observability.AdminActivityFailures())

	logger := NewAdminLogger(failingActivityRepo{err: errors.New("timeout")}, testLogger(), WithAuditWriteTimeout(time.Second))
	logger.Log(context.Background(), AdminActivityEntry{AdminID: 1, Action: models.AdminActionUpdate, TargetType: models.TargetOrder})
	logger.Wait()

	require.Equal(t, before+1, testutil.ToFloat64(observability.AdminActivityFailures()))
}

func TestAuditFailureDoesNotAffectModeration(t *testing.T) {
	db := setupServiceDB(t)
	admin := createUser(t, db, "admin@example.com", models.RoleAdmin, models.ArtistStatusNone)
	target := createUser(t, db, "target@example.com", models.RoleUser, models.ArtistStatusNone)

	recorder := &failureRecorder{}
	audit := NewAdminLogger(failingActivityRepo{err: errors.New("disk full")}, testLogger(), WithAuditFailureHandler(recorder.handle))
	svc := NewAdminService(AdminServiceDeps{
		Users:     repository.NewUserRepository(db),
		Activity:  repository.NewAdminActivityRepository(db),
		Audit:     audit,
		Validator: testValidator(),
	}, testLogger())

	resp, err := svc.SuspendUser(context.Background(), Actor{ID: admin.ID, Role: admin.Role}, target.ID, dto.SuspendUserRequest{Reason: "spam listings"}, nil)
	require.NoError(t, err)
	require.True(t, resp.Suspended)

	audit.Wait()
	require.Equal(t, 1, recorder.count())
	require.Equal(t, models.AdminActionSuspend, recorder.entries[0].Action)

	var stored models.User
	require.NoError(t, db.First(&stored, target.ID).Error)
	require.True(t, stored.Suspended)
}
