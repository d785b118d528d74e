package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

type adminFixture struct {
	db      *gorm.DB
	svc     AdminService
	audit   *recordingAudit
	storage *storageStub
	mailer  *recordingMailer
	catalog *catalogStub
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db := setupServiceDB(t)
	f := &adminFixture{
		db:      db,
		audit:   &recordingAudit{},
		storage: &storageStub{failOn: map[string]bool{}},
		mailer:  &recordingMailer{},
		catalog: &catalogStub{},
	}
	f.svc = NewAdminService(AdminServiceDeps{
		Users:     repository.NewUserRepository(db),
		Activity:  repository.NewAdminActivityRepository(db),
		Uploads:   NewUploadService(f.storage, 5, testLogger()),
		Audit:     f.audit,
		Mailer:    f.mailer,
		Catalog:   f.catalog,
		Validator: testValidator(),
	}, testLogger())
	return f
}

func strPtr(value string) *string {
	return &value
}

func TestAdminServiceRoleEscalation(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := createUser(t, f.db, "admin@example.com", models.RoleAdmin, models.ArtistStatusNone)
	super := createUser(t, f.db, "root@example.com", models.RoleSuperAdmin, models.ArtistStatusNone)
	peer := createUser(t, f.db, "peer@example.com", models.RoleAdmin, models.ArtistStatusNone)
	member := createUser(t, f.db, "member@example.com", models.RoleUser, models.ArtistStatusNone)

	adminActor := Actor{ID: admin.ID, Role: admin.Role}
	superActor := Actor{ID: super.ID, Role: super.Role}

	_, err := f.svc.UpdateUser(ctx, adminActor, member.ID, dto.AdminUserUpdateRequest{Role: strPtr(models.RoleAdmin)}, nil)
	require.ErrorIs(t, err, ErrRoleEscalation)

	_, err = f.svc.UpdateUser(ctx, adminActor, peer.ID, dto.AdminUserUpdateRequest{Role: strPtr(models.RoleUser)}, nil)
	require.ErrorIs(t, err, ErrRoleEscalation)

	_, err = f.svc.UpdateUser(ctx, adminActor, member.ID, dto.AdminUserUpdateRequest{Role: strPtr("owner")}, nil)
	require.Error(t, err)

	promoted, err := f.svc.UpdateUser(ctx, superActor, member.ID, dto.AdminUserUpdateRequest{Role: strPtr(models.RoleAdmin)}, nil)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, promoted.Role)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, models.AdminActionUpdate, entries[0].Action)
	require.Equal(t, models.TargetUser, entries[0].TargetType)
}

func TestAdminServiceVerifyingArtistPromotesRole(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := createUser(t, f.db, "admin@example.com", models.RoleAdmin, models.ArtistStatusNone)
	applicant := createUser(t, f.db, "painter@example.com", models.RoleUser, models.ArtistStatusPending)

	updated, err := f.svc.UpdateUser(ctx, Actor{ID: admin.ID, Role: admin.Role}, applicant.ID, dto.AdminUserUpdateRequest{ArtistStatus: strPtr(models.ArtistStatusVerified)}, nil)
	require.NoError(t, err)
	require.Equal(t, models.ArtistStatusVerified, updated.ArtistStatus)
	require.Equal(t, models.RoleArtist, updated.Role)
}

func TestAdminServiceSuspension(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := createUser(t, f.db, "admin@example.com", models.RoleAdmin, models.ArtistStatusNone)
	member := createUser(t, f.db, "member@example.com", models.RoleUser, models.ArtistStatusNone)
	actor := Actor{ID: admin.ID, Role: admin.Role}

	_, err := f.svc.SuspendUser(ctx, actor, admin.ID, dto.SuspendUserRequest{Reason: "testing"}, nil)
	require.ErrorIs(t, err, ErrSelfSuspend)

	suspended, err := f.svc.SuspendUser(ctx, actor, member.ID, dto.SuspendUserRequest{Reason: "fraudulent listings"}, nil)
	require.NoError(t, err)
	require.True(t, suspended.Suspended)
	require.Equal(t, "fraudulent listings", suspended.SuspendedReason)
	require.NotNil(t, suspended.SuspendedAt)
	require.Len(t, f.mailer.sent, 1)
	require.Equal(t, []string{"member@example.com"}, f.mailer.sent[0].To)

	restored, err := f.svc.UnsuspendUser(ctx, actor, member.ID, nil)
	require.NoError(t, err)
	require.False(t, restored.Suspended)
	require.Nil(t, restored.SuspendedAt)

	entries := f.audit.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, models.AdminActionSuspend, entries[0].Action)
	require.Equal(t, models.AdminActionUnsuspend, entries[1].Action)
}

func TestAdminServiceDeleteUserCascades(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := createUser(t, f.db, "admin@example.com", models.RoleAdmin, models.ArtistStatusNone)
	artist := createUser(t, f.db, "artist@example.com", models.RoleArtist, models.ArtistStatusVerified)
	require.NoError(t, f.db.Model(&artist).Update("avatar_public_id", "nemesis/avatars/artist").Error)

	first := createArtwork(t, f.db, artist.ID, "First", 1000)
	second := createArtwork(t, f.db, artist.ID, "Second", 2000)
	require.NoError(t, f.db.Model(&first).Updates(map[string]interface{}{"image_public_id": "nemesis/artworks/first"}).Error)
	require.NoError(t, f.db.Model(&second).Updates(map[string]interface{}{
		"image_public_id": "nemesis/artworks/second",
		"video_public_id": "nemesis/artworks/videos/second",
	}).Error)
	event := createEvent(t, f.db, artist.ID, 20, 0)
	require.NoError(t, f.db.Model(&event).Update("image_public_id", "nemesis/events/opening").Error)
	f.storage.failOn["nemesis/artworks/first"] = true

	err := f.svc.DeleteUser(ctx, Actor{ID: admin.ID, Role: admin.Role}, admin.ID, nil)
	require.ErrorIs(t, err, ErrSelfDelete)

	require.NoError(t, f.svc.DeleteUser(ctx, Actor{ID: admin.ID, Role: admin.Role}, artist.ID, &RequestMeta{IP: "192.0.2.1"}))

	require.ElementsMatch(t, []string{
		"nemesis/avatars/artist",
		"nemesis/artworks/second",
		"nemesis/artworks/videos/second",
		"nemesis/events/opening",
	}, f.storage.Destroyed())

	var count int64
	require.NoError(t, f.db.Model(&models.Artwork{}).Where("artist_id = ?", artist.ID).Count(&count).Error)
	require.Zero(t, count)
	require.ErrorIs(t, f.db.First(&models.User{}, artist.ID).Error, gorm.ErrRecordNotFound)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, models.AdminActionDelete, entries[0].Action)
	require.Equal(t, 2, entries[0].Details["artworks"])
	require.Equal(t, 1, entries[0].Details["events"])
	require.Equal(t, 1, entries[0].Details["mediaFailures"])
	require.Equal(t, 1, f.catalog.invalidations)
}

func TestAdminServiceProtectsAdminsFromAdmins(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	admin := createUser(t, f.db, "admin@example.com", models.RoleAdmin, models.ArtistStatusNone)
	peer := createUser(t, f.db, "peer@example.com", models.RoleAdmin, models.ArtistStatusNone)
	super := createUser(t, f.db, "root@example.com", models.RoleSuperAdmin, models.ArtistStatusNone)

	_, err := f.svc.SuspendUser(ctx, Actor{ID: admin.ID, Role: admin.Role}, peer.ID, dto.SuspendUserRequest{Reason: "conflict"}, nil)
	require.ErrorIs(t, err, ErrRoleEscalation)
	require.ErrorIs(t, f.svc.DeleteUser(ctx, Actor{ID: admin.ID, Role: admin.Role}, peer.ID, nil), ErrRoleEscalation)

	_, err = f.svc.SuspendUser(ctx, Actor{ID: super.ID, Role: super.Role}, peer.ID, dto.SuspendUserRequest{Reason: "conflict"}, nil)
	require.NoError(t, err)
}

func TestAdminServiceListsUsersAndActivity(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	createUser(t, f.db, "alice@example.com", models.RoleArtist, models.ArtistStatusPending)
	createUser(t, f.db, "bob@example.com", models.RoleUser, models.ArtistStatusNone)

	users, total, err := f.svc.ListUsers(ctx, dto.AdminUserListQuery{ArtistStatus: models.ArtistStatusPending, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "alice@example.com", users[0].Email)

	require.NoError(t, f.db.Create(&models.AdminActivity{AdminID: 4, Action: models.AdminActionDelete, TargetType: models.TargetEvent, TargetID: "3"}).Error)
	require.NoError(t, f.db.Create(&models.AdminActivity{AdminID: 5, Action: models.AdminActionUpdate, TargetType: models.TargetUser, TargetID: "8"}).Error)

	records, total, err := f.svc.ListActivity(ctx, dto.AdminActivityQuery{Action: "delete", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "3", records[0].TargetID)

	records, total, err = f.svc.ListActivity(ctx, dto.AdminActivityQuery{AdminID: 5, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, models.TargetUser, records[0].TargetType)
}
