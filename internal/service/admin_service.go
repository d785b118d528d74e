package service

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
	"github.com/noah-isme/nemesis-api/pkg/mailer"
)

const mediaDeleteConcurrency = 4

// AdminService implements account moderation and the audit trail read side.
type AdminService interface {
	ListUsers(ctx context.Context, query dto.AdminUserListQuery) ([]dto.UserResponse, int64, error)
	UpdateUser(ctx context.Context, actor Actor, id uint, req dto.AdminUserUpdateRequest, meta *RequestMeta) (dto.UserResponse, error)
	SuspendUser(ctx context.Context, actor Actor, id uint, req dto.SuspendUserRequest, meta *RequestMeta) (dto.UserResponse, error)
	UnsuspendUser(ctx context.Context, actor Actor, id uint, meta *RequestMeta) (dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error
	ListActivity(ctx context.Context, query dto.AdminActivityQuery) ([]models.AdminActivity, int64, error)
}

// AdminServiceDeps groups the collaborators of the admin service.
type AdminServiceDeps struct {
	Users     repository.UserRepository
	Activity  repository.AdminActivityRepository
	Uploads   UploadService
	Audit     AdminLogger
	Mailer    mailer.Sender
	Catalog   interface{ Invalidate(ctx context.Context) }
	Validator *validator.Validate
}

type adminService struct {
	deps   AdminServiceDeps
	logger zerolog.Logger
	now    func() time.Time
}

// NewAdminService constructs the admin service.
func NewAdminService(deps AdminServiceDeps, logger zerolog.Logger) AdminService {
	return &adminService{
		deps:   deps,
		logger: logger.With().Str("component", "admin_service").Logger(),
		now:    time.Now,
	}
}

func (s *adminService) ListUsers(ctx context.Context, query dto.AdminUserListQuery) ([]dto.UserResponse, int64, error) {
	users, total, err := s.deps.Users.List(ctx, repository.UserFilter{
		Role:         strings.TrimSpace(query.Role),
		ArtistStatus: strings.TrimSpace(query.ArtistStatus),
		Search:       strings.TrimSpace(query.Search),
		Page:         query.Page,
		Limit:        query.Limit,
	})
	if err != nil {
		return nil, 0, err
	}
	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return responses, total, nil
}

func (s *adminService) UpdateUser(ctx context.Context, actor Actor, id uint, req dto.AdminUserUpdateRequest, meta *RequestMeta) (dto.UserResponse, error) {
	if err := s.deps.Validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	target, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	updates := map[string]interface{}{}
	changes := map[string]interface{}{}
	if req.Role != nil && *req.Role != target.Role {
		if !actor.IsSuperAdmin() && (models.IsAdmin(*req.Role) || models.IsAdmin(target.Role)) {
			return dto.UserResponse{}, ErrRoleEscalation
		}
		if actor.ID == target.ID {
			return dto.UserResponse{}, ErrRoleEscalation
		}
		updates["role"] = *req.Role
		changes["role"] = map[string]interface{}{"from": target.Role, "to": *req.Role}
	}
	if req.ArtistStatus != nil && *req.ArtistStatus != target.ArtistStatus {
		if models.IsAdmin(target.Role) && !actor.IsSuperAdmin() {
			return dto.UserResponse{}, ErrRoleEscalation
		}
		updates["artist_status"] = *req.ArtistStatus
		changes["artistStatus"] = map[string]interface{}{"from": target.ArtistStatus, "to": *req.ArtistStatus}

		// Verifying a plain account promotes it to artist so it can sell.
		if *req.ArtistStatus == models.ArtistStatusVerified && target.Role == models.RoleUser && req.Role == nil {
			updates["role"] = models.RoleArtist
			changes["role"] = map[string]interface{}{"from": target.Role, "to": models.RoleArtist}
		}
	}
	if len(updates) == 0 {
		return dto.NewUserResponse(target), nil
	}

	updated, err := s.deps.Users.Update(ctx, id, updates)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	s.deps.Audit.Log(ctx, AdminActivityEntry{
		AdminID:    actor.ID,
		Action:     models.AdminActionUpdate,
		TargetType: models.TargetUser,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		Details:    map[string]interface{}{"changes": changes},
		Request:    meta,
	})
	return dto.NewUserResponse(updated), nil
}

func (s *adminService) SuspendUser(ctx context.Context, actor Actor, id uint, req dto.SuspendUserRequest, meta *RequestMeta) (dto.UserResponse, error) {
	if err := s.deps.Validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if actor.ID == id {
		return dto.UserResponse{}, ErrSelfSuspend
	}

	target, err := s.moderatable(ctx, actor, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	suspendedAt := s.now().UTC()
	updated, err := s.deps.Users.Update(ctx, id, map[string]interface{}{
		"suspended":        true,
		"suspended_reason": reason,
		"suspended_at":     suspendedAt,
	})
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	s.deps.Audit.Log(ctx, AdminActivityEntry{
		AdminID:    actor.ID,
		Action:     models.AdminActionSuspend,
		TargetType: models.TargetUser,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		Details:    map[string]interface{}{"reason": reason, "email": target.Email},
		Request:    meta,
	})
	s.notifySuspension(ctx, updated, reason)
	return dto.NewUserResponse(updated), nil
}

func (s *adminService) UnsuspendUser(ctx context.Context, actor Actor, id uint, meta *RequestMeta) (dto.UserResponse, error) {
	if actor.ID == id {
		return dto.UserResponse{}, ErrSelfSuspend
	}
	target, err := s.moderatable(ctx, actor, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if !target.Suspended {
		return dto.NewUserResponse(target), nil
	}

	updated, err := s.deps.Users.Update(ctx, id, map[string]interface{}{
		"suspended":        false,
		"suspended_reason": "",
		"suspended_at":     nil,
	})
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	s.deps.Audit.Log(ctx, AdminActivityEntry{
		AdminID:    actor.ID,
		Action:     models.AdminActionUnsuspend,
		TargetType: models.TargetUser,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		Details:    map[string]interface{}{"previousReason": target.SuspendedReason},
		Request:    meta,
	})
	return dto.NewUserResponse(updated), nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error {
	if actor.ID == id {
		return ErrSelfDelete
	}
	if _, err := s.moderatable(ctx, actor, id); err != nil {
		return err
	}

	removed, err := s.deps.Users.DeleteCascade(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrUserNotFound)
	}

	failures := s.destroyMedia(ctx, removed)
	if s.deps.Catalog != nil && len(removed.Artworks) > 0 {
		s.deps.Catalog.Invalidate(ctx)
	}

	s.deps.Audit.Log(ctx, AdminActivityEntry{
		AdminID:    actor.ID,
		Action:     models.AdminActionDelete,
		TargetType: models.TargetUser,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		Details: map[string]interface{}{
			"email":          removed.User.Email,
			"artworks":       len(removed.Artworks),
			"events":         len(removed.Events),
			"mediaFailures":  failures,
			"role":           removed.User.Role,
			"previousStatus": removed.User.ArtistStatus,
		},
		Request: meta,
	})
	s.logger.Info().Uint("user_id", id).Uint("admin_id", actor.ID).Int("artworks", len(removed.Artworks)).Int("events", len(removed.Events)).Msg("user deleted")
	return nil
}

func (s *adminService) ListActivity(ctx context.Context, query dto.AdminActivityQuery) ([]models.AdminActivity, int64, error) {
	filter := repository.AdminActivityFilter{
		Action:     strings.ToUpper(strings.TrimSpace(query.Action)),
		TargetType: strings.TrimSpace(query.TargetType),
		TargetID:   strings.TrimSpace(query.TargetID),
		Page:       query.Page,
		Limit:      query.Limit,
	}
	if query.AdminID > 0 {
		adminID := query.AdminID
		filter.AdminID = &adminID
	}
	return s.deps.Activity.List(ctx, filter)
}

// moderatable loads the target and rejects moderation of admins by non-superAdmins.
func (s *adminService) moderatable(ctx context.Context, actor Actor, id uint) (models.User, error) {
	target, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, translateNotFound(err, ErrUserNotFound)
	}
	if models.IsAdmin(target.Role) && !actor.IsSuperAdmin() {
		return models.User{}, ErrRoleEscalation
	}
	return target, nil
}

type mediaRef struct {
	publicID string
	kind     string
}

func (s *adminService) destroyMedia(ctx context.Context, removed repository.RemovedContent) int {
	if s.deps.Uploads == nil {
		return 0
	}

	refs := make([]mediaRef, 0, len(removed.Artworks)*2+len(removed.Events)+1)
	if removed.User.AvatarPublicID != "" {
		refs = append(refs, mediaRef{publicID: removed.User.AvatarPublicID, kind: MediaImage})
	}
	for _, artwork := range removed.Artworks {
		if artwork.ImagePublicID != "" {
			refs = append(refs, mediaRef{publicID: artwork.ImagePublicID, kind: MediaImage})
		}
		if artwork.VideoPublicID != "" {
			refs = append(refs, mediaRef{publicID: artwork.VideoPublicID, kind: MediaVideo})
		}
	}
	for _, event := range removed.Events {
		if event.ImagePublicID != "" {
			refs = append(refs, mediaRef{publicID: event.ImagePublicID, kind: MediaImage})
		}
	}

	var failures atomic.Int32
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(mediaDeleteConcurrency)
	for _, ref := range refs {
		ref := ref
		group.Go(func() error {
			if err := s.deps.Uploads.Remove(groupCtx, ref.publicID, ref.kind); err != nil {
				failures.Add(1)
				s.logger.Warn().Err(err).Str("public_id", ref.publicID).Msg("failed to destroy media")
			}
			return nil
		})
	}
	_ = group.Wait()
	return int(failures.Load())
}

func (s *adminService) notifySuspension(ctx context.Context, user models.User, reason string) {
	if s.deps.Mailer == nil {
		return
	}
	msg, err := mailer.AccountSuspended(user.Email, mailer.SuspensionData{Name: user.Name, Reason: reason})
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to render suspension email")
		return
	}
	if err := s.deps.Mailer.Send(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to send suspension email")
	}
}
