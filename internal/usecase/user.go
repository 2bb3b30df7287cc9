package usecase

import (
	"context"

	"github.com/avdeyev/shiftdesk/internal/cachekey"
	"github.com/avdeyev/shiftdesk/internal/domain"
)

type UserUsecase struct {
	repo   UserRepository
	audit  AuditRepository
	cache  Cache
	policy CachePolicy
}

func NewUserUsecase(repo UserRepository, audit AuditRepository, cache Cache, policy CachePolicy) *UserUsecase {
	return &UserUsecase{repo: repo, audit: audit, cache: cache, policy: policy}
}

// RegisterInput carries a pre-hashed password; plaintext never reaches the
// usecase layer.
type RegisterInput struct {
	Username       string
	FullName       string
	Email          string
	Shift          string
	HashedPassword string
}

func (uc *UserUsecase) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if input.Username == "" || input.Email == "" || input.Shift == "" {
		return domain.User{}, domain.ValidationError{Message: "username, email and shift are required"}
	}

	user := domain.User{
		Username: input.Username,
		FullName: input.FullName,
		Email:    input.Email,
		Shift:    input.Shift,
		RoleID:   domain.RoleMember,
	}

	created, err := uc.repo.Create(ctx, user, input.HashedPassword)
	if err != nil {
		return domain.User{}, err
	}

	invalidate(ctx, uc.cache, cachekey.UserList())
	return created, nil
}

// Get serves a public profile through the cache.
func (uc *UserUsecase) Get(ctx context.Context, id int64) (domain.User, error) {
	return readThrough(ctx, uc.cache, cachekey.User(id), "", uc.policy.EntityTTL,
		func(ctx context.Context) (domain.User, error) {
			return uc.repo.GetByID(ctx, id)
		})
}

func (uc *UserUsecase) Search(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	ns, key := cachekey.UserSearch(f)
	return readThrough(ctx, uc.cache, ns, key, uc.policy.ListTTL,
		func(ctx context.Context) ([]domain.User, error) {
			return uc.repo.Search(ctx, f)
		})
}

// ListUsers is the admin roster view.
func (uc *UserUsecase) ListUsers(ctx context.Context, actor domain.Actor, roleID, limit int) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ForbiddenError{Reason: "admin role required"}
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	ns, key := cachekey.AdminUsers(roleID, limit)
	return readThrough(ctx, uc.cache, ns, key, uc.policy.ListTTL,
		func(ctx context.Context) ([]domain.User, error) {
			return uc.repo.List(ctx, roleID, limit)
		})
}

// Update mutates a user's profile. A user may edit themselves; editing
// anyone else requires the admin role.
func (uc *UserUsecase) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.UserPatch) (domain.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return domain.User{}, domain.ForbiddenError{Reason: "cannot edit another user's profile"}
	}

	updated, diff, err := uc.repo.Update(ctx, id, patch, actor.ID)
	if err != nil {
		return domain.User{}, err
	}

	if len(diff) > 0 {
		uc.invalidateUser(ctx, id)
	}
	return updated, nil
}

// ResetPassword replaces a user's password hash. Admin only.
func (uc *UserUsecase) ResetPassword(ctx context.Context, actor domain.Actor, id int64, hashedPassword string) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError{Reason: "admin role required"}
	}

	if err := uc.repo.UpdatePassword(ctx, id, hashedPassword, actor.ID); err != nil {
		return err
	}

	uc.invalidateUser(ctx, id)
	return nil
}

// Delete soft-deletes a user. Admin only.
func (uc *UserUsecase) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError{Reason: "admin role required"}
	}

	if err := uc.repo.SoftDelete(ctx, id, actor.ID); err != nil {
		return err
	}

	uc.invalidateUser(ctx, id)
	return nil
}

func (uc *UserUsecase) History(ctx context.Context, actor domain.Actor, id int64, offset, limit int) ([]domain.HistoryRecord, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, domain.ForbiddenError{Reason: "cannot view another user's history"}
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	ns := cachekey.UserHistory(id)
	return readThrough(ctx, uc.cache, ns, cachekey.Page(offset, limit), uc.policy.ListTTL,
		func(ctx context.Context) ([]domain.HistoryRecord, error) {
			return uc.audit.History(ctx, domain.KindUser, id, offset, limit)
		})
}

// invalidateUser covers every key family that can serve a view of this
// user: the direct profile, the user's history, and the roster lists.
func (uc *UserUsecase) invalidateUser(ctx context.Context, id int64) {
	invalidate(ctx, uc.cache,
		cachekey.User(id),
		cachekey.UserHistory(id),
		cachekey.UserList(),
	)
}
