package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avdeyev/shiftdesk/internal/domain"
	"github.com/avdeyev/shiftdesk/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User, hashedPassword string) (domain.User, error) {
	row := models.User{
		Username:       user.Username,
		FullName:       user.FullName,
		Email:          user.Email,
		HashedPassword: hashedPassword,
		RoleID:         user.RoleID,
		Shift:          user.Shift,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, user.Username, user.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return translateUserError(err)
		}
		return appendAudit(tx, domain.KindUser, row.ID, row.ID, domain.EventCreated, nil)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(row), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = false", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(row), nil
}

// GetCredentials looks a user up by username for login and returns the
// stored password hash alongside the profile.
func (r *UserRepository) GetCredentials(ctx context.Context, username string) (domain.User, string, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("username = ? AND is_deleted = false", username).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, "", domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, "", err
	}
	return toDomainUser(row), row.HashedPassword, nil
}

func (r *UserRepository) Search(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = false")
	if f.Username != "" {
		query = query.Where("username ILIKE ?", "%"+f.Username+"%")
	}
	if f.FullName != "" {
		query = query.Where("full_name ILIKE ?", "%"+f.FullName+"%")
	}
	if f.Email != "" {
		query = query.Where("email ILIKE ?", "%"+f.Email+"%")
	}
	if f.RoleID != 0 {
		query = query.Where("role_id = ?", f.RoleID)
	}

	var rows []models.User
	if err := query.Order("username").Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainUsers(rows), nil
}

func (r *UserRepository) List(ctx context.Context, roleID, limit int) ([]domain.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = false")
	if roleID != 0 {
		query = query.Where("role_id = ?", roleID)
	}

	var rows []models.User
	if err := query.Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainUsers(rows), nil
}

// Update applies a patch under a row lock. Only fields that actually differ
// enter the diff; an empty diff writes nothing, including no audit record.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch, actorID int64) (domain.User, domain.Diff, error) {
	var row models.User
	var diff domain.Diff

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = false", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "user"}
		}
		if err != nil {
			return err
		}

		cur := toDomainUser(row)
		diff = patch.Diff(cur)
		if len(diff) == 0 {
			return nil
		}

		if _, changed := diff["username"]; changed {
			if err := checkUserUnique(tx, *patch.Username, "", id); err != nil {
				return err
			}
		}
		if _, changed := diff["email"]; changed {
			if err := checkUserUnique(tx, "", *patch.Email, id); err != nil {
				return err
			}
		}

		patch.Apply(&cur)
		row.Username = cur.Username
		row.FullName = cur.FullName
		row.Email = cur.Email
		row.Shift = cur.Shift
		row.AvatarURL = cur.AvatarURL

		if err := tx.Save(&row).Error; err != nil {
			return translateUserError(err)
		}
		return appendAudit(tx, domain.KindUser, id, actorID, domain.EventUpdated, diff)
	})
	if err != nil {
		return domain.User{}, nil, err
	}
	return toDomainUser(row), diff, nil
}

// UpdatePassword records the reset event without the hashes: password
// material never enters the audit trail.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND is_deleted = false", id).
			Update("hashed_password", hashedPassword)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "user"}
		}
		return appendAudit(tx, domain.KindUser, id, actorID, domain.EventPasswordReset, nil)
	})
}

func (r *UserRepository) SoftDelete(ctx context.Context, id int64, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = false", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "user"}
		}
		if err != nil {
			return err
		}

		now := time.Now()
		row.IsDeleted = true
		row.DeletedAt = &now
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindUser, id, actorID, domain.EventDeleted, domain.Diff{
			"is_deleted": {Old: false, New: true},
		})
	})
}

// checkUserUnique reports Conflict with the offending field name; the
// database unique indexes remain the last line of defense.
func checkUserUnique(tx *gorm.DB, username, email string, excludeID int64) error {
	if username != "" {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? AND id <> ?", username, excludeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ConflictError{Field: "username"}
		}
	}
	if email != "" {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("email = ? AND id <> ?", email, excludeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ConflictError{Field: "email"}
		}
	}
	return nil
}

func translateUserError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ConflictError{Field: "username or email"}
	}
	return err
}

func toDomainUser(row models.User) domain.User {
	return domain.User{
		ID:                  row.ID,
		Username:            row.Username,
		FullName:            row.FullName,
		Email:               row.Email,
		RoleID:              row.RoleID,
		Shift:               row.Shift,
		AvatarURL:           row.AvatarURL,
		CompletedTasksCount: row.CompletedTasksCount,
		TotalTasksCount:     row.TotalTasksCount,
		RegisteredAt:        row.RegisteredAt,
		IsDeleted:           row.IsDeleted,
		DeletedAt:           row.DeletedAt,
	}
}

func toDomainUsers(rows []models.User) []domain.User {
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toDomainUser(row))
	}
	return users
}
