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

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	row := models.Task{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		AuthorID:    task.AuthorID,
		AssigneeID:  task.AssigneeID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", task.AssigneeID).
			UpdateColumn("total_tasks_count", gorm.Expr("total_tasks_count + 1")).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindTask, row.ID, task.AuthorID, domain.EventCreated, domain.Diff{
			"status": {Old: nil, New: string(task.Status)},
		})
	})
	if err != nil {
		return domain.Task{}, err
	}
	return toDomainTask(row), nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (domain.Task, error) {
	var row models.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = false", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}
	if err != nil {
		return domain.Task{}, err
	}
	return toDomainTask(row), nil
}

func (r *TaskRepository) GetAny(ctx context.Context, id int64) (domain.Task, error) {
	var row models.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}
	if err != nil {
		return domain.Task{}, err
	}
	return toDomainTask(row), nil
}

func (r *TaskRepository) List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("is_deleted = false")
	if f.Title != "" {
		query = query.Where("title ILIKE ?", "%"+f.Title+"%")
	}
	if f.AssigneeID != 0 {
		query = query.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", string(f.Priority))
	}

	var rows []models.Task
	err := query.Order("created_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, toDomainTask(row))
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch, actorID int64) (domain.Task, domain.Diff, error) {
	var row models.Task
	var diff domain.Diff

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		row = cur

		d := toDomainTask(row)
		diff = patch.Diff(d)
		if len(diff) == 0 {
			return nil
		}

		patch.Apply(&d)
		row.Title = d.Title
		row.Description = d.Description
		row.Priority = string(d.Priority)
		row.DueDate = d.DueDate

		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindTask, id, actorID, domain.EventUpdated, diff)
	})
	if err != nil {
		return domain.Task{}, nil, err
	}
	return toDomainTask(row), diff, nil
}

// UpdateStatus validates the transition against the status read under the
// row lock, so concurrent requests each act on a consistent from-state.
// A rejected transition leaves the row untouched.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, actorID int64) (domain.Task, error) {
	var row models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		row = cur

		from := domain.TaskStatus(row.Status)
		if !domain.CanTransition(from, status) {
			return domain.InvalidTransitionError{From: from, To: status}
		}

		row.Status = string(status)
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		if status == domain.StatusCompleted {
			if err := tx.Model(&models.User{}).
				Where("id = ?", row.AssigneeID).
				UpdateColumn("completed_tasks_count", gorm.Expr("completed_tasks_count + 1")).Error; err != nil {
				return err
			}
		}

		return appendAudit(tx, domain.KindTask, id, actorID, domain.EventStatusChanged, domain.Diff{
			"status": {Old: string(from), New: string(status)},
		})
	})
	if err != nil {
		return domain.Task{}, err
	}
	return toDomainTask(row), nil
}

// Reassign moves the task to another assignee. The candidate must exist,
// not be soft-deleted, and work the same shift as the current assignee.
func (r *TaskRepository) Reassign(ctx context.Context, id int64, assigneeID int64, actorID int64) (domain.Task, int64, error) {
	var row models.Task
	var oldAssigneeID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		row = cur
		oldAssigneeID = row.AssigneeID

		var next models.User
		err = tx.Where("id = ?", assigneeID).Take(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "assignee"}
		}
		if err != nil {
			return err
		}

		var current models.User
		err = tx.Where("id = ?", oldAssigneeID).Take(&current).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned current assignee: only the existence rule applies.
			current.Shift = next.Shift
		}
		if err := domain.ValidateAssignee(toDomainUser(current), toDomainUser(next)); err != nil {
			return err
		}

		if assigneeID == oldAssigneeID {
			// No-op reassignment: no write, no audit record.
			return nil
		}

		row.AssigneeID = assigneeID
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindTask, id, actorID, domain.EventReassigned, domain.Diff{
			"assignee_id": {Old: oldAssigneeID, New: assigneeID},
		})
	})
	if err != nil {
		return domain.Task{}, 0, err
	}
	return toDomainTask(row), oldAssigneeID, nil
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id int64, actorID int64) (domain.Task, error) {
	var row models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		row = cur

		now := time.Now()
		row.IsDeleted = true
		row.DeletedAt = &now
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindTask, id, actorID, domain.EventDeleted, domain.Diff{
			"is_deleted": {Old: false, New: true},
		})
	})
	if err != nil {
		return domain.Task{}, err
	}
	return toDomainTask(row), nil
}

func (r *TaskRepository) Restore(ctx context.Context, id int64, actorID int64) (domain.Task, error) {
	var row models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = true", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "task"}
		}
		if err != nil {
			return err
		}
		if !domain.WithinRestoreWindow(row.DeletedAt, time.Now()) {
			return domain.NotFoundError{Resource: "task"}
		}

		row.IsDeleted = false
		row.DeletedAt = nil
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindTask, id, actorID, domain.EventRestored, domain.Diff{
			"is_deleted": {Old: true, New: false},
		})
	})
	if err != nil {
		return domain.Task{}, err
	}
	return toDomainTask(row), nil
}

func (r *TaskRepository) Stats(ctx context.Context) (map[domain.TaskStatus]domain.TaskStats, error) {
	type statRow struct {
		Status         string
		Total          int64
		HighPriority   int64
		MediumPriority int64
		LowPriority    int64
	}

	var rows []statRow
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select(`status,
			count(*) as total,
			count(*) filter (where priority = 'HIGH') as high_priority,
			count(*) filter (where priority = 'MEDIUM') as medium_priority,
			count(*) filter (where priority = 'LOW') as low_priority`).
		Where("is_deleted = false").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[domain.TaskStatus]domain.TaskStats, len(rows))
	for _, row := range rows {
		stats[domain.TaskStatus(row.Status)] = domain.TaskStats{
			Total:          row.Total,
			HighPriority:   row.HighPriority,
			MediumPriority: row.MediumPriority,
			LowPriority:    row.LowPriority,
		}
	}
	return stats, nil
}

func lockTask(tx *gorm.DB, id int64) (models.Task, error) {
	var row models.Task
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = false", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, domain.NotFoundError{Resource: "task"}
	}
	return row, err
}

func toDomainTask(row models.Task) domain.Task {
	return domain.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Status:      domain.TaskStatus(row.Status),
		Priority:    domain.TaskPriority(row.Priority),
		DueDate:     row.DueDate,
		AuthorID:    row.AuthorID,
		AssigneeID:  row.AssigneeID,
		CreatedAt:   row.CreatedAt,
		IsDeleted:   row.IsDeleted,
		DeletedAt:   row.DeletedAt,
	}
}
