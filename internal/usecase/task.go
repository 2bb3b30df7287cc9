package usecase

import (
	"context"
	"time"

	"github.com/avdeyev/shiftdesk/internal/cachekey"
	"github.com/avdeyev/shiftdesk/internal/domain"
)

type TaskUsecase struct {
	tasks  TaskRepository
	users  UserRepository
	audit  AuditRepository
	cache  Cache
	policy CachePolicy
}

func NewTaskUsecase(tasks TaskRepository, users UserRepository, audit AuditRepository, cache Cache, policy CachePolicy) *TaskUsecase {
	return &TaskUsecase{tasks: tasks, users: users, audit: audit, cache: cache, policy: policy}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssigneeID  int64
}

func (uc *TaskUsecase) Create(ctx context.Context, actor domain.Actor, input CreateTaskInput) (domain.Task, error) {
	if input.Title == "" {
		return domain.Task{}, domain.ValidationError{Message: "title is required"}
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return domain.Task{}, domain.ValidationError{Message: "unknown priority"}
	}

	// The assignee must exist and not be soft-deleted.
	if _, err := uc.users.GetByID(ctx, input.AssigneeID); err != nil {
		return domain.Task{}, err
	}

	task := domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusActive,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		AuthorID:    actor.ID,
		AssigneeID:  input.AssigneeID,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}

	invalidate(ctx, uc.cache,
		cachekey.TaskList(),
		cachekey.TaskStats(),
		cachekey.TaskAssignee(created.AssigneeID),
	)
	return created, nil
}

func (uc *TaskUsecase) Get(ctx context.Context, id int64) (domain.Task, error) {
	return readThrough(ctx, uc.cache, cachekey.Task(id), "", uc.policy.EntityTTL,
		func(ctx context.Context) (domain.Task, error) {
			return uc.tasks.GetByID(ctx, id)
		})
}

func (uc *TaskUsecase) List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	ns, key := cachekey.TaskSearch(f)
	if f.AssigneeID != 0 {
		// Keyed under the assignee so reassignment can invalidate exactly
		// the two affected users' list views.
		ns = cachekey.TaskAssignee(f.AssigneeID)
	}
	return readThrough(ctx, uc.cache, ns, key, uc.policy.ListTTL,
		func(ctx context.Context) ([]domain.Task, error) {
			return uc.tasks.List(ctx, f)
		})
}

func (uc *TaskUsecase) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.TaskPatch) (domain.Task, error) {
	if err := uc.authorize(ctx, actor, id); err != nil {
		return domain.Task{}, err
	}
	if patch.Priority != nil && !domain.ValidPriority(*patch.Priority) {
		return domain.Task{}, domain.ValidationError{Message: "unknown priority"}
	}

	updated, diff, err := uc.tasks.Update(ctx, id, patch, actor.ID)
	if err != nil {
		return domain.Task{}, err
	}

	if len(diff) > 0 {
		uc.invalidateTask(ctx, updated, updated.AssigneeID)
	}
	return updated, nil
}

// ChangeStatus moves a task through the status state machine. The
// transition is validated against the stored status inside the repository
// transaction, so concurrent changes each see a consistent from-state.
func (uc *TaskUsecase) ChangeStatus(ctx context.Context, actor domain.Actor, id int64, status domain.TaskStatus) (domain.Task, error) {
	if !domain.ValidStatus(status) {
		return domain.Task{}, domain.ValidationError{Message: "unknown status"}
	}
	if err := uc.authorize(ctx, actor, id); err != nil {
		return domain.Task{}, err
	}

	updated, err := uc.tasks.UpdateStatus(ctx, id, status, actor.ID)
	if err != nil {
		return domain.Task{}, err
	}

	uc.invalidateTask(ctx, updated, updated.AssigneeID)
	return updated, nil
}

// Reassign hands the task to another user on the same shift. Both the old
// and the new assignee's list caches are invalidated.
func (uc *TaskUsecase) Reassign(ctx context.Context, actor domain.Actor, id int64, assigneeID int64) (domain.Task, error) {
	if err := uc.authorize(ctx, actor, id); err != nil {
		return domain.Task{}, err
	}

	updated, oldAssigneeID, err := uc.tasks.Reassign(ctx, id, assigneeID, actor.ID)
	if err != nil {
		return domain.Task{}, err
	}

	uc.invalidateTask(ctx, updated, oldAssigneeID, updated.AssigneeID)
	return updated, nil
}

func (uc *TaskUsecase) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := uc.authorize(ctx, actor, id); err != nil {
		return err
	}

	deleted, err := uc.tasks.SoftDelete(ctx, id, actor.ID)
	if err != nil {
		return err
	}

	uc.invalidateTask(ctx, deleted, deleted.AssigneeID)
	return nil
}

func (uc *TaskUsecase) Restore(ctx context.Context, actor domain.Actor, id int64) (domain.Task, error) {
	task, err := uc.tasks.GetAny(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if task.AuthorID != actor.ID && !actor.IsAdmin() {
		return domain.Task{}, domain.ForbiddenError{Reason: "only the author or an admin may restore"}
	}

	restored, err := uc.tasks.Restore(ctx, id, actor.ID)
	if err != nil {
		return domain.Task{}, err
	}

	uc.invalidateTask(ctx, restored, restored.AssigneeID)
	return restored, nil
}

func (uc *TaskUsecase) History(ctx context.Context, id int64, offset, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	// The task must be visible before its history is.
	if _, err := uc.tasks.GetByID(ctx, id); err != nil {
		return nil, err
	}
	ns := cachekey.TaskHistory(id)
	return readThrough(ctx, uc.cache, ns, cachekey.Page(offset, limit), uc.policy.ListTTL,
		func(ctx context.Context) ([]domain.HistoryRecord, error) {
			return uc.audit.History(ctx, domain.KindTask, id, offset, limit)
		})
}

func (uc *TaskUsecase) Stats(ctx context.Context) (map[domain.TaskStatus]domain.TaskStats, error) {
	return readThrough(ctx, uc.cache, cachekey.TaskStats(), "", uc.policy.ListTTL,
		func(ctx context.Context) (map[domain.TaskStatus]domain.TaskStats, error) {
			return uc.tasks.Stats(ctx)
		})
}

func (uc *TaskUsecase) authorize(ctx context.Context, actor domain.Actor, id int64) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task.AuthorID != actor.ID && !actor.IsAdmin() {
		return domain.ForbiddenError{Reason: "only the author or an admin may do this"}
	}
	return nil
}

// invalidateTask covers the direct key, the history family, the stats and
// list families, and the list views of every affected assignee.
func (uc *TaskUsecase) invalidateTask(ctx context.Context, task domain.Task, assigneeIDs ...int64) {
	namespaces := []string{
		cachekey.Task(task.ID),
		cachekey.TaskHistory(task.ID),
		cachekey.TaskList(),
		cachekey.TaskStats(),
	}
	seen := map[int64]bool{}
	for _, id := range assigneeIDs {
		if id != 0 && !seen[id] {
			seen[id] = true
			namespaces = append(namespaces, cachekey.TaskAssignee(id))
		}
	}
	invalidate(ctx, uc.cache, namespaces...)
}
