package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avdeyev/shiftdesk/internal/cachekey"
	"github.com/avdeyev/shiftdesk/internal/domain"
)

type mockTaskRepo struct {
	task        domain.Task
	diff        domain.Diff
	updateErr   error
	statusErr   error
	created     *domain.Task
	statusSet   domain.TaskStatus
	oldAssignee int64

	// shifts maps user IDs to their shift; when set, Reassign enforces
	// the shift rule the way the real repository does.
	shifts map[int64]string

	// audit mimics the in-transaction append: newest record first, the
	// same order the real repository reads them back in.
	audit *mockAuditRepo
}

func (m *mockTaskRepo) appendAudit(event string, changes domain.Diff) {
	if m.audit == nil {
		return
	}
	m.audit.records = append([]domain.HistoryRecord{{
		ID:       int64(len(m.audit.records) + 1),
		Entity:   domain.KindTask,
		EntityID: m.task.ID,
		Event:    event,
		Changes:  changes,
	}}, m.audit.records...)
}

func (m *mockTaskRepo) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	task.ID = 1
	m.created = &task
	m.task = task
	m.appendAudit(domain.EventCreated, domain.Diff{"status": {Old: nil, New: string(task.Status)}})
	return task, nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (domain.Task, error) {
	if m.task.ID != id {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}
	return m.task, nil
}

func (m *mockTaskRepo) GetAny(ctx context.Context, id int64) (domain.Task, error) {
	if m.task.ID != id {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}
	return m.task, nil
}

func (m *mockTaskRepo) List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	return []domain.Task{m.task}, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, id int64, patch domain.TaskPatch, actorID int64) (domain.Task, domain.Diff, error) {
	if m.updateErr != nil {
		return domain.Task{}, nil, m.updateErr
	}
	patch.Apply(&m.task)
	return m.task, m.diff, nil
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, actorID int64) (domain.Task, error) {
	if m.statusErr != nil {
		return domain.Task{}, m.statusErr
	}
	from := m.task.Status
	if !domain.CanTransition(from, status) {
		return domain.Task{}, domain.InvalidTransitionError{From: from, To: status}
	}
	m.statusSet = status
	m.task.Status = status
	m.appendAudit(domain.EventStatusChanged, domain.Diff{"status": {Old: string(from), New: string(status)}})
	return m.task, nil
}

func (m *mockTaskRepo) Reassign(ctx context.Context, id int64, assigneeID int64, actorID int64) (domain.Task, int64, error) {
	old := m.task.AssigneeID
	if m.shifts != nil {
		nextShift, ok := m.shifts[assigneeID]
		if !ok {
			return domain.Task{}, 0, domain.NotFoundError{Resource: "assignee"}
		}
		current := domain.User{Shift: m.shifts[old]}
		if err := domain.ValidateAssignee(current, domain.User{Shift: nextShift}); err != nil {
			return domain.Task{}, 0, err
		}
	}
	m.task.AssigneeID = assigneeID
	m.oldAssignee = old
	m.appendAudit(domain.EventReassigned, domain.Diff{"assignee_id": {Old: old, New: assigneeID}})
	return m.task, old, nil
}

func (m *mockTaskRepo) SoftDelete(ctx context.Context, id int64, actorID int64) (domain.Task, error) {
	m.task.IsDeleted = true
	return m.task, nil
}

func (m *mockTaskRepo) Restore(ctx context.Context, id int64, actorID int64) (domain.Task, error) {
	if !domain.WithinRestoreWindow(m.task.DeletedAt, time.Now()) {
		return domain.Task{}, domain.NotFoundError{Resource: "task"}
	}
	m.task.IsDeleted = false
	m.task.DeletedAt = nil
	return m.task, nil
}

func (m *mockTaskRepo) Stats(ctx context.Context) (map[domain.TaskStatus]domain.TaskStats, error) {
	return map[domain.TaskStatus]domain.TaskStats{domain.StatusActive: {Total: 1}}, nil
}

type mockUserRepo struct {
	users map[int64]domain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User, hashedPassword string) (domain.User, error) {
	user.ID = int64(len(m.users) + 1)
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m *mockUserRepo) Search(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, roleID, limit int) ([]domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, patch domain.UserPatch, actorID int64) (domain.User, domain.Diff, error) {
	u := m.users[id]
	diff := patch.Diff(u)
	patch.Apply(&u)
	m.users[id] = u
	return u, diff, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string, actorID int64) error {
	return nil
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, id int64, actorID int64) error {
	delete(m.users, id)
	return nil
}

type mockAuditRepo struct {
	records []domain.HistoryRecord
}

func (m *mockAuditRepo) History(ctx context.Context, kind domain.EntityKind, entityID int64, offset, limit int) ([]domain.HistoryRecord, error) {
	return m.records, nil
}

var (
	testAdmin  = domain.Actor{ID: 99, Username: "chief", RoleID: domain.RoleAdmin, Shift: "day"}
	testAuthor = domain.Actor{ID: 5, Username: "ivanov", RoleID: domain.RoleMember, Shift: "day"}
)

func newTaskUsecase(repo *mockTaskRepo, users *mockUserRepo, cache *mockCache) *TaskUsecase {
	return NewTaskUsecase(repo, users, &mockAuditRepo{}, cache, CachePolicy{})
}

func TestTaskCreateRejectsUnknownPriority(t *testing.T) {
	repo := &mockTaskRepo{}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, newMockCache())

	_, err := uc.Create(context.Background(), testAuthor, CreateTaskInput{
		Title:      "refuel",
		Priority:   "URGENT",
		AssigneeID: 5,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("rejected create must not reach the repository")
	}
}

func TestTaskCreateRejectsMissingAssignee(t *testing.T) {
	uc := newTaskUsecase(&mockTaskRepo{}, &mockUserRepo{users: map[int64]domain.User{}}, newMockCache())

	_, err := uc.Create(context.Background(), testAuthor, CreateTaskInput{
		Title:      "refuel",
		AssigneeID: 404,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTaskCreateInvalidatesListViews(t *testing.T) {
	cache := newMockCache()
	users := &mockUserRepo{users: map[int64]domain.User{7: {ID: 7, Shift: "day"}}}
	uc := newTaskUsecase(&mockTaskRepo{}, users, cache)

	created, err := uc.Create(context.Background(), testAuthor, CreateTaskInput{
		Title:      "refuel",
		AssigneeID: 7,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != domain.StatusActive {
		t.Fatalf("new task must start ACTIVE, got %s", created.Status)
	}
	if created.Priority != domain.PriorityMedium {
		t.Fatalf("priority must default to MEDIUM, got %s", created.Priority)
	}

	for _, ns := range []string{cachekey.TaskList(), cachekey.TaskStats(), cachekey.TaskAssignee(7)} {
		if !cache.wasInvalidated(ns) {
			t.Errorf("expected namespace %q to be invalidated, got %v", ns, cache.invalidated)
		}
	}
}

func TestTaskChangeStatusRejectsUnknownStatus(t *testing.T) {
	repo := &mockTaskRepo{task: domain.Task{ID: 1, AuthorID: testAuthor.ID, Status: domain.StatusActive}}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, newMockCache())

	_, err := uc.ChangeStatus(context.Background(), testAuthor, 1, "DONE")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.statusSet != "" {
		t.Fatalf("rejected status must not reach the repository")
	}
}

func TestTaskChangeStatusSurfacesInvalidTransition(t *testing.T) {
	cache := newMockCache()
	repo := &mockTaskRepo{
		task:      domain.Task{ID: 1, AuthorID: testAuthor.ID, Status: domain.StatusPostponed},
		statusErr: domain.InvalidTransitionError{From: domain.StatusPostponed, To: domain.StatusPostponed},
	}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, cache)

	_, err := uc.ChangeStatus(context.Background(), testAuthor, 1, domain.StatusPostponed)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if len(cache.invalidated) != 0 {
		t.Fatalf("failed mutation must not invalidate, got %v", cache.invalidated)
	}
}

func TestTaskUpdateNoopSkipsInvalidation(t *testing.T) {
	cache := newMockCache()
	repo := &mockTaskRepo{task: domain.Task{ID: 1, AuthorID: testAuthor.ID, Title: "refuel"}}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, cache)

	same := "refuel"
	if _, err := uc.Update(context.Background(), testAuthor, 1, domain.TaskPatch{Title: &same}); err != nil {
		t.Fatalf("no-op update failed: %v", err)
	}
	if len(cache.invalidated) != 0 {
		t.Fatalf("no-op update must not invalidate, got %v", cache.invalidated)
	}
}

func TestTaskUpdateInvalidatesAfterChange(t *testing.T) {
	cache := newMockCache()
	repo := &mockTaskRepo{
		task: domain.Task{ID: 1, AuthorID: testAuthor.ID, AssigneeID: 7, Title: "refuel"},
		diff: domain.Diff{"title": {Old: "refuel", New: "inspect"}},
	}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, cache)

	title := "inspect"
	if _, err := uc.Update(context.Background(), testAuthor, 1, domain.TaskPatch{Title: &title}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	for _, ns := range []string{
		cachekey.Task(1), cachekey.TaskHistory(1),
		cachekey.TaskList(), cachekey.TaskStats(), cachekey.TaskAssignee(7),
	} {
		if !cache.wasInvalidated(ns) {
			t.Errorf("expected namespace %q to be invalidated, got %v", ns, cache.invalidated)
		}
	}
}

func TestTaskUpdateForbiddenForStranger(t *testing.T) {
	repo := &mockTaskRepo{task: domain.Task{ID: 1, AuthorID: 123}}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, newMockCache())

	title := "inspect"
	_, err := uc.Update(context.Background(), testAuthor, 1, domain.TaskPatch{Title: &title})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTaskReassignInvalidatesBothAssignees(t *testing.T) {
	cache := newMockCache()
	repo := &mockTaskRepo{
		task:   domain.Task{ID: 1, AuthorID: testAuthor.ID, AssigneeID: 7},
		shifts: map[int64]string{7: "day", 8: "day"},
	}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, cache)

	if _, err := uc.Reassign(context.Background(), testAuthor, 1, 8); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}

	if !cache.wasInvalidated(cachekey.TaskAssignee(7)) || !cache.wasInvalidated(cachekey.TaskAssignee(8)) {
		t.Fatalf("expected both assignee namespaces invalidated, got %v", cache.invalidated)
	}
}

func TestTaskReassignAcrossShiftsRejected(t *testing.T) {
	cache := newMockCache()
	repo := &mockTaskRepo{
		task:   domain.Task{ID: 1, AuthorID: testAuthor.ID, AssigneeID: 7},
		shifts: map[int64]string{7: "day", 8: "night"},
	}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, cache)

	_, err := uc.Reassign(context.Background(), testAuthor, 1, 8)
	if !errors.Is(err, domain.ErrShiftMismatch) {
		t.Fatalf("expected shift mismatch, got %v", err)
	}
	if repo.task.AssigneeID != 7 {
		t.Fatalf("rejected reassignment changed assignee to %d", repo.task.AssigneeID)
	}
	if len(cache.invalidated) != 0 {
		t.Fatalf("failed mutation must not invalidate, got %v", cache.invalidated)
	}
}

func TestTaskRestoreForbiddenForStranger(t *testing.T) {
	repo := &mockTaskRepo{task: domain.Task{ID: 1, AuthorID: 123, IsDeleted: true}}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, newMockCache())

	_, err := uc.Restore(context.Background(), testAuthor, 1)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.task.IsDeleted != true {
		t.Fatalf("forbidden restore must not mutate")
	}
}

func TestTaskRestoreRefusedAfterWindow(t *testing.T) {
	cache := newMockCache()
	deleted := time.Now().Add(-8 * 24 * time.Hour)
	repo := &mockTaskRepo{task: domain.Task{ID: 1, AuthorID: testAuthor.ID, IsDeleted: true, DeletedAt: &deleted}}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, cache)

	_, err := uc.Restore(context.Background(), testAuthor, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found past the grace window, got %v", err)
	}
	if !repo.task.IsDeleted {
		t.Fatalf("expired restore must leave the task deleted")
	}
	if len(cache.invalidated) != 0 {
		t.Fatalf("failed restore must not invalidate, got %v", cache.invalidated)
	}
}

func TestTaskRestoreWithinWindow(t *testing.T) {
	deleted := time.Now().Add(-24 * time.Hour)
	repo := &mockTaskRepo{task: domain.Task{ID: 1, AuthorID: testAuthor.ID, IsDeleted: true, DeletedAt: &deleted}}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, newMockCache())

	restored, err := uc.Restore(context.Background(), testAuthor, 1)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.IsDeleted || repo.task.IsDeleted {
		t.Fatalf("restore must clear the deleted flag")
	}
}

func TestTaskLifecycleHistory(t *testing.T) {
	ctx := context.Background()
	audit := &mockAuditRepo{}
	repo := &mockTaskRepo{audit: audit}
	users := &mockUserRepo{users: map[int64]domain.User{7: {ID: 7, Shift: "morning"}}}
	uc := NewTaskUsecase(repo, users, audit, newMockCache(), CachePolicy{})

	task, err := uc.Create(ctx, testAuthor, CreateTaskInput{Title: "Fix pump", AssigneeID: 7})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if task.Status != domain.StatusActive {
		t.Fatalf("expected ACTIVE after create, got %s", task.Status)
	}

	if _, err := uc.ChangeStatus(ctx, testAuthor, task.ID, domain.StatusPostponed); err != nil {
		t.Fatalf("ACTIVE -> POSTPONED failed: %v", err)
	}

	// Same-state transition is rejected and leaves the status untouched.
	_, err = uc.ChangeStatus(ctx, testAuthor, task.ID, domain.StatusPostponed)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if repo.task.Status != domain.StatusPostponed {
		t.Fatalf("rejected transition changed stored status to %s", repo.task.Status)
	}

	if _, err := uc.ChangeStatus(ctx, testAuthor, task.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("POSTPONED -> COMPLETED failed: %v", err)
	}

	records, err := uc.History(ctx, task.ID, 0, 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 history records, got %d", len(records))
	}

	wantEvents := []string{domain.EventStatusChanged, domain.EventStatusChanged, domain.EventCreated}
	for i, want := range wantEvents {
		if records[i].Event != want {
			t.Errorf("record %d event = %s, want %s", i, records[i].Event, want)
		}
	}
	if records[0].Changes["status"].New != string(domain.StatusCompleted) {
		t.Errorf("newest record should be the COMPLETED change, got %+v", records[0].Changes)
	}
	if records[1].Changes["status"].Old != string(domain.StatusActive) {
		t.Errorf("middle record should record the ACTIVE pre-state, got %+v", records[1].Changes)
	}
}

func TestTaskGetServedFromCache(t *testing.T) {
	cache := newMockCache()
	repo := &mockTaskRepo{task: domain.Task{ID: 1, Title: "refuel"}}
	uc := newTaskUsecase(repo, &mockUserRepo{users: map[int64]domain.User{}}, cache)

	first, err := uc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// Mutate the backing store directly; the cached snapshot must win.
	repo.task.Title = "changed behind the cache"

	second, err := uc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Title != first.Title {
		t.Fatalf("expected cached title %q, got %q", first.Title, second.Title)
	}
}
