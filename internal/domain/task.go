package domain

import "time"

type TaskStatus string

const (
	StatusActive    TaskStatus = "ACTIVE"
	StatusPostponed TaskStatus = "POSTPONED"
	StatusCompleted TaskStatus = "COMPLETED"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// taskTransitions is the full status transition table. Anything absent is
// rejected before any write, including same-state "transitions".
var taskTransitions = map[TaskStatus][]TaskStatus{
	StatusActive:    {StatusPostponed, StatusCompleted},
	StatusPostponed: {StatusActive, StatusCompleted},
	StatusCompleted: {StatusActive},
}

// CanTransition reports whether from→to is a permitted status change.
func CanTransition(from, to TaskStatus) bool {
	for _, allowed := range taskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateAssignee enforces the reassignment rule: the candidate must not
// be soft-deleted and must work the same shift as the current assignee.
func ValidateAssignee(current, next User) error {
	if next.IsDeleted {
		return NotFoundError{Resource: "assignee"}
	}
	if current.Shift != next.Shift {
		return ErrShiftMismatch
	}
	return nil
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusActive, StatusPostponed, StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of crew work. Author and assignee reference users and are
// never owned by the task.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	AuthorID    int64        `json:"author_id"`
	AssigneeID  int64        `json:"assignee_id"`
	CreatedAt   time.Time    `json:"created_at"`
	IsDeleted   bool         `json:"-"`
	DeletedAt   *time.Time   `json:"-"`
}

// TaskPatch enumerates the fields a plain update may touch. Status and
// assignee have dedicated operations with their own rules.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	DueDate     *time.Time
}

func (p TaskPatch) Diff(cur Task) Diff {
	d := Diff{}
	if p.Title != nil && *p.Title != cur.Title {
		d["title"] = FieldChange{Old: cur.Title, New: *p.Title}
	}
	if p.Description != nil && *p.Description != cur.Description {
		d["description"] = FieldChange{Old: cur.Description, New: *p.Description}
	}
	if p.Priority != nil && *p.Priority != cur.Priority {
		d["priority"] = FieldChange{Old: string(cur.Priority), New: string(*p.Priority)}
	}
	if p.DueDate != nil && !equalTime(p.DueDate, cur.DueDate) {
		d["due_date"] = FieldChange{Old: cur.DueDate, New: *p.DueDate}
	}
	return d
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Title      string
	AssigneeID int64
	Status     TaskStatus
	Priority   TaskPriority
	Offset     int
	Limit      int
}

// TaskStats aggregates open work by status and priority.
type TaskStats struct {
	Total          int64 `json:"total"`
	HighPriority   int64 `json:"high_priority"`
	MediumPriority int64 `json:"medium_priority"`
	LowPriority    int64 `json:"low_priority"`
}
