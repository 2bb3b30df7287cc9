package domain

import "time"

// EntityKind discriminates audit records by the entity type they document.
type EntityKind string

const (
	KindUser    EntityKind = "user"
	KindArticle EntityKind = "article"
	KindTask    EntityKind = "task"
)

// Audit event tags. One record per accepted mutation, appended in the same
// transaction as the entity change itself.
const (
	EventCreated       = "CREATED"
	EventUpdated       = "UPDATED"
	EventStatusChanged = "STATUS_CHANGED"
	EventReassigned    = "REASSIGNED"
	EventDeleted       = "DELETED"
	EventRestored      = "RESTORED"
	EventPasswordReset = "PASSWORD_RESET"
	EventImageAdded    = "IMAGE_ADDED"
)

// FieldChange is one entry of an audit diff.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff maps changed-field names to their old and new values.
type Diff map[string]FieldChange

// HistoryRecord is an immutable audit entry: who changed what, when, and how.
type HistoryRecord struct {
	ID        int64      `json:"id"`
	Entity    EntityKind `json:"entity"`
	EntityID  int64      `json:"entity_id"`
	ActorID   int64      `json:"user_id"`
	Event     string     `json:"event"`
	Changes   Diff       `json:"changes,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}

// RestoreWindow is how long a soft-deleted entity stays restorable.
const RestoreWindow = 7 * 24 * time.Hour

// WithinRestoreWindow reports whether an entity deleted at deletedAt may
// still be restored at now. A nil deletedAt means the entity was never
// soft-deleted and there is nothing to restore.
func WithinRestoreWindow(deletedAt *time.Time, now time.Time) bool {
	return deletedAt != nil && now.Sub(*deletedAt) <= RestoreWindow
}
