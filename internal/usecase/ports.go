package usecase

import (
	"context"
	"time"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

// Cache is the key/value store fronting hot queries. Invalidate removes a
// whole namespace (one entity's direct view, a history family, a list
// family); implementations must bound the work per call.
type Cache interface {
	Get(ctx context.Context, ns, key string) ([]byte, bool, error)
	Set(ctx context.Context, ns, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, namespaces ...string) error
}

// CachePolicy carries the TTL configuration. Single-entity views get the
// long backstop TTL because they are invalidated precisely on mutation;
// list/search/history views rely on the short TTL instead.
type CachePolicy struct {
	EntityTTL time.Duration
	ListTTL   time.Duration
}

// UserRepository defines persistence for users. Mutations run in one
// transaction with their audit record.
type UserRepository interface {
	Create(ctx context.Context, user domain.User, hashedPassword string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	Search(ctx context.Context, f domain.UserFilter) ([]domain.User, error)
	List(ctx context.Context, roleID, limit int) ([]domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch, actorID int64) (domain.User, domain.Diff, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string, actorID int64) error
	SoftDelete(ctx context.Context, id int64, actorID int64) error
}

// ArticleRepository defines persistence for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article domain.Article, imagePaths []string) (domain.Article, error)
	GetByID(ctx context.Context, id int64) (domain.Article, error)
	// GetAny also returns soft-deleted articles, for pre-restore checks.
	GetAny(ctx context.Context, id int64) (domain.Article, error)
	List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error)
	Update(ctx context.Context, id int64, patch domain.ArticlePatch, imagePaths []string, actorID int64) (domain.Article, domain.Diff, error)
	SoftDelete(ctx context.Context, id int64, actorID int64) error
	Restore(ctx context.Context, id int64, actorID int64) (domain.Article, error)
}

// TaskRepository defines persistence for tasks. Reassign reports the
// previous assignee so the caller can invalidate both list caches.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	GetByID(ctx context.Context, id int64) (domain.Task, error)
	// GetAny also returns soft-deleted tasks, for pre-restore checks.
	GetAny(ctx context.Context, id int64) (domain.Task, error)
	List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch, actorID int64) (domain.Task, domain.Diff, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, actorID int64) (domain.Task, error)
	Reassign(ctx context.Context, id int64, assigneeID int64, actorID int64) (task domain.Task, oldAssigneeID int64, err error)
	SoftDelete(ctx context.Context, id int64, actorID int64) (domain.Task, error)
	Restore(ctx context.Context, id int64, actorID int64) (domain.Task, error)
	Stats(ctx context.Context) (map[domain.TaskStatus]domain.TaskStats, error)
}

// AuditRepository serves the read side of the audit log. Appends happen
// inside the entity repositories' transactions and have no standalone API.
type AuditRepository interface {
	History(ctx context.Context, kind domain.EntityKind, entityID int64, offset, limit int) ([]domain.HistoryRecord, error)
}

// ChatRepository defines persistence for chats and messages.
type ChatRepository interface {
	CreateChat(ctx context.Context, chat domain.Chat, memberIDs []int64) (domain.Chat, error)
	GetChat(ctx context.Context, chatID int64) (domain.Chat, error)
	ListChats(ctx context.Context, userID int64) ([]domain.Chat, error)
	AddMember(ctx context.Context, chatID, userID int64) error
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
	SaveMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	Messages(ctx context.Context, chatID int64, offset, limit int) ([]domain.Message, error)
}

// MessageStream fans out chat messages and keeps the hot tail cached.
type MessageStream interface {
	Publish(ctx context.Context, msg domain.Message) error
	Recent(ctx context.Context, chatID int64, limit int) ([]domain.Message, error)
}
