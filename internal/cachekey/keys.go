// Package cachekey defines the cache key scheme. Keys are split into a
// namespace and a member part: the namespace is the unit of invalidation
// (per entity id where possible), the member distinguishes parameterized
// views inside it. Key naming and hashing are policy, not contract; hashes
// are not stable across releases.
package cachekey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

func User(id int64) string        { return fmt.Sprintf("user:%d", id) }
func UserList() string            { return "user:list" }
func UserHistory(id int64) string { return fmt.Sprintf("user:history:%d", id) }

func UserSearch(f domain.UserFilter) (ns, key string) {
	return UserList(), hash(
		f.Username, f.FullName, f.Email,
		strconv.Itoa(f.RoleID), strconv.Itoa(f.Limit),
	)
}

func AdminUsers(roleID, limit int) (ns, key string) {
	return UserList(), hash("admin", strconv.Itoa(roleID), strconv.Itoa(limit))
}

func Task(id int64) string             { return fmt.Sprintf("task:%d", id) }
func TaskList() string                 { return "task:list" }
func TaskHistory(id int64) string      { return fmt.Sprintf("task:history:%d", id) }
func TaskAssignee(userID int64) string { return fmt.Sprintf("task:assignee:%d", userID) }
func TaskStats() string                { return "task:stats" }

func TaskSearch(f domain.TaskFilter) (ns, key string) {
	return TaskList(), hash(
		f.Title, strconv.FormatInt(f.AssigneeID, 10),
		string(f.Status), string(f.Priority),
		strconv.Itoa(f.Offset), strconv.Itoa(f.Limit),
	)
}

func Article(id int64) string        { return fmt.Sprintf("article:%d", id) }
func ArticleList() string            { return "article:list" }
func ArticleHistory(id int64) string { return fmt.Sprintf("article:history:%d", id) }

func ArticleSearch(f domain.ArticleFilter) (ns, key string) {
	return ArticleList(), hash(
		f.Title, strconv.FormatInt(f.AuthorID, 10),
		strconv.Itoa(f.Offset), strconv.Itoa(f.Limit),
	)
}

// Page is the member key for a paginated view inside a history namespace.
func Page(offset, limit int) string {
	return fmt.Sprintf("%d:%d", offset, limit)
}

func hash(parts ...string) string {
	return strconv.FormatUint(xxh3.HashString(strings.Join(parts, "\x1f")), 16)
}
