package cachekey

import (
	"testing"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

func TestSearchKeysAreDeterministic(t *testing.T) {
	f := domain.TaskFilter{Title: "refuel", AssigneeID: 7, Status: domain.StatusActive, Limit: 10}

	ns1, key1 := TaskSearch(f)
	ns2, key2 := TaskSearch(f)

	if ns1 != ns2 || key1 != key2 {
		t.Fatalf("same filter produced different keys: %s/%s vs %s/%s", ns1, key1, ns2, key2)
	}

	f.Limit = 20
	_, key3 := TaskSearch(f)
	if key3 == key1 {
		t.Fatalf("different filters collided on key %s", key1)
	}
}

func TestNamespacesAreDisjoint(t *testing.T) {
	keys := []string{
		Task(4), Task(42), TaskHistory(4), TaskAssignee(4),
		TaskList(), TaskStats(),
		User(4), UserHistory(4), UserList(),
		Article(4), ArticleHistory(4), ArticleList(),
	}

	seen := map[string]bool{}
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("namespace collision on %q", k)
		}
		seen[k] = true
	}
}

func TestPage(t *testing.T) {
	if got := Page(0, 10); got != "0:10" {
		t.Fatalf("unexpected page key %q", got)
	}
}
