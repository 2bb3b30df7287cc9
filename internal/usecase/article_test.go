package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/avdeyev/shiftdesk/internal/cachekey"
	"github.com/avdeyev/shiftdesk/internal/domain"
)

type mockArticleRepo struct {
	article  domain.Article
	diff     domain.Diff
	restored bool
}

func (m *mockArticleRepo) Create(ctx context.Context, article domain.Article, imagePaths []string) (domain.Article, error) {
	article.ID = 1
	m.article = article
	return article, nil
}

func (m *mockArticleRepo) GetByID(ctx context.Context, id int64) (domain.Article, error) {
	if m.article.ID != id || m.article.IsDeleted {
		return domain.Article{}, domain.NotFoundError{Resource: "article"}
	}
	return m.article, nil
}

func (m *mockArticleRepo) GetAny(ctx context.Context, id int64) (domain.Article, error) {
	if m.article.ID != id {
		return domain.Article{}, domain.NotFoundError{Resource: "article"}
	}
	return m.article, nil
}

func (m *mockArticleRepo) List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	return []domain.Article{m.article}, nil
}

func (m *mockArticleRepo) Update(ctx context.Context, id int64, patch domain.ArticlePatch, imagePaths []string, actorID int64) (domain.Article, domain.Diff, error) {
	patch.Apply(&m.article)
	return m.article, m.diff, nil
}

func (m *mockArticleRepo) SoftDelete(ctx context.Context, id int64, actorID int64) error {
	m.article.IsDeleted = true
	return nil
}

func (m *mockArticleRepo) Restore(ctx context.Context, id int64, actorID int64) (domain.Article, error) {
	m.article.IsDeleted = false
	m.restored = true
	return m.article, nil
}

func TestArticleCreateValidation(t *testing.T) {
	uc := NewArticleUsecase(&mockArticleRepo{}, &mockAuditRepo{}, newMockCache(), CachePolicy{})
	ctx := context.Background()

	if _, err := uc.Create(ctx, testAuthor, "ab", "content", nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("short title: expected validation error, got %v", err)
	}
	if _, err := uc.Create(ctx, testAuthor, "title", "", nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty content: expected validation error, got %v", err)
	}
}

func TestArticleUpdateInvalidatesOnImageOnlyChange(t *testing.T) {
	cache := newMockCache()
	repo := &mockArticleRepo{article: domain.Article{ID: 1, AuthorID: testAuthor.ID, Title: "title"}}
	uc := NewArticleUsecase(repo, &mockAuditRepo{}, cache, CachePolicy{})

	// No field changes, but a new image still alters the rendered view.
	_, err := uc.Update(context.Background(), testAuthor, 1, domain.ArticlePatch{}, []string{"/uploads/a.png"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !cache.wasInvalidated(cachekey.Article(1)) {
		t.Fatalf("expected article namespace invalidated, got %v", cache.invalidated)
	}
}

func TestArticleRestoreAuthorOnly(t *testing.T) {
	repo := &mockArticleRepo{article: domain.Article{ID: 1, AuthorID: 123, IsDeleted: true}}
	uc := NewArticleUsecase(repo, &mockAuditRepo{}, newMockCache(), CachePolicy{})

	if _, err := uc.Restore(context.Background(), testAuthor, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.restored {
		t.Fatalf("forbidden restore must not mutate")
	}

	if _, err := uc.Restore(context.Background(), testAdmin, 1); err != nil {
		t.Fatalf("admin restore failed: %v", err)
	}
	if !repo.restored {
		t.Fatalf("expected restore to reach the repository")
	}
}
