package usecase

import (
	"context"

	"github.com/avdeyev/shiftdesk/internal/cachekey"
	"github.com/avdeyev/shiftdesk/internal/domain"
)

type ArticleUsecase struct {
	repo   ArticleRepository
	audit  AuditRepository
	cache  Cache
	policy CachePolicy
}

func NewArticleUsecase(repo ArticleRepository, audit AuditRepository, cache Cache, policy CachePolicy) *ArticleUsecase {
	return &ArticleUsecase{repo: repo, audit: audit, cache: cache, policy: policy}
}

func (uc *ArticleUsecase) Create(ctx context.Context, actor domain.Actor, title, content string, imagePaths []string) (domain.Article, error) {
	if len(title) < 3 {
		return domain.Article{}, domain.ValidationError{Message: "title must be at least 3 characters"}
	}
	if content == "" {
		return domain.Article{}, domain.ValidationError{Message: "content is required"}
	}

	article := domain.Article{
		Title:    title,
		Content:  content,
		AuthorID: actor.ID,
	}

	created, err := uc.repo.Create(ctx, article, imagePaths)
	if err != nil {
		return domain.Article{}, err
	}

	invalidate(ctx, uc.cache, cachekey.ArticleList())
	return created, nil
}

func (uc *ArticleUsecase) Get(ctx context.Context, id int64) (domain.Article, error) {
	return readThrough(ctx, uc.cache, cachekey.Article(id), "", uc.policy.EntityTTL,
		func(ctx context.Context) (domain.Article, error) {
			return uc.repo.GetByID(ctx, id)
		})
}

func (uc *ArticleUsecase) List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	ns, key := cachekey.ArticleSearch(f)
	return readThrough(ctx, uc.cache, ns, key, uc.policy.ListTTL,
		func(ctx context.Context) ([]domain.Article, error) {
			return uc.repo.List(ctx, f)
		})
}

// Update applies a patch. Only the original author or an admin may edit;
// an empty diff commits nothing and leaves the caches alone.
func (uc *ArticleUsecase) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.ArticlePatch, imagePaths []string) (domain.Article, error) {
	if err := uc.authorize(ctx, actor, id); err != nil {
		return domain.Article{}, err
	}
	if patch.Title != nil && len(*patch.Title) < 3 {
		return domain.Article{}, domain.ValidationError{Message: "title must be at least 3 characters"}
	}

	updated, diff, err := uc.repo.Update(ctx, id, patch, imagePaths, actor.ID)
	if err != nil {
		return domain.Article{}, err
	}

	if len(diff) > 0 || len(imagePaths) > 0 {
		uc.invalidateArticle(ctx, id)
	}
	return updated, nil
}

func (uc *ArticleUsecase) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := uc.authorize(ctx, actor, id); err != nil {
		return err
	}

	if err := uc.repo.SoftDelete(ctx, id, actor.ID); err != nil {
		return err
	}

	uc.invalidateArticle(ctx, id)
	return nil
}

// Restore reverses a soft delete within the grace window.
func (uc *ArticleUsecase) Restore(ctx context.Context, actor domain.Actor, id int64) (domain.Article, error) {
	article, err := uc.repo.GetAny(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	if article.AuthorID != actor.ID && !actor.IsAdmin() {
		return domain.Article{}, domain.ForbiddenError{Reason: "only the author or an admin may restore"}
	}

	restored, err := uc.repo.Restore(ctx, id, actor.ID)
	if err != nil {
		return domain.Article{}, err
	}

	uc.invalidateArticle(ctx, id)
	return restored, nil
}

func (uc *ArticleUsecase) History(ctx context.Context, actor domain.Actor, id int64, offset, limit int) ([]domain.HistoryRecord, error) {
	if err := uc.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	ns := cachekey.ArticleHistory(id)
	return readThrough(ctx, uc.cache, ns, cachekey.Page(offset, limit), uc.policy.ListTTL,
		func(ctx context.Context) ([]domain.HistoryRecord, error) {
			return uc.audit.History(ctx, domain.KindArticle, id, offset, limit)
		})
}

func (uc *ArticleUsecase) authorize(ctx context.Context, actor domain.Actor, id int64) error {
	article, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if article.AuthorID != actor.ID && !actor.IsAdmin() {
		return domain.ForbiddenError{Reason: "only the author or an admin may do this"}
	}
	return nil
}

func (uc *ArticleUsecase) invalidateArticle(ctx context.Context, id int64) {
	invalidate(ctx, uc.cache,
		cachekey.Article(id),
		cachekey.ArticleHistory(id),
		cachekey.ArticleList(),
	)
}
