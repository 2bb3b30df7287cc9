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

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article domain.Article, imagePaths []string) (domain.Article, error) {
	row := models.Article{
		Title:    article.Title,
		Content:  article.Content,
		AuthorID: article.AuthorID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, path := range imagePaths {
			img := models.ArticleImage{ArticleID: row.ID, ImagePath: path}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
			row.Images = append(row.Images, img)
		}
		return appendAudit(tx, domain.KindArticle, row.ID, article.AuthorID, domain.EventCreated, domain.Diff{
			"title":   {Old: nil, New: article.Title},
			"content": {Old: nil, New: article.Content},
		})
	})
	if err != nil {
		return domain.Article{}, err
	}
	return toDomainArticle(row), nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (domain.Article, error) {
	var row models.Article
	err := r.db.WithContext(ctx).Preload("Images").
		Where("id = ? AND is_deleted = false", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Article{}, domain.NotFoundError{Resource: "article"}
	}
	if err != nil {
		return domain.Article{}, err
	}
	return toDomainArticle(row), nil
}

func (r *ArticleRepository) GetAny(ctx context.Context, id int64) (domain.Article, error) {
	var row models.Article
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Article{}, domain.NotFoundError{Resource: "article"}
	}
	if err != nil {
		return domain.Article{}, err
	}
	return toDomainArticle(row), nil
}

func (r *ArticleRepository) List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{}).Where("is_deleted = false")
	if f.Title != "" {
		query = query.Where("title ILIKE ?", "%"+f.Title+"%")
	}
	if f.AuthorID != 0 {
		query = query.Where("author_id = ?", f.AuthorID)
	}

	var rows []models.Article
	err := query.Preload("Images").
		Order("created_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		articles = append(articles, toDomainArticle(row))
	}
	return articles, nil
}

func (r *ArticleRepository) Update(ctx context.Context, id int64, patch domain.ArticlePatch, imagePaths []string, actorID int64) (domain.Article, domain.Diff, error) {
	var row models.Article
	var diff domain.Diff

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = false", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "article"}
		}
		if err != nil {
			return err
		}

		cur := toDomainArticle(row)
		diff = patch.Diff(cur)

		if len(diff) > 0 {
			patch.Apply(&cur)
			row.Title = cur.Title
			row.Content = cur.Content
			row.UpdatedAt = time.Now()
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
			if err := appendAudit(tx, domain.KindArticle, id, actorID, domain.EventUpdated, diff); err != nil {
				return err
			}
		}

		for _, path := range imagePaths {
			img := models.ArticleImage{ArticleID: id, ImagePath: path}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
			if err := appendAudit(tx, domain.KindArticle, id, actorID, domain.EventImageAdded, domain.Diff{
				"image": {Old: nil, New: path},
			}); err != nil {
				return err
			}
		}

		return tx.Preload("Images").Where("id = ?", id).Take(&row).Error
	})
	if err != nil {
		return domain.Article{}, nil, err
	}
	return toDomainArticle(row), diff, nil
}

func (r *ArticleRepository) SoftDelete(ctx context.Context, id int64, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Article
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = false", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "article"}
		}
		if err != nil {
			return err
		}

		now := time.Now()
		row.IsDeleted = true
		row.DeletedAt = &now
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindArticle, id, actorID, domain.EventDeleted, domain.Diff{
			"is_deleted": {Old: false, New: true},
		})
	})
}

// Restore flips the soft-delete flag back, but only while the grace window
// is open; an expired row reads as NotFound.
func (r *ArticleRepository) Restore(ctx context.Context, id int64, actorID int64) (domain.Article, error) {
	var row models.Article

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = true", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "article"}
		}
		if err != nil {
			return err
		}
		if !domain.WithinRestoreWindow(row.DeletedAt, time.Now()) {
			return domain.NotFoundError{Resource: "article"}
		}

		row.IsDeleted = false
		row.DeletedAt = nil
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return appendAudit(tx, domain.KindArticle, id, actorID, domain.EventRestored, domain.Diff{
			"is_deleted": {Old: true, New: false},
		})
	})
	if err != nil {
		return domain.Article{}, err
	}
	return toDomainArticle(row), nil
}

func toDomainArticle(row models.Article) domain.Article {
	images := make([]string, 0, len(row.Images))
	for _, img := range row.Images {
		images = append(images, img.ImagePath)
	}
	return domain.Article{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		AuthorID:  row.AuthorID,
		Images:    images,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		IsDeleted: row.IsDeleted,
		DeletedAt: row.DeletedAt,
	}
}
