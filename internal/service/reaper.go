package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/avdeyev/shiftdesk/internal/domain"
	"github.com/avdeyev/shiftdesk/internal/infra/database/models"
)

// ReaperService hard-deletes soft-deleted rows once their restore window
// has lapsed, together with their audit trail. Until then soft-deleted
// entities stay restorable; afterwards they are gone for good.
type ReaperService struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewReaperService(db *gorm.DB) *ReaperService {
	return &ReaperService{
		db:   db,
		cron: cron.New(),
	}
}

func (s *ReaperService) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.Sweep(context.Background()); err != nil {
			slog.Error("reaper sweep failed",
				slog.String("error", err.Error()),
				slog.String("module", "reaper"),
			)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *ReaperService) Stop() {
	s.cron.Stop()
}

// Sweep purges every entity type in its own transaction; one failing type
// does not block the others next round.
func (s *ReaperService) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-domain.RestoreWindow)

	if err := s.purge(ctx, domain.KindTask, &models.Task{}, cutoff); err != nil {
		return err
	}
	if err := s.purge(ctx, domain.KindArticle, &models.Article{}, cutoff); err != nil {
		return err
	}
	return s.purge(ctx, domain.KindUser, &models.User{}, cutoff)
}

func (s *ReaperService) purge(ctx context.Context, kind domain.EntityKind, model any, cutoff time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		err := tx.Model(model).
			Where("is_deleted = true AND deleted_at < ?", cutoff).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("entity = ? AND entity_id IN ?", string(kind), ids).
			Delete(&models.AuditRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(model).Error; err != nil {
			return err
		}

		slog.Info("purged expired soft-deleted rows",
			slog.String("entity", string(kind)),
			slog.Int("count", len(ids)),
			slog.String("module", "reaper"),
		)
		return nil
	})
}
