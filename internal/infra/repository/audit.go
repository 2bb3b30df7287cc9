package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/avdeyev/shiftdesk/internal/domain"
	"github.com/avdeyev/shiftdesk/internal/infra/database/models"
)

// appendAudit inserts one history record. It must be called on a
// transaction handle: a record may only exist for a mutation that commits,
// and the insert rolls back together with the entity change.
func appendAudit(tx *gorm.DB, kind domain.EntityKind, entityID, actorID int64, event string, changes domain.Diff) error {
	record := models.AuditRecord{
		Entity:   string(kind),
		EntityID: entityID,
		ActorID:  actorID,
		Event:    event,
		Changes:  changes,
	}
	return tx.Create(&record).Error
}

// AuditRepository serves history reads. Records are returned newest first;
// re-querying the same page is repeatable because records never change.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) History(ctx context.Context, kind domain.EntityKind, entityID int64, offset, limit int) ([]domain.HistoryRecord, error) {
	var rows []models.AuditRecord
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", string(kind), entityID).
		Order("changed_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.HistoryRecord{
			ID:        row.ID,
			Entity:    domain.EntityKind(row.Entity),
			EntityID:  row.EntityID,
			ActorID:   row.ActorID,
			Event:     row.Event,
			Changes:   row.Changes,
			ChangedAt: row.ChangedAt,
		})
	}
	return records, nil
}
