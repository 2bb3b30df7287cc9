package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avdeyev/shiftdesk/internal/domain"
	"github.com/avdeyev/shiftdesk/internal/infra/database/models"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateChat inserts the chat and its initial member set. The creator is
// always a member; unknown or deleted invitees are skipped silently.
func (r *ChatRepository) CreateChat(ctx context.Context, chat domain.Chat, memberIDs []int64) (domain.Chat, error) {
	row := models.Chat{
		Name:      chat.Name,
		CreatorID: chat.CreatorID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		members := []int64{chat.CreatorID}
		for _, id := range memberIDs {
			if id != chat.CreatorID {
				members = append(members, id)
			}
		}
		for _, id := range members {
			var count int64
			if err := tx.Model(&models.User{}).
				Where("id = ? AND is_deleted = false", id).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				continue
			}
			member := models.ChatMember{ChatID: row.ID, UserID: id}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return toDomainChat(row), nil
}

func (r *ChatRepository) GetChat(ctx context.Context, chatID int64) (domain.Chat, error) {
	var row models.Chat
	err := r.db.WithContext(ctx).Where("id = ?", chatID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Chat{}, domain.NotFoundError{Resource: "chat"}
	}
	if err != nil {
		return domain.Chat{}, err
	}
	return toDomainChat(row), nil
}

// ListChats returns every chat the user belongs to, ordered by name.
func (r *ChatRepository) ListChats(ctx context.Context, userID int64) ([]domain.Chat, error) {
	var rows []models.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Order("chats.name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	chats := make([]domain.Chat, 0, len(rows))
	for _, row := range rows {
		chats = append(chats, toDomainChat(row))
	}
	return chats, nil
}

func (r *ChatRepository) AddMember(ctx context.Context, chatID, userID int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_deleted = false", userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.NotFoundError{Resource: "user"}
	}

	member := models.ChatMember{ChatID: chatID, UserID: userID}
	err := r.db.WithContext(ctx).Create(&member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ConflictError{Field: "chat member"}
	}
	return err
}

func (r *ChatRepository) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ChatRepository) SaveMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	row := models.Message{
		ChatID:  msg.ChatID,
		UserID:  msg.UserID,
		Content: msg.Content,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Message{}, err
	}

	msg.ID = row.ID
	msg.CreatedAt = row.CreatedAt
	return msg, nil
}

func (r *ChatRepository) Messages(ctx context.Context, chatID int64, offset, limit int) ([]domain.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).Preload("User").
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, domain.Message{
			ID:        row.ID,
			ChatID:    row.ChatID,
			UserID:    row.UserID,
			Username:  row.User.Username,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}

func toDomainChat(row models.Chat) domain.Chat {
	return domain.Chat{
		ID:        row.ID,
		Name:      row.Name,
		CreatorID: row.CreatorID,
		CreatedAt: row.CreatedAt,
	}
}
