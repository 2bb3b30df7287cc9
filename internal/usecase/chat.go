package usecase

import (
	"context"
	"log/slog"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

type ChatUsecase struct {
	repo   ChatRepository
	stream MessageStream
}

func NewChatUsecase(repo ChatRepository, stream MessageStream) *ChatUsecase {
	return &ChatUsecase{repo: repo, stream: stream}
}

func (uc *ChatUsecase) Create(ctx context.Context, actor domain.Actor, name string, memberIDs []int64) (domain.Chat, error) {
	if name == "" {
		return domain.Chat{}, domain.ValidationError{Message: "chat name is required"}
	}

	chat := domain.Chat{Name: name, CreatorID: actor.ID}
	return uc.repo.CreateChat(ctx, chat, memberIDs)
}

// List returns the chats the actor belongs to.
func (uc *ChatUsecase) List(ctx context.Context, actor domain.Actor) ([]domain.Chat, error) {
	return uc.repo.ListChats(ctx, actor.ID)
}

// Invite adds a user to a chat. Only the creator may invite.
func (uc *ChatUsecase) Invite(ctx context.Context, actor domain.Actor, chatID, userID int64) error {
	chat, err := uc.repo.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.CreatorID != actor.ID {
		return domain.ForbiddenError{Reason: "only the chat creator may invite"}
	}
	return uc.repo.AddMember(ctx, chatID, userID)
}

// Send persists the message, then fans it out. Stream failures are logged
// and swallowed: the message is already durable and readers will see it
// from the store.
func (uc *ChatUsecase) Send(ctx context.Context, actor domain.Actor, chatID int64, content string) (domain.Message, error) {
	if content == "" {
		return domain.Message{}, domain.ValidationError{Message: "message content is required"}
	}

	member, err := uc.repo.IsMember(ctx, chatID, actor.ID)
	if err != nil {
		return domain.Message{}, err
	}
	if !member {
		return domain.Message{}, domain.ForbiddenError{Reason: "not a member of this chat"}
	}

	msg := domain.Message{
		ChatID:   chatID,
		UserID:   actor.ID,
		Username: actor.Username,
		Content:  content,
	}
	saved, err := uc.repo.SaveMessage(ctx, msg)
	if err != nil {
		return domain.Message{}, err
	}

	if err := uc.stream.Publish(ctx, saved); err != nil {
		slog.WarnContext(ctx, "message fan-out failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
			slog.String("module", "chat"),
		)
	}
	return saved, nil
}

func (uc *ChatUsecase) Messages(ctx context.Context, actor domain.Actor, chatID int64, offset, limit int) ([]domain.Message, error) {
	member, err := uc.repo.IsMember(ctx, chatID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ForbiddenError{Reason: "not a member of this chat"}
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// The hot tail lives in the stream's cache; fall back to the store for
	// deeper pages or when the cache is cold.
	if offset == 0 {
		if recent, err := uc.stream.Recent(ctx, chatID, limit); err == nil && len(recent) > 0 {
			return recent, nil
		}
	}
	return uc.repo.Messages(ctx, chatID, offset, limit)
}

// Member reports whether the actor belongs to the chat; the realtime
// endpoint gates subscriptions with it.
func (uc *ChatUsecase) Member(ctx context.Context, actor domain.Actor, chatID int64) (bool, error) {
	return uc.repo.IsMember(ctx, chatID, actor.ID)
}
