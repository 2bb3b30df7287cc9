package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

type mockChatRepo struct {
	chat       domain.Chat
	membership map[int64][]domain.Chat
	members    map[int64]bool
	messages   []domain.Message
	added      []int64
}

func (m *mockChatRepo) CreateChat(ctx context.Context, chat domain.Chat, memberIDs []int64) (domain.Chat, error) {
	chat.ID = 1
	m.chat = chat
	return chat, nil
}

func (m *mockChatRepo) GetChat(ctx context.Context, chatID int64) (domain.Chat, error) {
	if m.chat.ID != chatID {
		return domain.Chat{}, domain.NotFoundError{Resource: "chat"}
	}
	return m.chat, nil
}

func (m *mockChatRepo) ListChats(ctx context.Context, userID int64) ([]domain.Chat, error) {
	return m.membership[userID], nil
}

func (m *mockChatRepo) AddMember(ctx context.Context, chatID, userID int64) error {
	m.added = append(m.added, userID)
	return nil
}

func (m *mockChatRepo) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	return m.members[userID], nil
}

func (m *mockChatRepo) SaveMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	msg.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *mockChatRepo) Messages(ctx context.Context, chatID int64, offset, limit int) ([]domain.Message, error) {
	return m.messages, nil
}

type mockStream struct {
	published []domain.Message
	recent    []domain.Message
	pubErr    error
}

func (m *mockStream) Publish(ctx context.Context, msg domain.Message) error {
	if m.pubErr != nil {
		return m.pubErr
	}
	m.published = append(m.published, msg)
	return nil
}

func (m *mockStream) Recent(ctx context.Context, chatID int64, limit int) ([]domain.Message, error) {
	return m.recent, nil
}

func TestChatSendRequiresMembership(t *testing.T) {
	repo := &mockChatRepo{chat: domain.Chat{ID: 1}, members: map[int64]bool{}}
	uc := NewChatUsecase(repo, &mockStream{})

	_, err := uc.Send(context.Background(), testAuthor, 1, "hello")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("rejected message must not be stored")
	}
}

func TestChatSendPersistsThenPublishes(t *testing.T) {
	repo := &mockChatRepo{chat: domain.Chat{ID: 1}, members: map[int64]bool{testAuthor.ID: true}}
	stream := &mockStream{}
	uc := NewChatUsecase(repo, stream)

	msg, err := uc.Send(context.Background(), testAuthor, 1, "hello")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if msg.ID == 0 || msg.Username != testAuthor.Username {
		t.Fatalf("unexpected saved message: %+v", msg)
	}
	if len(stream.published) != 1 || stream.published[0].ID != msg.ID {
		t.Fatalf("expected fan-out of the saved message, got %v", stream.published)
	}
}

func TestChatSendSurvivesStreamFailure(t *testing.T) {
	repo := &mockChatRepo{chat: domain.Chat{ID: 1}, members: map[int64]bool{testAuthor.ID: true}}
	uc := NewChatUsecase(repo, &mockStream{pubErr: errors.New("redis down")})

	msg, err := uc.Send(context.Background(), testAuthor, 1, "hello")
	if err != nil {
		t.Fatalf("send must survive a stream failure: %v", err)
	}
	if len(repo.messages) != 1 || repo.messages[0].ID != msg.ID {
		t.Fatalf("message must still be durable, got %v", repo.messages)
	}
}

func TestChatInviteCreatorOnly(t *testing.T) {
	repo := &mockChatRepo{chat: domain.Chat{ID: 1, CreatorID: 123}, members: map[int64]bool{}}
	uc := NewChatUsecase(repo, &mockStream{})

	if err := uc.Invite(context.Background(), testAuthor, 1, 7); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	creator := domain.Actor{ID: 123}
	if err := uc.Invite(context.Background(), creator, 1, 7); err != nil {
		t.Fatalf("creator invite failed: %v", err)
	}
	if len(repo.added) != 1 || repo.added[0] != 7 {
		t.Fatalf("expected member 7 added, got %v", repo.added)
	}
}

func TestChatListReturnsOwnMembership(t *testing.T) {
	repo := &mockChatRepo{membership: map[int64][]domain.Chat{
		testAuthor.ID: {{ID: 3, Name: "day shift"}, {ID: 1, Name: "handover"}},
		testAdmin.ID:  {{ID: 2, Name: "ops"}},
	}}
	uc := NewChatUsecase(repo, &mockStream{})

	got, err := uc.List(context.Background(), testAuthor)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("expected only the actor's chats, got %v", got)
	}
}

func TestChatMessagesPrefersHotTail(t *testing.T) {
	repo := &mockChatRepo{
		chat:     domain.Chat{ID: 1},
		members:  map[int64]bool{testAuthor.ID: true},
		messages: []domain.Message{{ID: 1, Content: "from store"}},
	}
	stream := &mockStream{recent: []domain.Message{{ID: 2, Content: "from cache"}}}
	uc := NewChatUsecase(repo, stream)

	got, err := uc.Messages(context.Background(), testAuthor, 1, 0, 50)
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if len(got) != 1 || got[0].Content != "from cache" {
		t.Fatalf("expected the cached tail at offset 0, got %v", got)
	}

	got, err = uc.Messages(context.Background(), testAuthor, 1, 10, 50)
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if len(got) != 1 || got[0].Content != "from store" {
		t.Fatalf("expected the store for deep pages, got %v", got)
	}
}
