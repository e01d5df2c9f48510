package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// fakeConversationRepo is an in-memory ConversationRepository for tests.
type fakeConversationRepo struct {
	conversations map[uint]*Conversation
	nextID        uint
	deleted       []uint
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[uint]*Conversation)}
}

func (r *fakeConversationRepo) Create(_ context.Context, c *Conversation) error {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	copied := *c
	r.conversations[c.ID] = &copied
	return nil
}

func (r *fakeConversationRepo) FindByID(_ context.Context, id uint) (*Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConversationRepo) ListByUser(_ context.Context, userID uint, _ query.Pagination) ([]*Conversation, error) {
	var out []*Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) ListAll(_ context.Context, _ query.Pagination) ([]*Conversation, error) {
	var out []*Conversation
	for _, c := range r.conversations {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id uint) error {
	delete(r.conversations, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeMessageRepo stores messages in append order; IDs are monotonic, so
// slice order matches the (created_at, id) ordering of the real repository.
type fakeMessageRepo struct {
	messages  []Message
	nextID    uint
	appendErr error
}

func (r *fakeMessageRepo) Append(_ context.Context, m *Message) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) byConversation(conversationID uint) []Message {
	var out []Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out
}

func (r *fakeMessageRepo) Newest(_ context.Context, conversationID uint, limit int) ([]Message, error) {
	msgs := r.byConversation(conversationID)
	var out []Message
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, msgs[i])
	}
	return out, nil
}

func (r *fakeMessageRepo) Page(_ context.Context, conversationID uint, p query.Pagination) ([]Message, error) {
	p = p.Normalize()
	msgs := r.byConversation(conversationID)
	var newest []Message
	for i := len(msgs) - 1; i >= 0; i-- {
		newest = append(newest, msgs[i])
	}
	start := p.Offset()
	if start >= len(newest) {
		return nil, nil
	}
	end := start + p.PageSize
	if end > len(newest) {
		end = len(newest)
	}
	return newest[start:end], nil
}

func (r *fakeMessageRepo) DeleteNewest(_ context.Context, conversationID uint, n int) error {
	for ; n > 0; n-- {
		idx := -1
		for i := len(r.messages) - 1; i >= 0; i-- {
			if r.messages[i].ConversationID == conversationID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
		r.messages = append(r.messages[:idx], r.messages[idx+1:]...)
	}
	return nil
}

func seedHistory(t *testing.T, svc *HistoryService, conversationID uint, turns int) {
	t.Helper()
	for i := 1; i <= turns; i++ {
		if err := svc.Append(context.Background(), conversationID, RoleUser, fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("seed user message: %v", err)
		}
		if err := svc.Append(context.Background(), conversationID, RoleAssistant, fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("seed assistant message: %v", err)
		}
	}
}

func newHistoryFixture(t *testing.T) (*HistoryService, *fakeConversationRepo, *fakeMessageRepo, *Conversation) {
	t.Helper()
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	svc := NewHistoryService(convRepo, msgRepo)
	conv, err := svc.Create(context.Background(), 1, "Mira_test")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return svc, convRepo, msgRepo, conv
}

func TestRecentWindowCapsAtLimit(t *testing.T) {
	svc, _, _, conv := newHistoryFixture(t)
	seedHistory(t, svc, conv.ID, 15) // 30 messages

	window, err := svc.RecentWindow(context.Background(), conv.ID, WindowLimit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(window) != WindowLimit {
		t.Fatalf("expected window of %d, got %d", WindowLimit, len(window))
	}
	// Oldest-first: the window is the final 20 of the 30 messages, so it
	// starts at turn 6's user message and ends with turn 15's reply.
	if window[0].Content != "u6" || window[0].Role != RoleUser {
		t.Fatalf("expected window to start at u6, got %s %q", window[0].Role, window[0].Content)
	}
	if window[len(window)-1].Content != "a15" || window[len(window)-1].Role != RoleAssistant {
		t.Fatalf("expected window to end at a15, got %q", window[len(window)-1].Content)
	}
}

func TestRecentWindowShortLog(t *testing.T) {
	svc, _, _, conv := newHistoryFixture(t)
	seedHistory(t, svc, conv.ID, 2)

	window, err := svc.RecentWindow(context.Background(), conv.ID, WindowLimit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(window) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(window))
	}
	want := []string{"u1", "a1", "u2", "a2"}
	for i, content := range want {
		if window[i].Content != content {
			t.Fatalf("position %d: expected %q, got %q", i, content, window[i].Content)
		}
	}
}

func TestRemoveLastTurn(t *testing.T) {
	svc, _, msgRepo, conv := newHistoryFixture(t)

	// Empty log: no-op, no error.
	if err := svc.RemoveLastTurn(context.Background(), conv.ID); err != nil {
		t.Fatalf("remove on empty log: %v", err)
	}

	// One message: removes it, no error.
	if err := svc.Append(context.Background(), conv.ID, RoleUser, "dangling"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := svc.RemoveLastTurn(context.Background(), conv.ID); err != nil {
		t.Fatalf("remove with one message: %v", err)
	}
	if len(msgRepo.byConversation(conv.ID)) != 0 {
		t.Fatalf("expected empty log, got %d messages", len(msgRepo.byConversation(conv.ID)))
	}

	// Full pair: removes exactly the last two.
	seedHistory(t, svc, conv.ID, 2)
	if err := svc.RemoveLastTurn(context.Background(), conv.ID); err != nil {
		t.Fatalf("remove full pair: %v", err)
	}
	remaining := msgRepo.byConversation(conv.ID)
	if len(remaining) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(remaining))
	}
	if remaining[1].Content != "a1" {
		t.Fatalf("expected a1 to survive, got %q", remaining[1].Content)
	}
}

func TestAppendToMissingConversation(t *testing.T) {
	svc, _, _, _ := newHistoryFixture(t)
	err := svc.Append(context.Background(), 999, RoleUser, "hello")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGetOwnedRejectsOtherUser(t *testing.T) {
	svc, _, _, conv := newHistoryFixture(t)
	_, err := svc.GetOwned(context.Background(), conv.ID, 2)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestPagedHistoryChronologicalWithinPage(t *testing.T) {
	svc, _, _, conv := newHistoryFixture(t)
	seedHistory(t, svc, conv.ID, 3) // u1 a1 u2 a2 u3 a3

	// Page 1 of size 4 holds the newest four, displayed oldest-first.
	entries, err := svc.PagedHistory(context.Background(), conv.ID, query.Pagination{PageSize: 4, PageNumber: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"u2", "a2", "u3", "a3"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, content := range want {
		if entries[i].Content != content {
			t.Fatalf("position %d: expected %q, got %q", i, content, entries[i].Content)
		}
	}

	// Page 2 holds the remainder.
	entries, err = svc.PagedHistory(context.Background(), conv.ID, query.Pagination{PageSize: 4, PageNumber: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].Content != "u1" || entries[1].Content != "a1" {
		t.Fatalf("expected [u1 a1], got %v", entries)
	}
}

func TestDeleteConversation(t *testing.T) {
	svc, convRepo, _, conv := newHistoryFixture(t)
	if err := svc.Delete(context.Background(), conv.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(convRepo.deleted) != 1 || convRepo.deleted[0] != conv.ID {
		t.Fatalf("expected conversation %d deleted, got %v", conv.ID, convRepo.deleted)
	}
	if _, err := svc.Get(context.Background(), conv.ID); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}
