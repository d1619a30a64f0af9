package storage

import (
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(Config{Type: DialectSQLite, ConnectionString: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestChatRepositoryInsertAndSelect(t *testing.T) {
	e := newTestEngine(t)
	repo := NewChatRepository(e)

	chat, err := repo.Insert("user-1", "default", "first chat")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	byID, err := repo.SelectByID(chat.ID)
	if err != nil {
		t.Fatalf("SelectByID: %v", err)
	}
	if byID.Name != "default" {
		t.Errorf("SelectByID name = %q, want %q", byID.Name, "default")
	}

	byName, err := repo.SelectByName("user-1", "default")
	if err != nil {
		t.Fatalf("SelectByName: %v", err)
	}
	if byName.ID != chat.ID {
		t.Errorf("SelectByName returned a different chat")
	}
}

func TestChatRepositorySelectByIDNotFound(t *testing.T) {
	e := newTestEngine(t)
	repo := NewChatRepository(e)

	if _, err := repo.SelectByID("does-not-exist"); err != ErrChatNotFound {
		t.Errorf("SelectByID = %v, want ErrChatNotFound", err)
	}
}

func TestChatRepositorySoftDeleteHidesChat(t *testing.T) {
	e := newTestEngine(t)
	repo := NewChatRepository(e)

	chat, err := repo.Insert("user-1", "scratch", "")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.SoftDelete(chat.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if _, err := repo.SelectByID(chat.ID); err != ErrChatNotFound {
		t.Errorf("SelectByID after delete = %v, want ErrChatNotFound", err)
	}

	chats, err := repo.SelectAllByUserID("user-1")
	if err != nil {
		t.Fatalf("SelectAllByUserID: %v", err)
	}
	if len(chats) != 0 {
		t.Errorf("expected no live chats after soft delete, got %d", len(chats))
	}
}

func TestChatRepositorySelectLatestChatOrdersAscending(t *testing.T) {
	e := newTestEngine(t)
	repo := NewChatRepository(e)

	first, err := repo.Insert("user-1", "first", "")
	if err != nil {
		t.Fatalf("Insert first: %v", err)
	}
	if _, err := repo.Insert("user-1", "second", ""); err != nil {
		t.Fatalf("Insert second: %v", err)
	}

	latest, err := repo.SelectLatestChat("user-1")
	if err != nil {
		t.Fatalf("SelectLatestChat: %v", err)
	}

	// SelectLatestChat orders by created_at ascending, so it returns the
	// user's *first* chat, not their most recently created one.
	if latest.ID != first.ID {
		t.Errorf("SelectLatestChat = %s, want oldest chat %s", latest.ID, first.ID)
	}
}

func TestHistoryAndInteractionLifecycle(t *testing.T) {
	e := newTestEngine(t)
	chats := NewChatRepository(e)
	histories := NewHistoryRepository(e)
	interactions := NewInteractionRepository(e)

	chat, err := chats.Insert("user-1", "default", "")
	if err != nil {
		t.Fatalf("Insert chat: %v", err)
	}

	hist, err := histories.Insert("user-1", chat.ID)
	if err != nil {
		t.Fatalf("Insert history: %v", err)
	}

	if _, err := interactions.Insert(hist.ID, "how do I list files?", "use ls"); err != nil {
		t.Fatalf("Insert interaction: %v", err)
	}
	if _, err := interactions.Insert(hist.ID, "and hidden ones?", "ls -a"); err != nil {
		t.Fatalf("Insert second interaction: %v", err)
	}

	got, err := interactions.SelectByHistoryID(hist.ID)
	if err != nil {
		t.Fatalf("SelectByHistoryID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(got))
	}
	if got[0].Question != "how do I list files?" {
		t.Errorf("interactions not in insertion order: got %q first", got[0].Question)
	}

	byChat, err := histories.SelectByChatID(chat.ID)
	if err != nil {
		t.Fatalf("SelectByChatID: %v", err)
	}
	if byChat.ID != hist.ID {
		t.Errorf("SelectByChatID returned a different history")
	}
}

func TestHistoryRepositorySoftDeleteAllByUserID(t *testing.T) {
	e := newTestEngine(t)
	chats := NewChatRepository(e)
	histories := NewHistoryRepository(e)

	chat, err := chats.Insert("user-1", "default", "")
	if err != nil {
		t.Fatalf("Insert chat: %v", err)
	}
	if _, err := histories.Insert("user-1", chat.ID); err != nil {
		t.Fatalf("Insert history: %v", err)
	}

	if err := histories.SoftDeleteAllByUserID("user-1"); err != nil {
		t.Fatalf("SoftDeleteAllByUserID: %v", err)
	}

	if _, err := histories.SelectByChatID(chat.ID); err != ErrHistoryNotFound {
		t.Errorf("SelectByChatID after clear = %v, want ErrHistoryNotFound", err)
	}
}

func TestChatNameUniquePerLiveUser(t *testing.T) {
	e := newTestEngine(t)
	repo := NewChatRepository(e)

	if _, err := repo.Insert("user-1", "dup", ""); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	if _, err := repo.Insert("user-1", "dup", ""); err == nil {
		t.Error("expected a conflict inserting a second live chat with the same name for the same user")
	}
}
