package daemon

import (
	"context"
	"errors"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/command-line-assistant/clad/internal/authz"
	"github.com/command-line-assistant/clad/internal/logging"
	"github.com/command-line-assistant/clad/internal/storage"
)

// HistoryEntry is the exported shape of a single question/response pair
// within a chat, mirroring
// original_source/dbus/structures/history.py's HistoryEntry.
type HistoryEntry struct {
	Question  string
	Response  string
	ChatName  string
	CreatedAt string
}

// HistoryService implements the `com.redhat.lightspeed.history` interface,
// transcribing original_source/dbus/interfaces/history.py's
// HistoryInterface.
type HistoryService struct {
	histories    *storage.HistoryRepository
	interactions *storage.InteractionRepository
	chats        *storage.ChatRepository
	gate         *authz.Gate
	enabled      bool
}

func newHistoryService(histories *storage.HistoryRepository, interactions *storage.InteractionRepository, chats *storage.ChatRepository, gate *authz.Gate, historyEnabled bool) *HistoryService {
	return &HistoryService{histories: histories, interactions: interactions, chats: chats, gate: gate, enabled: historyEnabled}
}

// GetHistory returns every interaction across every live chat owned by
// userID.
func (s *HistoryService) GetHistory(userID string, sender dbus.Sender) ([]HistoryEntry, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return nil, toDBusError(err)
	}
	if !s.enabled {
		return nil, toDBusError(ErrHistoryNotEnabled)
	}

	chats, err := s.chats.SelectAllByUserID(userID)
	if err != nil {
		return nil, toDBusError(err)
	}

	var entries []HistoryEntry
	for _, chat := range chats {
		chatEntries, err := s.entriesForChat(chat)
		if err != nil {
			return nil, toDBusError(err)
		}
		entries = append(entries, chatEntries...)
	}

	if len(entries) == 0 {
		return nil, toDBusError(ErrHistoryNotAvailable)
	}
	logging.Log.Infof("daemon: read full history for user %q", userID)
	return entries, nil
}

// GetFirstConversation returns the oldest interaction in fromChat.
func (s *HistoryService) GetFirstConversation(userID, fromChat string, sender dbus.Sender) ([]HistoryEntry, *dbus.Error) {
	entries, dbusErr := s.conversationForChat(userID, fromChat, sender)
	if dbusErr != nil {
		return nil, dbusErr
	}
	return entries[:1], nil
}

// GetLastConversation returns the newest interaction in fromChat.
func (s *HistoryService) GetLastConversation(userID, fromChat string, sender dbus.Sender) ([]HistoryEntry, *dbus.Error) {
	entries, dbusErr := s.conversationForChat(userID, fromChat, sender)
	if dbusErr != nil {
		return nil, dbusErr
	}
	return entries[len(entries)-1:], nil
}

// GetFilteredConversation returns every interaction in fromChat whose
// question or response contains filter.
func (s *HistoryService) GetFilteredConversation(userID, filter, fromChat string, sender dbus.Sender) ([]HistoryEntry, *dbus.Error) {
	entries, dbusErr := s.conversationForChat(userID, fromChat, sender)
	if dbusErr != nil {
		return nil, dbusErr
	}

	var filtered []HistoryEntry
	for _, e := range entries {
		if strings.Contains(e.Question, filter) || strings.Contains(e.Response, filter) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil, toDBusError(ErrHistoryNotAvailable)
	}
	return filtered, nil
}

// ClearAllHistory soft-deletes every live history owned by userID.
func (s *HistoryService) ClearAllHistory(userID string, sender dbus.Sender) *dbus.Error {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return toDBusError(err)
	}
	if !s.enabled {
		return toDBusError(ErrHistoryNotEnabled)
	}

	if err := s.histories.SoftDeleteAllByUserID(userID); err != nil {
		return toDBusError(err)
	}
	logging.Log.Audit("daemon: cleared all history for user %q", userID)
	return nil
}

// ClearHistory soft-deletes the live history belonging to fromChat.
func (s *HistoryService) ClearHistory(userID, fromChat string, sender dbus.Sender) *dbus.Error {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return toDBusError(err)
	}
	if !s.enabled {
		return toDBusError(ErrHistoryNotEnabled)
	}

	chat, err := s.chats.SelectByName(userID, fromChat)
	if err != nil {
		return toDBusError(err)
	}

	if err := s.histories.SoftDeleteByChatID(chat.ID); err != nil {
		return toDBusError(err)
	}
	logging.Log.Audit("daemon: cleared history for user %q chat %q", userID, fromChat)
	return nil
}

// WriteHistory appends a question/response pair to chatID's history,
// creating the history row if none exists yet.
func (s *HistoryService) WriteHistory(chatID, userID, question, response string, sender dbus.Sender) *dbus.Error {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return toDBusError(err)
	}
	if !s.enabled {
		return toDBusError(ErrHistoryNotEnabled)
	}

	history, err := s.histories.SelectByChatID(chatID)
	if err != nil {
		history, err = s.histories.Insert(userID, chatID)
	}
	if err != nil {
		return toDBusError(err)
	}

	if _, err := s.interactions.Insert(history.ID, question, response); err != nil {
		return toDBusError(err)
	}
	logging.Log.Audit("daemon: wrote history entry for user %q chat %q", userID, chatID)
	return nil
}

// conversationForChat resolves fromChat to its history and returns every
// interaction within it, already authorized and history-enabled-checked.
func (s *HistoryService) conversationForChat(userID, fromChat string, sender dbus.Sender) ([]HistoryEntry, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return nil, toDBusError(err)
	}
	if !s.enabled {
		return nil, toDBusError(ErrHistoryNotEnabled)
	}

	chat, err := s.chats.SelectByName(userID, fromChat)
	if err != nil {
		return nil, toDBusError(err)
	}

	entries, err := s.entriesForChat(chat)
	if err != nil {
		return nil, toDBusError(err)
	}
	if len(entries) == 0 {
		return nil, toDBusError(ErrHistoryNotAvailable)
	}
	return entries, nil
}

// entriesForChat returns chat's interactions as HistoryEntry values,
// oldest first. A chat with no live history yields an empty slice.
func (s *HistoryService) entriesForChat(chat *storage.Chat) ([]HistoryEntry, error) {
	history, err := s.histories.SelectByChatID(chat.ID)
	if errors.Is(err, storage.ErrHistoryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	interactions, err := s.interactions.SelectByHistoryID(history.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(interactions))
	for _, i := range interactions {
		entries = append(entries, HistoryEntry{
			Question:  i.Question,
			Response:  i.Response,
			ChatName:  chat.Name,
			CreatedAt: i.CreatedAt.String(),
		})
	}
	return entries, nil
}
