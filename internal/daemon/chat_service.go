package daemon

import (
	"context"
	"errors"

	"github.com/godbus/dbus/v5"

	"github.com/command-line-assistant/clad/internal/authz"
	"github.com/command-line-assistant/clad/internal/llmclient"
	"github.com/command-line-assistant/clad/internal/logging"
	"github.com/command-line-assistant/clad/internal/storage"
)

// ChatEntry is the exported shape of a Chat row, mirroring
// original_source/dbus/structures/chat.py's ChatEntry.
type ChatEntry struct {
	ID          string
	Name        string
	Description string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// ChatService implements the `com.redhat.lightspeed.chat` interface,
// transcribing original_source/dbus/interfaces/chat.py's ChatInterface.
type ChatService struct {
	chats        *storage.ChatRepository
	histories    *storage.HistoryRepository
	interactions *storage.InteractionRepository
	provider     llmclient.Provider
	gate         *authz.Gate
}

func newChatService(chats *storage.ChatRepository, histories *storage.HistoryRepository, interactions *storage.InteractionRepository, provider llmclient.Provider, gate *authz.Gate) *ChatService {
	return &ChatService{chats: chats, histories: histories, interactions: interactions, provider: provider, gate: gate}
}

// GetAllChatFromUser returns every live chat owned by userID.
func (s *ChatService) GetAllChatFromUser(userID string, sender dbus.Sender) ([]ChatEntry, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return nil, toDBusError(err)
	}

	chats, err := s.chats.SelectAllByUserID(userID)
	if err != nil {
		return nil, toDBusError(err)
	}

	entries := make([]ChatEntry, 0, len(chats))
	for _, c := range chats {
		entries = append(entries, toChatEntry(c))
	}
	return entries, nil
}

// DeleteAllChatForUser soft-deletes every live chat for userID.
func (s *ChatService) DeleteAllChatForUser(userID string, sender dbus.Sender) *dbus.Error {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return toDBusError(err)
	}

	chats, err := s.chats.SelectAllByUserID(userID)
	if err != nil {
		return toDBusError(err)
	}
	if len(chats) == 0 {
		return toDBusError(storage.ErrChatNotFound)
	}

	for _, c := range chats {
		if err := s.chats.SoftDelete(c.ID); err != nil {
			return toDBusError(err)
		}
		logging.Log.Audit("daemon: deleted chat %q for user %q", c.ID, userID)
	}
	return nil
}

// DeleteChatForUser soft-deletes the single chat named `name` for userID.
func (s *ChatService) DeleteChatForUser(userID, name string, sender dbus.Sender) *dbus.Error {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return toDBusError(err)
	}

	chat, err := s.chats.SelectByName(userID, name)
	if err != nil {
		return toDBusError(err)
	}

	if err := s.chats.SoftDelete(chat.ID); err != nil {
		return toDBusError(err)
	}
	logging.Log.Audit("daemon: deleted chat %q (%q) for user %q", name, chat.ID, userID)
	return nil
}

// GetLatestChatFromUser returns the id of userID's oldest live chat (see
// ChatRepository.SelectLatestChat's Open Question decision).
func (s *ChatService) GetLatestChatFromUser(userID string, sender dbus.Sender) (string, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return "", toDBusError(err)
	}

	chat, err := s.chats.SelectLatestChat(userID)
	if err != nil {
		return "", toDBusError(err)
	}
	return chat.ID, nil
}

// IsChatAvailable reports whether a live chat named `name` exists for
// userID.
func (s *ChatService) IsChatAvailable(userID, name string, sender dbus.Sender) (bool, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return false, toDBusError(err)
	}

	_, err := s.chats.SelectByName(userID, name)
	if errors.Is(err, storage.ErrChatNotFound) {
		return false, nil
	}
	if err != nil {
		return false, toDBusError(err)
	}
	return true, nil
}

// GetChatId returns the id of the live chat named `name` for userID.
func (s *ChatService) GetChatId(userID, name string, sender dbus.Sender) (string, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return "", toDBusError(err)
	}

	chat, err := s.chats.SelectByName(userID, name)
	if err != nil {
		return "", toDBusError(err)
	}
	return chat.ID, nil
}

// CreateChat inserts a new chat for userID and returns its id.
func (s *ChatService) CreateChat(userID, name, description string, sender dbus.Sender) (string, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return "", toDBusError(err)
	}

	chat, err := s.chats.Insert(userID, name, description)
	if err != nil {
		return "", toDBusError(err)
	}
	logging.Log.Audit("daemon: created chat %q (%q) for user %q", name, chat.ID, userID)
	return chat.ID, nil
}

// Question is the wire shape a client submits to AskQuestion, mirroring
// original_source/dbus/structures/chat.py's Question and the Payload
// assembled by internal/contextassembler.
type Question struct {
	Message            string
	Stdin              string
	AttachmentContents string
	AttachmentMimetype string
	TerminalOutput     string
	SystemOS           string
	SystemVersion      string
	SystemArch         string
	SystemID           string
}

// AskQuestion submits the question to the inference client and returns
// the response text. Persistence of the exchange is a separate call the
// client makes afterwards (History.WriteHistory), keeping this method
// purely synchronous request/response — a retry-exhausted backend call
// must leave no history row behind.
func (s *ChatService) AskQuestion(userID, chatID string, question Question, sender dbus.Sender) (string, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyInternalUser(ctx, userID); err != nil {
		return "", toDBusError(err)
	}

	payload := llmclient.Payload{
		Question: question.Message,
		Stdin:    question.Stdin,
		SystemInfo: llmclient.SystemInfo{
			OS:      question.SystemOS,
			Version: question.SystemVersion,
			Arch:    question.SystemArch,
			ID:      question.SystemID,
		},
	}
	if question.AttachmentContents != "" {
		payload.Attachment = &llmclient.Attachment{Contents: question.AttachmentContents, Mimetype: question.AttachmentMimetype}
	}
	if question.TerminalOutput != "" {
		payload.Terminal = &llmclient.Terminal{Output: question.TerminalOutput}
	}

	logging.Log.Audit("daemon: submitting question from user %q", userID)
	response, err := s.provider.Submit(ctx, payload)
	if err != nil {
		recordQuestionOutcome(false)
		return "", toDBusError(err)
	}
	recordQuestionOutcome(true)

	return response, nil
}

func toChatEntry(c *storage.Chat) ChatEntry {
	deletedAt := ""
	if c.DeletedAt != nil {
		deletedAt = c.DeletedAt.String()
	}
	return ChatEntry{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.String(),
		UpdatedAt:   c.UpdatedAt.String(),
		DeletedAt:   deletedAt,
	}
}
