// Package client implements the unprivileged CLI driver (spec.md §4.H):
// a cobra command tree that gathers input, calls the daemon over the
// system bus, and renders the result. It is the Go analogue of
// original_source/commands/{chat,history,shell,feedback}.py plus
// dbus/client.py's DbusClient.
package client

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/command-line-assistant/clad/internal/daemon"
)

// BusClient lazily connects to the three daemon objects, mirroring
// dbus/client.py's DbusClient (one proxy per interface, built on
// first use).
type BusClient struct {
	conn *dbus.Conn

	chat    dbus.BusObject
	history dbus.BusObject
	user    dbus.BusObject
}

// NewBusClient connects to the system bus. The connection is shared by
// every proxy object.
func NewBusClient() (*BusClient, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("client: connecting to system bus: %w", err)
	}

	return &BusClient{
		conn:    conn,
		chat:    conn.Object(daemon.Namespace, "/com/redhat/lightspeed/chat"),
		history: conn.Object(daemon.Namespace, "/com/redhat/lightspeed/history"),
		user:    conn.Object(daemon.Namespace, "/com/redhat/lightspeed/user"),
	}, nil
}

// Close releases the bus connection.
func (c *BusClient) Close() error {
	return c.conn.Close()
}

func (c *BusClient) callChat(method string, store any, args ...any) error {
	return call(c.chat, daemon.Namespace+".chat", method, store, args...)
}

func (c *BusClient) callHistory(method string, store any, args ...any) error {
	return call(c.history, daemon.Namespace+".history", method, store, args...)
}

func (c *BusClient) callUser(method string, store any, args ...any) error {
	return call(c.user, daemon.Namespace+".user", method, store, args...)
}

func call(obj dbus.BusObject, iface, method string, store any, args ...any) error {
	call := obj.Call(iface+"."+method, 0, args...)
	if call.Err != nil {
		return busErrorToClient(call.Err)
	}
	if store == nil {
		return nil
	}
	return call.Store(store)
}

// GetUserId resolves effectiveUserID to this host's internal UserId.
func (c *BusClient) GetUserId(effectiveUserID int) (string, error) {
	var userID string
	err := c.callUser("GetUserId", &userID, int32(effectiveUserID))
	return userID, err
}

// GetAllChatFromUser returns every live chat owned by userID.
func (c *BusClient) GetAllChatFromUser(userID string) ([]daemon.ChatEntry, error) {
	var chats []daemon.ChatEntry
	err := c.callChat("GetAllChatFromUser", &chats, userID)
	return chats, err
}

// GetChatId resolves name to a chat id for userID.
func (c *BusClient) GetChatId(userID, name string) (string, error) {
	var id string
	err := c.callChat("GetChatId", &id, userID, name)
	return id, err
}

// CreateChat inserts a new chat for userID and returns its id.
func (c *BusClient) CreateChat(userID, name, description string) (string, error) {
	var id string
	err := c.callChat("CreateChat", &id, userID, name, description)
	return id, err
}

// DeleteChatForUser soft-deletes the chat named name for userID.
func (c *BusClient) DeleteChatForUser(userID, name string) error {
	return c.callChat("DeleteChatForUser", nil, userID, name)
}

// DeleteAllChatForUser soft-deletes every live chat for userID.
func (c *BusClient) DeleteAllChatForUser(userID string) error {
	return c.callChat("DeleteAllChatForUser", nil, userID)
}

// AskQuestion submits question on behalf of userID within chatID and
// returns the response text.
func (c *BusClient) AskQuestion(userID, chatID string, question daemon.Question) (string, error) {
	var response string
	err := c.callChat("AskQuestion", &response, userID, chatID, question)
	return response, err
}

// GetHistory, GetFirstConversation, GetLastConversation and
// GetFilteredConversation return the requested slice of history entries
// for userID.
func (c *BusClient) GetHistory(userID string) ([]daemon.HistoryEntry, error) {
	var entries []daemon.HistoryEntry
	err := c.callHistory("GetHistory", &entries, userID)
	return entries, err
}

func (c *BusClient) GetFirstConversation(userID, fromChat string) ([]daemon.HistoryEntry, error) {
	var entries []daemon.HistoryEntry
	err := c.callHistory("GetFirstConversation", &entries, userID, fromChat)
	return entries, err
}

func (c *BusClient) GetLastConversation(userID, fromChat string) ([]daemon.HistoryEntry, error) {
	var entries []daemon.HistoryEntry
	err := c.callHistory("GetLastConversation", &entries, userID, fromChat)
	return entries, err
}

func (c *BusClient) GetFilteredConversation(userID, filter, fromChat string) ([]daemon.HistoryEntry, error) {
	var entries []daemon.HistoryEntry
	err := c.callHistory("GetFilteredConversation", &entries, userID, filter, fromChat)
	return entries, err
}

// ClearAllHistory and ClearHistory soft-delete history for userID.
func (c *BusClient) ClearAllHistory(userID string) error {
	return c.callHistory("ClearAllHistory", nil, userID)
}

func (c *BusClient) ClearHistory(userID, fromChat string) error {
	return c.callHistory("ClearHistory", nil, userID, fromChat)
}

// WriteHistory appends one question/response pair to chatID's history.
func (c *BusClient) WriteHistory(chatID, userID, question, response string) error {
	return c.callHistory("WriteHistory", nil, chatID, userID, question, response)
}
