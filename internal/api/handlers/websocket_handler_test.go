package handlers

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/jogivikas/skill-exchange/internal/database"
	"github.com/jogivikas/skill-exchange/internal/services"
	ws "github.com/jogivikas/skill-exchange/internal/websocket"
)

type relayFixture struct {
	handler  *WebSocketHandler
	hub      *ws.Hub
	messages *services.MessageService
	convID   string
	aliceID  string
	bobID    string
}

func newRelayFixture(t *testing.T) relayFixture {
	t.Helper()
	// Per-test file DB; see newTestDB in internal/services/testutil_test.go
	// for why ":memory:" with a single-connection pool cannot be used.
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/test.db?_pragma=busy_timeout(10000)")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := services.NewUserService(db)
	conversations := services.NewConversationService(db, users)
	messages := services.NewMessageService(db, conversations)

	alice, err := users.Register("Alice A", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bob, err := users.Register("Bob B", "bob@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	conv, _, err := conversations.GetOrCreate(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	hub := ws.NewHub()
	return relayFixture{
		handler:  NewWebSocketHandler(hub, messages),
		hub:      hub,
		messages: messages,
		convID:   conv.ID,
		aliceID:  alice.ID,
		bobID:    bob.ID,
	}
}

func frame(t *testing.T, action string, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	out, err := json.Marshal(ws.Message{Action: action, Payload: raw})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return out
}

// joinRoom drives the join through the dispatch path rather than the hub
// directly.
func (f relayFixture) joinRoom(t *testing.T, client *ws.Client) {
	t.Helper()
	f.handler.handleIncoming(client, frame(t, ws.ActionJoinConversation, ws.RoomPayload{ConversationID: f.convID}))
}

func receiveMessage(t *testing.T, client *ws.Client) ws.Message {
	t.Helper()
	select {
	case raw := <-client.Send:
		var msg ws.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal delivery: %v", err)
		}
		return msg
	default:
		t.Fatal("expected a delivery, channel empty")
		return ws.Message{}
	}
}

func assertNoDelivery(t *testing.T, client *ws.Client) {
	t.Helper()
	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected delivery: %s", raw)
	default:
	}
}

func TestRelayDeliversToRoomExcludingSender(t *testing.T) {
	f := newRelayFixture(t)

	aliceSess := ws.NewClient(f.aliceID, nil)
	bobSess := ws.NewClient(f.bobID, nil)
	f.hub.Register(aliceSess)
	f.hub.Register(bobSess)
	f.joinRoom(t, aliceSess)
	f.joinRoom(t, bobSess)

	// The payload claims another sender; the session's own identity wins.
	f.handler.handleIncoming(aliceSess, frame(t, ws.ActionSendMessage, ws.ChatPayload{
		ConversationID: f.convID,
		SenderID:       f.bobID,
		Text:           "hello",
	}))

	msg := receiveMessage(t, bobSess)
	if msg.Action != ws.ActionNewMessage {
		t.Fatalf("action = %q, want %q", msg.Action, ws.ActionNewMessage)
	}
	var payload ws.ChatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.SenderID != f.aliceID {
		t.Fatalf("senderId = %q, want the sending session's identity %q", payload.SenderID, f.aliceID)
	}
	if payload.Text != "hello" {
		t.Fatalf("text = %q", payload.Text)
	}

	assertNoDelivery(t, aliceSess)
}

func TestRelayDropsMalformedAndAnonymousFrames(t *testing.T) {
	f := newRelayFixture(t)

	aliceSess := ws.NewClient(f.aliceID, nil)
	bobSess := ws.NewClient(f.bobID, nil)
	anonSess := ws.NewClient("", nil)
	f.hub.Register(aliceSess)
	f.hub.Register(bobSess)
	f.hub.Register(anonSess)
	f.joinRoom(t, aliceSess)
	f.joinRoom(t, bobSess)

	// Undecodable frame.
	f.handler.handleIncoming(aliceSess, []byte("not json"))

	// Missing text, then missing conversation id.
	f.handler.handleIncoming(aliceSess, frame(t, ws.ActionSendMessage, ws.ChatPayload{
		ConversationID: f.convID,
	}))
	f.handler.handleIncoming(aliceSess, frame(t, ws.ActionSendMessage, ws.ChatPayload{
		Text: "hello",
	}))

	// An identity-less session cannot relay at all.
	f.handler.handleIncoming(anonSess, frame(t, ws.ActionSendMessage, ws.ChatPayload{
		ConversationID: f.convID,
		Text:           "hello",
	}))

	assertNoDelivery(t, bobSess)
	assertNoDelivery(t, aliceSess)
}

func TestSeenReceiptPersistsAndNotifiesRoom(t *testing.T) {
	f := newRelayFixture(t)

	aliceSess := ws.NewClient(f.aliceID, nil)
	bobSess := ws.NewClient(f.bobID, nil)
	f.hub.Register(aliceSess)
	f.hub.Register(bobSess)
	f.joinRoom(t, aliceSess)
	f.joinRoom(t, bobSess)

	if _, err := f.messages.Create(f.convID, f.bobID, f.aliceID, "unread"); err != nil {
		t.Fatalf("Create message: %v", err)
	}

	f.handler.handleIncoming(aliceSess, frame(t, ws.ActionMessagesSeen, ws.RoomPayload{ConversationID: f.convID}))

	history, err := f.messages.History(f.convID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || !history[0].Read {
		t.Fatalf("receipt did not persist: %+v", history)
	}

	msg := receiveMessage(t, bobSess)
	if msg.Action != ws.ActionMessagesSeen {
		t.Fatalf("action = %q, want %q", msg.Action, ws.ActionMessagesSeen)
	}
	var payload ws.SeenPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.SeenBy != f.aliceID || payload.ConversationID != f.convID {
		t.Fatalf("receipt payload = %+v", payload)
	}

	assertNoDelivery(t, aliceSess)
}

func TestUnknownActionAnswersError(t *testing.T) {
	f := newRelayFixture(t)

	sess := ws.NewClient(f.aliceID, nil)
	f.hub.Register(sess)

	f.handler.handleIncoming(sess, frame(t, "danceParty", map[string]string{}))

	msg := receiveMessage(t, sess)
	if msg.Action != ws.ActionError {
		t.Fatalf("action = %q, want %q", msg.Action, ws.ActionError)
	}
}
