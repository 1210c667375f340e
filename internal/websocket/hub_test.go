package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestClient(userID string) *Client {
	return NewClient(userID, nil)
}

func TestRegisterTracksUserSessions(t *testing.T) {
	hub := NewHub()

	first := newTestClient("user-1")
	second := newTestClient("user-1")
	anon := newTestClient("")

	hub.Register(first)
	hub.Register(second)
	hub.Register(anon)

	if !hub.IsOnline("user-1") {
		t.Fatal("user-1 should be online")
	}
	if hub.IsOnline("") {
		t.Fatal("anonymous sessions must not appear in the user directory")
	}

	// The user stays online until the last session disconnects.
	hub.Unregister(first)
	if !hub.IsOnline("user-1") {
		t.Fatal("user-1 went offline with a session still open")
	}
	hub.Unregister(second)
	if hub.IsOnline("user-1") {
		t.Fatal("user-1 still online after last session closed")
	}
}

func TestJoinRoomRequiresIdentity(t *testing.T) {
	hub := NewHub()

	anon := newTestClient("")
	hub.Register(anon)
	hub.JoinRoom(anon, "conv-1")

	if hub.RoomSize("conv-1") != 0 {
		t.Fatal("anonymous session joined a room")
	}
}

func TestBroadcastToRoomExcludesSender(t *testing.T) {
	hub := NewHub()

	sender := newTestClient("user-1")
	peer := newTestClient("user-2")
	senderOtherTab := newTestClient("user-1")
	outsider := newTestClient("user-3")

	for _, c := range []*Client{sender, peer, senderOtherTab, outsider} {
		hub.Register(c)
	}
	hub.JoinRoom(sender, "conv-1")
	hub.JoinRoom(peer, "conv-1")
	hub.JoinRoom(senderOtherTab, "conv-1")
	hub.JoinRoom(outsider, "conv-other")

	payload := NewEventMessage(ActionNewMessage, map[string]string{"text": "hello"})
	hub.BroadcastToRoom("conv-1", payload, sender)

	select {
	case got := <-peer.Send:
		var msg Message
		if err := json.Unmarshal(got, &msg); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if msg.Action != ActionNewMessage {
			t.Fatalf("action = %q, want %q", msg.Action, ActionNewMessage)
		}
	default:
		t.Fatal("peer in room received nothing")
	}

	select {
	case <-senderOtherTab.Send:
		// Exclusion is per-session, so the sender's other tab does get it.
	default:
		t.Fatal("sender's second session received nothing")
	}

	select {
	case <-sender.Send:
		t.Fatal("sending session received its own broadcast")
	default:
	}

	select {
	case <-outsider.Send:
		t.Fatal("session in another room received the broadcast")
	default:
	}
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()

	member := newTestClient("user-1")
	leaver := newTestClient("user-2")
	hub.Register(member)
	hub.Register(leaver)
	hub.JoinRoom(member, "conv-1")
	hub.JoinRoom(leaver, "conv-1")

	hub.LeaveRoom(leaver, "conv-1")
	hub.BroadcastToRoom("conv-1", []byte(`{}`), nil)

	select {
	case <-leaver.Send:
		t.Fatal("session received a broadcast after leaving the room")
	default:
	}
	select {
	case <-member.Send:
	default:
		t.Fatal("remaining member received nothing")
	}
}

func TestUnregisterRemovesRoomMembership(t *testing.T) {
	hub := NewHub()

	client := newTestClient("user-1")
	hub.Register(client)
	hub.JoinRoom(client, "conv-1")

	hub.Unregister(client)
	if hub.RoomSize("conv-1") != 0 {
		t.Fatal("room still holds an unregistered session")
	}

	// Unregistering twice must not panic on the closed channel.
	hub.Unregister(client)
}

// Deliveries must not race a concurrent disconnect closing the session's
// Send channel: a peer dropping off mid-broadcast used to panic the process
// with a send on a closed channel.
func TestBroadcastDuringDisconnectChurn(t *testing.T) {
	hub := NewHub()
	const room = "conv-1"

	keep := newTestClient("user-keep")
	hub.Register(keep)
	hub.JoinRoom(keep, room)
	go func() {
		for range keep.Send {
		}
	}()

	done := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					hub.BroadcastToRoom(room, []byte(`{}`), nil)
				}
			}
		}()
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n)
			for {
				select {
				case <-done:
					return
				default:
					client := newTestClient(userID)
					hub.Register(client)
					hub.JoinRoom(client, room)
					hub.SendToUser(userID, []byte(`{}`))
					hub.Unregister(client)
				}
			}
		}(i)
	}

	time.Sleep(200 * time.Millisecond)
	close(done)
	wg.Wait()
	hub.Unregister(keep)
}

func TestSendToUserReachesAllSessions(t *testing.T) {
	hub := NewHub()

	tab1 := newTestClient("user-1")
	tab2 := newTestClient("user-1")
	other := newTestClient("user-2")
	hub.Register(tab1)
	hub.Register(tab2)
	hub.Register(other)

	hub.SendToUser("user-1", []byte(`{}`))

	for _, c := range []*Client{tab1, tab2} {
		select {
		case <-c.Send:
		default:
			t.Fatal("a session of the target user received nothing")
		}
	}
	select {
	case <-other.Send:
		t.Fatal("another user's session received the message")
	default:
	}
}
