package services

import (
	"errors"
	"testing"
)

func newRequestFixture(t *testing.T) (*RequestService, *UserService, string, string) {
	t.Helper()
	db := newTestDB(t)
	users := NewUserService(db)
	requests := NewRequestService(db, users, NewEventService(db))

	alice := newTestUser(t, users, "Alice Sender", "alice@example.com")
	bob := newTestUser(t, users, "Bob Receiver", "bob@example.com")
	return requests, users, alice.ID, bob.ID
}

func TestCreateRequestSnapshotsSkills(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	offered := []string{"Go"}
	req, err := requests.Create(alice, bob, offered, []string{"Art"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.Status != "pending" {
		t.Fatalf("status = %q, want pending", req.Status)
	}

	// Mutating the caller's slice must not affect the stored snapshot.
	offered[0] = "Rust"
	stored, err := requests.GetRequestByID(req.ID)
	if err != nil {
		t.Fatalf("GetRequestByID: %v", err)
	}
	if stored.SkillsOffered[0] != "Go" {
		t.Fatalf("snapshot mutated: %v", stored.SkillsOffered)
	}
}

func TestCreateRequestDuplicatePending(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	if _, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"}); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("second Create err = %v, want ErrDuplicateRequest", err)
	}

	// The reverse ordered pair is unaffected.
	if _, err := requests.Create(bob, alice, []string{"Art"}, []string{"Go"}); err != nil {
		t.Fatalf("reverse pair Create: %v", err)
	}
}

func TestCreateRequestAfterTerminalStateSucceeds(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	first, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := requests.Reject(first.ID, bob); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if _, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"}); err != nil {
		t.Fatalf("Create after rejection: %v", err)
	}
}

func TestCreateRequestToSelf(t *testing.T) {
	requests, _, alice, _ := newRequestFixture(t)
	if _, err := requests.Create(alice, alice, []string{"Go"}, []string{"Art"}); !errors.Is(err, ErrSelfRequest) {
		t.Fatalf("err = %v, want ErrSelfRequest", err)
	}
}

func TestAcceptAuthorization(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	req, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Only the recipient may accept; not even the sender can.
	if _, err := requests.Accept(req.ID, alice); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Accept by sender err = %v, want ErrForbidden", err)
	}

	accepted, err := requests.Accept(req.ID, bob)
	if err != nil {
		t.Fatalf("Accept by recipient: %v", err)
	}
	if accepted.Status != "accepted" || accepted.AcceptedAt == nil {
		t.Fatalf("accepted request = %+v", accepted)
	}
}

func TestAcceptUnknownRequest(t *testing.T) {
	requests, _, _, bob := newRequestFixture(t)
	if _, err := requests.Accept("no-such-id", bob); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	req, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := requests.Accept(req.ID, bob); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if _, err := requests.Accept(req.ID, bob); !errors.Is(err, ErrRequestClosed) {
		t.Fatalf("re-Accept err = %v, want ErrRequestClosed", err)
	}
	if _, err := requests.Reject(req.ID, bob); !errors.Is(err, ErrRequestClosed) {
		t.Fatalf("Reject after accept err = %v, want ErrRequestClosed", err)
	}
}

func TestRejectStampsTimestamp(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	req, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rejected, err := requests.Reject(req.ID, bob)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != "rejected" || rejected.RejectedAt == nil || rejected.AcceptedAt != nil {
		t.Fatalf("rejected request = %+v", rejected)
	}
}

func TestListIncomingAndOutgoingEnrichment(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	if _, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	incoming, err := requests.ListIncoming(bob)
	if err != nil {
		t.Fatalf("ListIncoming: %v", err)
	}
	if len(incoming) != 1 {
		t.Fatalf("incoming = %d requests, want 1", len(incoming))
	}
	if incoming[0].FromUser == nil || incoming[0].FromUser.FullName != "Alice Sender" || incoming[0].FromUser.Initials != "AS" {
		t.Fatalf("incoming enrichment = %+v", incoming[0].FromUser)
	}

	outgoing, err := requests.ListOutgoing(alice)
	if err != nil {
		t.Fatalf("ListOutgoing: %v", err)
	}
	if len(outgoing) != 1 {
		t.Fatalf("outgoing = %d requests, want 1", len(outgoing))
	}
	if outgoing[0].ToUser == nil || outgoing[0].ToUser.FullName != "Bob Receiver" {
		t.Fatalf("outgoing enrichment = %+v", outgoing[0].ToUser)
	}

	bobOutgoing, err := requests.ListOutgoing(bob)
	if err != nil {
		t.Fatalf("ListOutgoing(bob): %v", err)
	}
	if len(bobOutgoing) != 0 {
		t.Fatalf("bob outgoing = %d requests, want 0", len(bobOutgoing))
	}
}

func TestListDropsUnresolvableCounterparty(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	requests := NewRequestService(db, users, NewEventService(db))
	bob := newTestUser(t, users, "Bob Receiver", "bob@example.com")

	// A request whose sender account no longer resolves, inserted directly.
	_, err := db.Exec(`INSERT INTO requests (id, from_user_id, to_user_id, skills_offered_json, skills_wanted_json, status)
		VALUES ('req-ghost', 'ghost-user', ?, '["Go"]', '["Art"]', 'pending')`, bob.ID)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	incoming, err := requests.ListIncoming(bob.ID)
	if err != nil {
		t.Fatalf("ListIncoming: %v", err)
	}
	if len(incoming) != 0 {
		t.Fatalf("incoming = %+v, want the ghost request dropped", incoming)
	}
}

func TestCreateRequestStorageFailureIsNotDuplicate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	requests := NewRequestService(db, users, NewEventService(db))
	alice := newTestUser(t, users, "Alice Sender", "alice@example.com")
	bob := newTestUser(t, users, "Bob Receiver", "bob@example.com")

	// Make the insert itself fail the way a broken store would.
	if _, err := db.Exec(`CREATE TRIGGER requests_write_fail BEFORE INSERT ON requests
		BEGIN SELECT RAISE(ABORT, 'disk I/O error'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	_, err := requests.Create(alice.ID, bob.ID, []string{"Go"}, []string{"Art"})
	if err == nil {
		t.Fatal("Create succeeded against a failing store")
	}
	if errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("storage failure reported as duplicate request: %v", err)
	}
}

func TestCountAccepted(t *testing.T) {
	requests, _, alice, bob := newRequestFixture(t)

	req, err := requests.Create(alice, bob, []string{"Go"}, []string{"Art"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := requests.Accept(req.ID, bob); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	count, err := requests.CountAccepted()
	if err != nil {
		t.Fatalf("CountAccepted: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
