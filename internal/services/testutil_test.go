package services

import (
	"database/sql"
	"testing"

	"github.com/jogivikas/skill-exchange/internal/database"
	"github.com/jogivikas/skill-exchange/internal/models"
)

// newTestDB opens an in-memory database with the full schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	// A per-test file keeps the schema visible across pool connections; a
	// plain ":memory:" DSN gives every pooled connection its own empty
	// database, and capping the pool at one connection deadlocks queries
	// issued while a rows cursor is still open.
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/test.db?_pragma=busy_timeout(10000)")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestUser registers an account and returns it.
func newTestUser(t *testing.T, users *UserService, name, email string) models.User {
	t.Helper()
	user, err := users.Register(name, email, "password123")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

// setSkills replaces both skill lists on a user.
func setSkills(t *testing.T, users *UserService, id string, offered, wanted []string) {
	t.Helper()
	for _, skill := range offered {
		if _, err := users.AddSkill(id, SkillListOffered, skill); err != nil {
			t.Fatalf("add offered skill %q: %v", skill, err)
		}
	}
	for _, skill := range wanted {
		if _, err := users.AddSkill(id, SkillListWanted, skill); err != nil {
			t.Fatalf("add wanted skill %q: %v", skill, err)
		}
	}
}
