// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test
// files; use setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/archivist/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedChannel inserts a test channel and returns its ID.
func seedChannel(t *testing.T, db *sql.DB, id, status string) string {
	t.Helper()
	if id == "" {
		id = "CHAN-001"
	}
	if status == "" {
		status = "open"
	}
	_, err := db.Exec("INSERT INTO channels (id, name, status) VALUES (?, ?, ?)", id, "general", status)
	if err != nil {
		t.Fatalf("failed to seed channel: %v", err)
	}
	return id
}

// seedMessages inserts count ordered user messages into a channel and
// returns their IDs. Creation timestamps advance one second per message so
// the (created_at, id) total order matches insertion order.
func seedMessages(t *testing.T, db *sql.DB, channelID string, count int) []string {
	t.Helper()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("%s-MSG-%03d", channelID, i+1)
		_, err := db.Exec(
			"INSERT INTO messages (id, channel_id, author, body, created_at) VALUES (?, ?, ?, ?, datetime('2024-03-01 09:00:00', ?))",
			id, channelID, "alice", fmt.Sprintf("message %d", i+1), fmt.Sprintf("+%d seconds", i))
		if err != nil {
			t.Fatalf("failed to seed message: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// seedTopic inserts a test topic and returns its ID.
func seedTopic(t *testing.T, db *sql.DB, id, title string) string {
	t.Helper()
	if id == "" {
		id = "TOPIC-001"
	}
	if title == "" {
		title = "Existing topic"
	}
	_, err := db.Exec("INSERT INTO topics (id, title, author, status) VALUES (?, ?, 'bob', 'open')", id, title)
	if err != nil {
		t.Fatalf("failed to seed topic: %v", err)
	}
	return id
}

// seedPost inserts a test post at the given position.
func seedPost(t *testing.T, db *sql.DB, id, topicID string, position int) string {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO posts (id, topic_id, author, body, position) VALUES (?, ?, 'bob', 'organic post', ?)",
		id, topicID, position)
	if err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return id
}

// seedMembership inserts a test membership.
func seedMembership(t *testing.T, db *sql.DB, channelID, userID string, following bool, lastRead string) {
	t.Helper()
	followingInt := 0
	if following {
		followingInt = 1
	}
	var lastReadVal any
	if lastRead != "" {
		lastReadVal = lastRead
	}
	_, err := db.Exec(
		"INSERT INTO memberships (channel_id, user_id, following, last_read_message_id) VALUES (?, ?, ?, ?)",
		channelID, userID, followingInt, lastReadVal)
	if err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}
}

// seedReaction attaches a reaction to a message.
func seedReaction(t *testing.T, db *sql.DB, id, messageID, userID, emoji string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO reactions (id, message_id, user_id, emoji) VALUES (?, ?, ?, ?)",
		id, messageID, userID, emoji)
	if err != nil {
		t.Fatalf("failed to seed reaction: %v", err)
	}
}

// seedAttachment attaches an upload to a message.
func seedAttachment(t *testing.T, db *sql.DB, id, messageID string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO attachments (id, message_id, file_name, url) VALUES (?, ?, 'notes.txt', '/uploads/notes.txt')",
		id, messageID)
	if err != nil {
		t.Fatalf("failed to seed attachment: %v", err)
	}
}

// seedArchive inserts a test archive record and returns its ID.
func seedArchive(t *testing.T, db *sql.DB, id, channelID, state string, total, archived int) string {
	t.Helper()
	if id == "" {
		id = "ARC-001"
	}
	_, err := db.Exec(
		"INSERT INTO archives (id, channel_id, initiated_by, topic_title, total_messages, archived_messages, state) VALUES (?, ?, 'alice', 'Archived: general', ?, ?, ?)",
		id, channelID, total, archived, state)
	if err != nil {
		t.Fatalf("failed to seed archive: %v", err)
	}
	return id
}
