// ABOUTME: Tests for message database operations
// ABOUTME: Verifies import, lookup by prefix, listing and deletion

package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harper/vkattach/internal/attachment"
)

const sampleMessage = `{
	"id": 101,
	"conversation_message_id": 7,
	"peer_id": 2000000001,
	"from_id": 42,
	"date": 1700000000,
	"text": "look",
	"attachments": [
		{"type": "photo", "photo": {"id": 2, "owner_id": -1, "access_key": "k"}},
		{"type": "sticker", "sticker": {"sticker_id": 5}}
	],
	"fwd_messages": [
		{"from_id": 43, "date": 1699999999, "text": "fwd",
		 "attachments": [{"type": "graffiti", "graffiti": {"id": 3, "owner_id": 43, "url": "http://g"}}]}
	]
}`

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestImportMessage(t *testing.T) {
	db := testDB(t)

	msg, err := ImportMessage(db, []byte(sampleMessage), nil)
	if err != nil {
		t.Fatalf("ImportMessage failed: %v", err)
	}

	got, err := GetMessageByID(db, msg.ID.String()[:8], nil)
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if got.ID != msg.ID {
		t.Errorf("expected id %s, got %s", msg.ID, got.ID)
	}
	if got.Text != "look" || got.RemoteID != 101 || got.PeerID != 2000000001 {
		t.Errorf("unexpected message %+v", got)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(got.Attachments))
	}
	if got.Attachments[0].IsFilled() {
		t.Error("stored partial photo should come back partial")
	}
	if got.Forwards.Len() != 1 {
		t.Fatalf("expected 1 forward, got %d", got.Forwards.Len())
	}
	if !got.HasAllAttachments(attachment.KindGraffiti) {
		t.Error("expected graffiti among forwarded attachments")
	}
}

func TestImportMessageInvalid(t *testing.T) {
	db := testDB(t)

	if _, err := ImportMessage(db, []byte("{not json"), nil); err == nil {
		t.Error("expected decode error")
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected no rows, got %d", count)
	}
}

func TestGetMessageNotFound(t *testing.T) {
	db := testDB(t)

	_, err := GetMessageByID(db, "deadbeef", nil)
	if !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestListMessages(t *testing.T) {
	db := testDB(t)

	raws := []string{
		`{"id": 1, "peer_id": 10, "date": 300, "text": "third"}`,
		`{"id": 2, "peer_id": 10, "date": 100, "text": "first"}`,
		`{"id": 3, "peer_id": 20, "date": 200, "text": "other"}`,
	}
	for _, raw := range raws {
		if _, err := ImportMessage(db, []byte(raw), nil); err != nil {
			t.Fatalf("ImportMessage failed: %v", err)
		}
	}

	all, err := ListMessages(db, 0, nil)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}
	if all[0].Text != "first" || all[2].Text != "third" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Text, all[1].Text, all[2].Text)
	}

	peer, err := ListMessages(db, 10, nil)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(peer) != 2 {
		t.Errorf("expected 2 messages for peer 10, got %d", len(peer))
	}
}

func TestDeleteMessage(t *testing.T) {
	db := testDB(t)

	msg, err := ImportMessage(db, []byte(sampleMessage), nil)
	if err != nil {
		t.Fatalf("ImportMessage failed: %v", err)
	}

	if err := DeleteMessage(db, msg.ID.String()); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	if _, err := GetMessageByID(db, msg.ID.String(), nil); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected deleted message to be gone, got %v", err)
	}
	if err := DeleteMessage(db, msg.ID.String()); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound on second delete, got %v", err)
	}
}

func TestGetMessageAmbiguousPrefix(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 2; i++ {
		if _, err := ImportMessage(db, []byte(sampleMessage), nil); err != nil {
			t.Fatalf("ImportMessage failed: %v", err)
		}
	}

	_, err := GetMessageByID(db, "", nil)
	if !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("expected ErrAmbiguousID, got %v", err)
	}
}
