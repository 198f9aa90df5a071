// ABOUTME: Message database operations
// ABOUTME: Stores raw message objects and rebuilds them with fresh attachments

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/models"
)

// ErrMessageNotFound is returned when no message matches an id or prefix.
var ErrMessageNotFound = errors.New("message not found")

// ErrAmbiguousID is returned when an id prefix matches several messages.
var ErrAmbiguousID = errors.New("ambiguous message id")

// ImportMessage decodes a message object and stores it.
func ImportMessage(db *sql.DB, raw []byte, api attachment.API) (*models.Message, error) {
	msg, err := models.DecodeMessage(raw, api)
	if err != nil {
		return nil, err
	}
	if err := CreateMessage(db, msg, raw); err != nil {
		return nil, err
	}
	return msg, nil
}

// CreateMessage inserts a message together with the object it was decoded from.
func CreateMessage(db *sql.DB, msg *models.Message, raw []byte) error {
	_, err := db.Exec(`
		INSERT INTO messages (id, remote_id, peer_id, sender_id, text, raw, created_at, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID.String(), msg.RemoteID, msg.PeerID, msg.SenderID,
		msg.Text, string(raw), msg.CreatedAt, msg.ImportedAt)
	return err
}

// GetMessageByID retrieves a message by its UUID or a unique UUID prefix.
// Attachments are rebuilt from the stored object and fill through api.
func GetMessageByID(db *sql.DB, id string, api attachment.API) (*models.Message, error) {
	full, err := resolveID(db, id)
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT id, raw, imported_at FROM messages WHERE id = ?`, full)
	return scanMessage(row, api)
}

// resolveID expands an id prefix to the single matching id.
func resolveID(db *sql.DB, prefix string) (string, error) {
	rows, err := db.Query(`SELECT id FROM messages WHERE substr(id, 1, length(?)) = ? LIMIT 2`, prefix, prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrMessageNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: prefix '%s' matches several messages", ErrAmbiguousID, prefix)
	}
}

// ListMessages returns archived messages ordered by created_at. A zero
// peerID lists every conversation.
func ListMessages(db *sql.DB, peerID int64, api attachment.API) ([]*models.Message, error) {
	query := `SELECT id, raw, imported_at FROM messages
			  WHERE ? = 0 OR peer_id = ?
			  ORDER BY created_at ASC`

	rows, err := db.Query(query, peerID, peerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows, api)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// DeleteMessage removes a message by id or unique prefix.
func DeleteMessage(db *sql.DB, id string) error {
	full, err := resolveID(db, id)
	if err != nil {
		return err
	}
	_, err = db.Exec(`DELETE FROM messages WHERE id = ?`, full)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner, api attachment.API) (*models.Message, error) {
	var id, raw string
	var importedAt time.Time
	if err := row.Scan(&id, &raw, &importedAt); err != nil {
		return nil, err
	}

	msg, err := models.DecodeMessage([]byte(raw), api)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", id, err)
	}
	msg.ID, err = models.ParseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", id, err)
	}
	msg.ImportedAt = importedAt
	return msg, nil
}
