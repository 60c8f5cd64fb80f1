// Package sqlite provides the local message-history backend: a
// SQLite-based message store and a paginated search session over it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MessageStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT NOT NULL,
	message_id      INTEGER NOT NULL,
	sender          TEXT NOT NULL,
	sent_at         INTEGER NOT NULL,
	body            TEXT NOT NULL,
	PRIMARY KEY (conversation_id, message_id)
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation_sent
	ON messages (conversation_id, sent_at DESC, message_id DESC);
CREATE TABLE IF NOT EXISTS conversation_links (
	conversation_id TEXT PRIMARY KEY,
	migrated_from   TEXT NOT NULL
);
`

// Store is a SQLite-backed message-history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) a history database at the given path.
// If path is empty, defaults to ~/.convofind/history.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".convofind", "history.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the message for a ref.
func (s *Store) Get(ctx context.Context, ref domain.MessageRef) (*domain.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT sender, sent_at, body FROM messages
		 WHERE conversation_id = ? AND message_id = ?`,
		string(ref.Conversation), int64(ref.Message))

	var (
		sender string
		sentAt int64
		body   string
	)
	if err := row.Scan(&sender, &sentAt, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting message %s: %w", ref, err)
	}

	return &domain.Message{
		Ref:    ref,
		Sender: domain.PeerID(sender),
		SentAt: time.Unix(sentAt, 0).UTC(),
		Body:   body,
	}, nil
}

// Add stores a message, replacing any previous version.
func (s *Store) Add(ctx context.Context, msg domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO messages
		 (conversation_id, message_id, sender, sent_at, body)
		 VALUES (?, ?, ?, ?, ?)`,
		string(msg.Ref.Conversation), int64(msg.Ref.Message),
		string(msg.Sender), msg.SentAt.Unix(), msg.Body)
	if err != nil {
		return fmt.Errorf("adding message %s: %w", msg.Ref, err)
	}
	return nil
}

// Conversations lists conversation ids with stored history.
func (s *Store) Conversations(ctx context.Context) ([]domain.ConversationID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT conversation_id FROM messages ORDER BY conversation_id`)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var ids []domain.ConversationID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning conversation id: %w", err)
		}
		ids = append(ids, domain.ConversationID(id))
	}
	return ids, rows.Err()
}

// SetMigratedFrom records that a conversation's history continues from
// a predecessor conversation.
func (s *Store) SetMigratedFrom(ctx context.Context, conversation, predecessor domain.ConversationID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversation_links (conversation_id, migrated_from)
		 VALUES (?, ?)`,
		string(conversation), string(predecessor))
	if err != nil {
		return fmt.Errorf("linking conversation %s: %w", conversation, err)
	}
	return nil
}

// MigratedFrom returns the predecessor conversation, if one is linked.
// Returns "" and no error when the conversation has no predecessor.
func (s *Store) MigratedFrom(ctx context.Context, conversation domain.ConversationID) (domain.ConversationID, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT migrated_from FROM conversation_links WHERE conversation_id = ?`,
		string(conversation))

	var predecessor string
	if err := row.Scan(&predecessor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("resolving predecessor of %s: %w", conversation, err)
	}
	return domain.ConversationID(predecessor), nil
}
