package settings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// ConversationMessage is one entry in a stored transcript.
type ConversationMessage struct {
	Role    string `json:"role" msgpack:"role"`
	Content string `json:"content" msgpack:"content"`
}

// Conversation is a finished session kept for review.
type Conversation struct {
	ID        string    `json:"id" msgpack:"id"`
	StartedAt time.Time `json:"started_at" msgpack:"started_at"`
	Scenario  string    `json:"scenario" msgpack:"scenario"`
	Model     string    `json:"model" msgpack:"model"`

	Messages []ConversationMessage `json:"messages" msgpack:"messages"`

	// Evaluation is the assistant's session feedback, empty when the
	// session ended without one.
	Evaluation string `json:"evaluation" msgpack:"evaluation"`
}

// SaveConversation stores a finished session, msgpack encoded.
func (s *Store) SaveConversation(conv Conversation) error {
	if conv.ID == "" {
		return fmt.Errorf("settings: conversation id is empty")
	}
	raw, err := msgpack.Marshal(&conv)
	if err != nil {
		return fmt.Errorf("settings: encode conversation %s: %w", conv.ID, err)
	}
	return s.setRaw(convPrefix+conv.ID, raw)
}

// Conversation loads one stored session. Returns false when absent.
func (s *Store) Conversation(id string) (Conversation, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(convPrefix + id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Conversation{}, false, nil
	}
	if err != nil {
		return Conversation{}, false, fmt.Errorf("settings: get conversation %s: %w", id, err)
	}
	var conv Conversation
	if err := msgpack.Unmarshal(raw, &conv); err != nil {
		return Conversation{}, false, fmt.Errorf("settings: decode conversation %s: %w", id, err)
	}
	return conv, true, nil
}

// ConversationIDs lists stored session ids, sorted.
func (s *Store) ConversationIDs() ([]string, error) {
	var ids []string
	prefix := []byte(convPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().KeyCopy(nil))
			ids = append(ids, strings.TrimPrefix(key, convPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settings: list conversations: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
