// Package settings is the persistent local store for preferences,
// study statistics, vocabulary progress, and finished conversations.
// It is backed by BadgerDB with a flat key space; preference and
// stats values are JSON, conversation records are msgpack.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	badger "github.com/dgraph-io/badger/v4"
)

// Store keys. One value per key, all optional.
const (
	keyAPIOpenAI     = "torfl_api_openai"
	keyAPIGoogle     = "torfl_api_google"
	keySettingLLM    = "torfl_setting_llm"
	keySettingTTS    = "torfl_setting_tts"
	keySettingVoice  = "torfl_setting_tts_voice"
	keyStats         = "torfl_stats"
	keyVocabProgress = "torfl_vocab_progress"

	// Conversation records use this prefix followed by the session id.
	convPrefix = "torfl_conv_history/"
)

// Defaults applied when a preference key is absent.
const (
	DefaultChatModel = "gpt-5-mini"
	DefaultTTSModel  = "tts-1"
	DefaultVoice     = "nova"
)

// Options configures the store.
type Options struct {
	// Dir is the directory for data files. Required unless InMemory.
	Dir string

	// InMemory runs the store without disk persistence, for tests.
	InMemory bool
}

// Store is the settings database. Safe for concurrent use.
type Store struct {
	db *badger.DB

	now nowFunc
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("settings: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(quietLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("settings: open: %w", err)
	}
	return &Store{db: db, now: defaultNow}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// APIKey returns the stored credential for a vendor id, empty when
// unset.
func (s *Store) APIKey(vendor string) (string, error) {
	var key string
	ok, err := s.getJSON(vendorKey(vendor), &key)
	if err != nil || !ok {
		return "", err
	}
	return key, nil
}

func (s *Store) SetAPIKey(vendor, key string) error {
	return s.setJSON(vendorKey(vendor), key)
}

func (s *Store) HasAPIKey(vendor string) bool {
	key, err := s.APIKey(vendor)
	return err == nil && key != ""
}

func vendorKey(vendor string) string {
	if vendor == "google" {
		return keyAPIGoogle
	}
	return keyAPIOpenAI
}

// ChatModel returns the selected chat model.
func (s *Store) ChatModel() (string, error) {
	return s.pref(keySettingLLM, DefaultChatModel)
}

func (s *Store) SetChatModel(model string) error {
	return s.setJSON(keySettingLLM, model)
}

// TTSModel returns the selected synthesis model.
func (s *Store) TTSModel() (string, error) {
	return s.pref(keySettingTTS, DefaultTTSModel)
}

func (s *Store) SetTTSModel(model string) error {
	return s.setJSON(keySettingTTS, model)
}

// Voice returns the selected synthesis voice.
func (s *Store) Voice() (string, error) {
	return s.pref(keySettingVoice, DefaultVoice)
}

func (s *Store) SetVoice(voice string) error {
	return s.setJSON(keySettingVoice, voice)
}

func (s *Store) pref(key, fallback string) (string, error) {
	var v string
	ok, err := s.getJSON(key, &v)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return fallback, nil
	}
	return v, nil
}

// ExportAll decodes every preference and stats key into one document.
// Conversation records are included as a count, not bodies.
func (s *Store) ExportAll() (map[string]any, error) {
	out := map[string]any{}
	for _, key := range []string{
		keyAPIOpenAI, keyAPIGoogle,
		keySettingLLM, keySettingTTS, keySettingVoice,
		keyStats, keyVocabProgress,
	} {
		var v any
		ok, err := s.getJSON(key, &v)
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = v
		}
	}
	ids, err := s.ConversationIDs()
	if err != nil {
		return nil, err
	}
	out["torfl_conv_history"] = len(ids)
	return out, nil
}

// ResetStudyData removes stats, vocabulary progress, and conversation
// records. Credentials and model preferences are kept.
func (s *Store) ResetStudyData() error {
	if err := s.deleteKeys(keyStats, keyVocabProgress); err != nil {
		return err
	}
	ids, err := s.ConversationIDs()
	if err != nil {
		return err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = convPrefix + id
	}
	return s.deleteKeys(keys...)
}

// ResetAll wipes the store completely.
func (s *Store) ResetAll() error {
	return s.db.DropAll()
}

func (s *Store) getJSON(key string, out any) (bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("settings: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("settings: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode %s: %w", key, err)
	}
	return s.setRaw(key, raw)
}

func (s *Store) setRaw(key string, raw []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("settings: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteKeys(keys ...string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
}

// quietLogger suppresses badger's info and debug output.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { log.Printf("[badger] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) { log.Printf("[badger] WARN: "+f, v...) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}
