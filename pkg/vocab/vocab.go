// Package vocab loads vocabulary units and runs word quizzes and
// flashcard decks over them.
package vocab

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Word is one vocabulary item.
type Word struct {
	ID string `json:"id"`

	// Ru is the Russian word, Ko its Korean gloss.
	Ru string `json:"ru"`
	Ko string `json:"ko"`

	// ExampleRu is an optional usage sentence containing Ru.
	ExampleRu string `json:"example_ru,omitempty"`
}

// unitDoc is the on-disk unit shape.
type unitDoc struct {
	Words []Word `json:"words"`
}

// LoadUnit reads "<unitID>.json" from fsys and returns its words.
func LoadUnit(fsys fs.FS, unitID string) ([]Word, error) {
	raw, err := fs.ReadFile(fsys, unitID+".json")
	if err != nil {
		return nil, fmt.Errorf("vocab: load unit %s: %w", unitID, err)
	}
	var doc unitDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("vocab: parse unit %s: %w", unitID, err)
	}
	if len(doc.Words) == 0 {
		return nil, fmt.Errorf("vocab: unit %s has no words", unitID)
	}
	return doc.Words, nil
}

// Units lists the unit ids available in fsys, sorted.
func Units(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("vocab: list units: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
