package vocab_test

import (
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/torflstudy/torfl/pkg/vocab"
)

var testWords = []vocab.Word{
	{ID: "w1", Ru: "привет", Ko: "안녕", ExampleRu: "Привет, как дела?"},
	{ID: "w2", Ru: "спасибо", Ko: "감사합니다", ExampleRu: "Большое спасибо за помощь."},
	{ID: "w3", Ru: "пожалуйста", Ko: "천만에요"},
	{ID: "w4", Ru: "до свидания", Ko: "안녕히 가세요"},
	{ID: "w5", Ru: "извините", Ko: "죄송합니다"},
}

func TestLoadUnit(t *testing.T) {
	fsys := fstest.MapFS{
		"unit-01.json": &fstest.MapFile{
			Data: []byte(`{"words":[{"id":"w1","ru":"привет","ko":"안녕","example_ru":"Привет!"}]}`),
		},
		"unit-02.json": &fstest.MapFile{Data: []byte(`{"words":[]}`)},
		"notes.txt":    &fstest.MapFile{Data: []byte("x")},
	}

	words, err := vocab.LoadUnit(fsys, "unit-01")
	if err != nil {
		t.Fatalf("LoadUnit: %v", err)
	}
	if len(words) != 1 || words[0].Ru != "привет" {
		t.Fatalf("words = %+v", words)
	}

	if _, err := vocab.LoadUnit(fsys, "unit-02"); err == nil {
		t.Error("empty unit should error")
	}
	if _, err := vocab.LoadUnit(fsys, "missing"); err == nil {
		t.Error("missing unit should error")
	}

	units, err := vocab.Units(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(units, []string{"unit-01", "unit-02"}) {
		t.Errorf("units = %v", units)
	}
}

func TestMultipleChoiceSession(t *testing.T) {
	s, err := vocab.NewSession(testWords, vocab.ModeMultipleChoice, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Total() != len(testWords) {
		t.Fatalf("Total = %d", s.Total())
	}

	seen := map[string]bool{}
	for !s.Finished() {
		q, err := s.Current()
		if err != nil {
			t.Fatal(err)
		}
		seen[q.Word.ID] = true

		if q.Prompt != q.Word.Ru {
			t.Errorf("prompt = %q, want russian word", q.Prompt)
		}
		if len(q.Options) != 4 {
			t.Fatalf("options = %d, want 4", len(q.Options))
		}
		if !slices.Contains(q.Options, q.Answer) {
			t.Fatalf("answer %q not among options %v", q.Answer, q.Options)
		}
		if q.Answer != q.Word.Ko {
			t.Errorf("answer = %q, want gloss", q.Answer)
		}

		ok, err := s.Answer(q.Answer)
		if err != nil || !ok {
			t.Fatalf("correct answer rejected: ok=%v err=%v", ok, err)
		}
	}
	if len(seen) != len(testWords) {
		t.Errorf("asked %d distinct words, want %d", len(seen), len(testWords))
	}
	if correct, wrong := s.Score(); correct != 5 || wrong != 0 {
		t.Errorf("score = %d/%d", correct, wrong)
	}
	if s.Percent() != 100 {
		t.Errorf("Percent = %d", s.Percent())
	}
	// 5 questions at 15 s each rounds to 1 minute.
	if s.StudyMinutes() != 1 {
		t.Errorf("StudyMinutes = %d", s.StudyMinutes())
	}
}

func TestFillBlankCaseInsensitive(t *testing.T) {
	s, err := vocab.NewSession(testWords[:1], vocab.ModeFillBlank, 7)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := s.Current()
	if !strings.Contains(q.Prompt, "______") {
		t.Errorf("example not blanked: %q", q.Prompt)
	}
	ok, err := s.Answer("  ПРИВЕТ ")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("case-insensitive trimmed answer rejected")
	}
}

func TestMatchingUsesRussianOptions(t *testing.T) {
	s, _ := vocab.NewSession(testWords, vocab.ModeMatching, 3)
	q, _ := s.Current()
	if q.Prompt != q.Word.Ko {
		t.Errorf("prompt = %q, want gloss", q.Prompt)
	}
	if q.Answer != q.Word.Ru {
		t.Errorf("answer = %q, want russian word", q.Answer)
	}
	if ok, _ := s.Answer("not an option"); ok {
		t.Error("wrong choice accepted")
	}
	if correct, wrong := s.Score(); correct != 0 || wrong != 1 {
		t.Errorf("score = %d/%d", correct, wrong)
	}
}

func TestListeningSpeaksWord(t *testing.T) {
	s, _ := vocab.NewSession(testWords[:2], vocab.ModeListening, 11)
	q, _ := s.Current()
	if q.Speak != q.Word.Ru {
		t.Errorf("Speak = %q, want %q", q.Speak, q.Word.Ru)
	}
	if len(q.Options) != 0 {
		t.Error("listening mode must not have options")
	}
}

func TestSessionShuffleIsSeeded(t *testing.T) {
	a, _ := vocab.NewSession(testWords, vocab.ModeMultipleChoice, 42)
	b, _ := vocab.NewSession(testWords, vocab.ModeMultipleChoice, 42)
	qa, _ := a.Current()
	qb, _ := b.Current()
	if qa.Word.ID != qb.Word.ID {
		t.Error("same seed produced different order")
	}
}

func TestUnknownMode(t *testing.T) {
	if _, err := vocab.NewSession(testWords, "essay", 1); err == nil {
		t.Error("unknown mode accepted")
	}
	if _, err := vocab.NewSession(nil, vocab.ModeMatching, 1); err == nil {
		t.Error("empty unit accepted")
	}
}

func TestDeckWrapAround(t *testing.T) {
	d, err := vocab.NewDeck(testWords[:3])
	if err != nil {
		t.Fatal(err)
	}
	if d.Current().ID != "w1" {
		t.Fatalf("start card = %s", d.Current().ID)
	}
	d.Flip()
	if !d.Flipped() {
		t.Error("Flip did not flip")
	}
	if d.Next().ID != "w2" {
		t.Errorf("Next = %s", d.Current().ID)
	}
	if d.Flipped() {
		t.Error("Next must reset to front side")
	}
	d.Next()
	if d.Next().ID != "w1" {
		t.Errorf("wrap forward = %s", d.Current().ID)
	}
	if d.Prev().ID != "w3" {
		t.Errorf("wrap backward = %s", d.Current().ID)
	}
	if _, err := vocab.NewDeck(nil); err == nil {
		t.Error("empty deck accepted")
	}
}
