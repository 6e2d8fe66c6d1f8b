package vocab

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Mode selects how each word is tested.
type Mode string

const (
	// ModeMultipleChoice shows the Russian word, choices are glosses.
	ModeMultipleChoice Mode = "multiple-choice"

	// ModeFillBlank shows the gloss, the Russian word is typed.
	ModeFillBlank Mode = "fill-blank"

	// ModeListening plays the Russian word, it is typed back.
	ModeListening Mode = "listening"

	// ModeMatching shows the gloss, choices are Russian words.
	ModeMatching Mode = "matching"
)

// Modes returns every quiz mode.
func Modes() []Mode {
	return []Mode{ModeMultipleChoice, ModeFillBlank, ModeListening, ModeMatching}
}

// choiceCount is options per question in the choice modes: one answer
// plus three distractors when the unit is large enough.
const choiceCount = 4

// secondsPerQuestion is the study-time estimate credited per answered
// question.
const secondsPerQuestion = 15

// Question is one quiz item.
type Question struct {
	Word Word

	// Prompt is what the student sees (or hears, in listening mode).
	Prompt string

	// Options is populated in the choice modes only, answer included,
	// shuffled.
	Options []string

	// Answer is the expected answer text.
	Answer string

	// Speak is the Russian text to synthesize before asking, empty
	// when the mode has no audio.
	Speak string
}

// Session is one run through a shuffled unit. Not safe for concurrent
// use.
type Session struct {
	mode  Mode
	words []Word
	order []Word
	idx   int

	correct int
	wrong   int

	rng *rand.Rand
}

// NewSession shuffles the unit and prepares a quiz. seed fixes the
// shuffle for tests; pass a varying value otherwise.
func NewSession(words []Word, mode Mode, seed int64) (*Session, error) {
	if len(words) == 0 {
		return nil, errors.New("vocab: no words to quiz")
	}
	switch mode {
	case ModeMultipleChoice, ModeFillBlank, ModeListening, ModeMatching:
	default:
		return nil, fmt.Errorf("vocab: unknown quiz mode %q", mode)
	}
	rng := rand.New(rand.NewSource(seed))
	order := make([]Word, len(words))
	copy(order, words)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return &Session{mode: mode, words: words, order: order, rng: rng}, nil
}

// Finished reports whether every word has been asked.
func (s *Session) Finished() bool { return s.idx >= len(s.order) }

// Total returns the number of questions in the session.
func (s *Session) Total() int { return len(s.order) }

// Asked returns how many questions have been answered so far.
func (s *Session) Asked() int { return s.idx }

// Current builds the question for the current word.
func (s *Session) Current() (Question, error) {
	if s.Finished() {
		return Question{}, errors.New("vocab: session finished")
	}
	w := s.order[s.idx]
	q := Question{Word: w}
	switch s.mode {
	case ModeMultipleChoice:
		q.Prompt = w.Ru
		q.Answer = w.Ko
		q.Options = s.options(w, func(x Word) string { return x.Ko })
		q.Speak = w.Ru
	case ModeMatching:
		q.Prompt = w.Ko
		q.Answer = w.Ru
		q.Options = s.options(w, func(x Word) string { return x.Ru })
	case ModeFillBlank:
		q.Prompt = w.Ko
		if w.ExampleRu != "" {
			q.Prompt += "\n" + strings.ReplaceAll(w.ExampleRu, w.Ru, "______")
		}
		q.Answer = w.Ru
	case ModeListening:
		q.Prompt = "(듣고 입력)"
		q.Answer = w.Ru
		q.Speak = w.Ru
	}
	return q, nil
}

// options picks up to three distractors from the unit and mixes the
// answer in.
func (s *Session) options(w Word, pick func(Word) string) []string {
	others := make([]Word, 0, len(s.words)-1)
	for _, x := range s.words {
		if x.ID != w.ID {
			others = append(others, x)
		}
	}
	s.rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	if len(others) > choiceCount-1 {
		others = others[:choiceCount-1]
	}
	opts := make([]string, 0, len(others)+1)
	for _, x := range others {
		opts = append(opts, pick(x))
	}
	opts = append(opts, pick(w))
	s.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}

// Answer checks the given answer, scores it, and advances to the next
// question. Typed modes compare case-insensitively after trimming.
func (s *Session) Answer(given string) (bool, error) {
	q, err := s.Current()
	if err != nil {
		return false, err
	}
	var ok bool
	switch s.mode {
	case ModeFillBlank, ModeListening:
		ok = strings.EqualFold(strings.TrimSpace(given), q.Answer)
	default:
		ok = given == q.Answer
	}
	if ok {
		s.correct++
	} else {
		s.wrong++
	}
	s.idx++
	return ok, nil
}

// Score returns the tally so far.
func (s *Session) Score() (correct, wrong int) { return s.correct, s.wrong }

// Percent returns the correct percentage, rounded.
func (s *Session) Percent() int {
	total := s.correct + s.wrong
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(s.correct) / float64(total) * 100))
}

// StudyMinutes estimates the study time for the answered questions.
func (s *Session) StudyMinutes() int {
	total := s.correct + s.wrong
	return int(math.Round(float64(total*secondsPerQuestion) / 60))
}
