// Package exam runs mock exam sets (grammar, reading) and builds the
// AI explanation request for the questions a student got wrong.
package exam

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"

	"github.com/torflstudy/torfl/pkg/provider"
)

// Question is one multiple-choice exam item. Passage is optional
// reading context shown above the question.
type Question struct {
	Passage      string   `json:"passage,omitempty"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

type setDoc struct {
	Questions []Question `json:"questions"`
}

// secondsPerQuestion is the study-time estimate per answered question.
const secondsPerQuestion = 30

// LoadSet reads the first set of an exam type, "<examType>-01.json".
func LoadSet(fsys fs.FS, examType string) ([]Question, error) {
	name := examType + "-01.json"
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("exam: load %s: %w", name, err)
	}
	var doc setDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("exam: parse %s: %w", name, err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("exam: %s has no questions", name)
	}
	for i, q := range doc.Questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("exam: %s question %d: correctIndex %d out of range", name, i, q.CorrectIndex)
		}
	}
	return doc.Questions, nil
}

// Answer records one response.
type Answer struct {
	QuestionIndex int
	Selected      int
	Correct       int
	IsCorrect     bool
}

// Session is one sequential run through a question set. Not safe for
// concurrent use.
type Session struct {
	questions []Question
	idx       int
	answers   []Answer
}

// NewSession starts an exam over the set in its given order.
func NewSession(questions []Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, errors.New("exam: no questions")
	}
	return &Session{questions: questions}, nil
}

// Finished reports whether every question has been answered.
func (s *Session) Finished() bool { return s.idx >= len(s.questions) }

// Total returns the number of questions.
func (s *Session) Total() int { return len(s.questions) }

// Asked returns how many questions have been answered.
func (s *Session) Asked() int { return s.idx }

// Current returns the question to answer next.
func (s *Session) Current() (Question, error) {
	if s.Finished() {
		return Question{}, errors.New("exam: session finished")
	}
	return s.questions[s.idx], nil
}

// Answer records the selected option index and advances.
func (s *Session) Answer(selected int) (bool, error) {
	q, err := s.Current()
	if err != nil {
		return false, err
	}
	if selected < 0 || selected >= len(q.Options) {
		return false, fmt.Errorf("exam: option %d out of range", selected)
	}
	ok := selected == q.CorrectIndex
	s.answers = append(s.answers, Answer{
		QuestionIndex: s.idx,
		Selected:      selected,
		Correct:       q.CorrectIndex,
		IsCorrect:     ok,
	})
	s.idx++
	return ok, nil
}

// Answers returns the responses recorded so far.
func (s *Session) Answers() []Answer {
	out := make([]Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// Score returns correct count and total answered.
func (s *Session) Score() (correct, total int) {
	for _, a := range s.answers {
		if a.IsCorrect {
			correct++
		}
	}
	return correct, len(s.answers)
}

// Percent returns the result percentage, rounded.
func (s *Session) Percent() int {
	correct, total := s.Score()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// StudyMinutes estimates study time for the answered questions.
func (s *Session) StudyMinutes() int {
	return int(math.Round(float64(len(s.answers)*secondsPerQuestion) / 60))
}

// explainerPrompt pins the explanation style: Korean commentary with
// Russian examples.
const explainerPrompt = "Ты — преподаватель РКИ. Объясни ошибки студента. Отвечай на корейском с примерами на русском."

// WrongDigest lists every missed question with the chosen and correct
// options, one block per question. Empty when everything was correct.
func (s *Session) WrongDigest() string {
	var blocks []string
	for _, a := range s.answers {
		if a.IsCorrect {
			continue
		}
		q := s.questions[a.QuestionIndex]
		blocks = append(blocks, fmt.Sprintf("문제: %s\n학생 답: %s\n정답: %s",
			q.Question, q.Options[a.Selected], q.Options[a.Correct]))
	}
	return strings.Join(blocks, "\n\n")
}

// ErrAllCorrect signals that an explanation was requested but there
// is nothing to explain; no chat call should be made.
var ErrAllCorrect = errors.New("exam: all answers correct")

// ExplanationMessages builds the chat request for the missed
// questions. Returns ErrAllCorrect when the digest is empty.
func (s *Session) ExplanationMessages() ([]provider.Message, error) {
	digest := s.WrongDigest()
	if digest == "" {
		return nil, ErrAllCorrect
	}
	return []provider.Message{
		{Role: provider.RoleSystem, Content: explainerPrompt},
		{
			Role:    provider.RoleUser,
			Content: "다음 틀린 문제들을 해설해줘. 왜 정답이 맞는지, 학생이 왜 틀렸을 수 있는지 설명해줘:\n\n" + digest,
		},
	}, nil
}
