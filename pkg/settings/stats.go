package settings

import (
	"time"
)

type nowFunc func() time.Time

func defaultNow() time.Time { return time.Now() }

const dateLayout = "2006-01-02"

// Stats is the accumulated study record.
type Stats struct {
	// Streak counts consecutive study days.
	Streak int `json:"streak"`

	// LastStudyDate is the last day with recorded study time,
	// formatted YYYY-MM-DD. Empty before the first session.
	LastStudyDate string `json:"lastStudyDate"`

	// TodayMinutes resets when a new day starts.
	TodayMinutes int `json:"todayMinutes"`

	TotalConversations int `json:"totalConversations"`
	WordsMastered      int `json:"wordsMastered"`

	// QuizScores holds exam result percentages, most recent last.
	QuizScores []int `json:"quizScores"`
}

// Stats returns the current record, zero-valued when nothing has been
// stored yet.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if _, err := s.getJSON(keyStats, &st); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// UpdateStats overwrites the stored record.
func (s *Store) UpdateStats(st Stats) error {
	return s.setJSON(keyStats, st)
}

// AddStudyTime credits minutes to today and maintains the streak: a
// session the day after the last one extends it, a longer gap resets
// it to 1, and further sessions on the same day only accumulate
// minutes.
func (s *Store) AddStudyTime(minutes int) (Stats, error) {
	st, err := s.Stats()
	if err != nil {
		return Stats{}, err
	}

	today := s.now().Format(dateLayout)
	if st.LastStudyDate != today {
		yesterday := s.now().AddDate(0, 0, -1).Format(dateLayout)
		if st.LastStudyDate == yesterday {
			st.Streak++
		} else {
			st.Streak = 1
		}
		st.TodayMinutes = 0
		st.LastStudyDate = today
	}
	st.TodayMinutes += minutes

	if err := s.UpdateStats(st); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// AddConversation bumps the finished-conversation counter.
func (s *Store) AddConversation() (Stats, error) {
	st, err := s.Stats()
	if err != nil {
		return Stats{}, err
	}
	st.TotalConversations++
	if err := s.UpdateStats(st); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// AddQuizScore appends an exam result percentage.
func (s *Store) AddQuizScore(percent int) (Stats, error) {
	st, err := s.Stats()
	if err != nil {
		return Stats{}, err
	}
	st.QuizScores = append(st.QuizScores, percent)
	if err := s.UpdateStats(st); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// WordProgress tracks one vocabulary item.
type WordProgress struct {
	Correct  int    `json:"correct"`
	Wrong    int    `json:"wrong"`
	LastSeen string `json:"lastSeen"`
	Mastered bool   `json:"mastered"`
}

// VocabProgress returns progress for every word seen so far, keyed by
// word id.
func (s *Store) VocabProgress() (map[string]WordProgress, error) {
	progress := map[string]WordProgress{}
	if _, err := s.getJSON(keyVocabProgress, &progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateWordProgress records one quiz answer. A word is mastered once
// it has been answered correctly three times.
func (s *Store) UpdateWordProgress(wordID string, correct bool) (WordProgress, error) {
	progress, err := s.VocabProgress()
	if err != nil {
		return WordProgress{}, err
	}
	wp := progress[wordID]
	if correct {
		wp.Correct++
	} else {
		wp.Wrong++
	}
	wp.LastSeen = s.now().UTC().Format(time.RFC3339)
	wp.Mastered = wp.Correct >= 3
	progress[wordID] = wp

	if err := s.setJSON(keyVocabProgress, progress); err != nil {
		return WordProgress{}, err
	}
	return wp, nil
}

// SetWordsMastered refreshes the dashboard counter after a quiz.
func (s *Store) SetWordsMastered(n int) error {
	st, err := s.Stats()
	if err != nil {
		return err
	}
	st.WordsMastered = n
	return s.UpdateStats(st)
}
