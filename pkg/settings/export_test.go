package settings

import "time"

// SetNowFunc overrides the clock, for streak tests.
func (s *Store) SetNowFunc(f func() time.Time) { s.now = f }
