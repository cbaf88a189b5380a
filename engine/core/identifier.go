package core

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session identifies one run of the application. Every artifact written during
// the run (log prefix, screenshots) carries its short id.
type Session struct {
	ID       uuid.UUID
	captures atomic.Uint32
}

func NewSession() *Session {
	return &Session{ID: uuid.New()}
}

// Short returns the first block of the uuid.
func (s *Session) Short() string {
	return s.ID.String()[:8]
}

// NextCaptureName returns a unique file name for the next capture of this session.
func (s *Session) NextCaptureName(prefix, ext string) string {
	n := s.captures.Add(1)
	return fmt.Sprintf("%s-%s-%03d.%s", prefix, s.Short(), n, ext)
}
