package quotes

import (
	"sync"
	"time"
)

// isoLayout is the millisecond UTC layout of dateAdded
const isoLayout = "2006-01-02T15:04:05.000Z"

// idSource hands out millisecond timestamps as ids, strictly increasing
// and above every id already present in the collection.
type idSource struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func newIDSource(now func() time.Time) *idSource {
	return &idSource{now: now}
}

// next returns a fresh id greater than both the last issued id and floor
func (s *idSource) next(floor int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	s.last = id
	return id
}

// timestamp formats t the way dateAdded is stored
func timestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
