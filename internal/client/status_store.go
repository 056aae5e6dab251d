package client

import (
	"context"
	"sync"

	"github.com/justsurfingit/jobdash/internal/models"
)

// StatusState is the count of tracked jobs per status.
type StatusState struct {
	Counts   map[models.Status]int64
	Total    int64
	NewCount int64
}

// StatusStore holds the latest StatusState. It is replaced wholesale.
type StatusStore struct {
	mu    sync.RWMutex
	state StatusState
}

func NewStatusStore() *StatusStore {
	s := &StatusStore{}
	s.Replace(StatusState{})
	return s
}

// Replace swaps in st, zero-filling any status it lacks.
func (s *StatusStore) Replace(st StatusState) {
	counts := make(map[models.Status]int64, len(models.AllStatuses))
	for _, status := range models.AllStatuses {
		counts[status] = st.Counts[status]
	}
	st.Counts = counts

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *StatusStore) Snapshot() StatusState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.Counts = make(map[models.Status]int64, len(s.state.Counts))
	for k, v := range s.state.Counts {
		out.Counts[k] = v
	}
	return out
}

// Refresh fetches the counts and replaces the state. On error the previous
// state is kept.
func (s *StatusStore) Refresh(ctx context.Context, c *Client) error {
	res, err := c.StatusCounts(ctx)
	if err != nil {
		return err
	}
	st := StatusState{
		Counts:   make(map[models.Status]int64, len(res.Counts)),
		Total:    res.Total,
		NewCount: res.NewCount,
	}
	for name, n := range res.Counts {
		if status, err := models.ParseStatus(name); err == nil {
			st.Counts[status] += n
		}
	}
	s.Replace(st)
	return nil
}
