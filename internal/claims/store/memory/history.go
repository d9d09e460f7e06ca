package memory

import (
	"context"
	"sync"
	"time"

	"adjudicator/internal/adjudication"
)

// HistoryStore keeps per-member claim history for the duplicate and velocity
// indicators.
type HistoryStore struct {
	mu      sync.RWMutex
	history map[string][]adjudication.PriorClaim
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{history: make(map[string][]adjudication.PriorClaim)}
}

// ListSince returns claims treated on or after since, oldest first.
func (s *HistoryStore) ListSince(_ context.Context, memberID string, since time.Time) ([]adjudication.PriorClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []adjudication.PriorClaim
	for _, pc := range s.history[memberID] {
		if !pc.TreatmentDate.Before(since) {
			out = append(out, pc)
		}
	}
	return out, nil
}

func (s *HistoryStore) Record(_ context.Context, memberID string, claim adjudication.PriorClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.history[memberID]
	i := len(list)
	for i > 0 && list[i-1].TreatmentDate.After(claim.TreatmentDate) {
		i--
	}
	list = append(list, adjudication.PriorClaim{})
	copy(list[i+1:], list[i:])
	list[i] = claim
	s.history[memberID] = list
	return nil
}
