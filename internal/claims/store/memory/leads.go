package memory

import (
	"context"
	"fmt"
	"sync"

	"adjudicator/internal/claims/models"
)

type LeadStore struct {
	mu    sync.RWMutex
	leads []*models.LeadRecord
}

func NewLeadStore() *LeadStore {
	return &LeadStore{}
}

func (s *LeadStore) Save(_ context.Context, lead *models.LeadRecord) error {
	if lead == nil {
		return fmt.Errorf("lead is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

// List returns captured leads in capture order.
func (s *LeadStore) List(_ context.Context) ([]*models.LeadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.LeadRecord{}, s.leads...), nil
}
