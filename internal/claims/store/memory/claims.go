package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"adjudicator/internal/claims/models"
	"adjudicator/pkg/platform/sentinel"
)

type ClaimStore struct {
	mu     sync.RWMutex
	claims map[uuid.UUID]*models.ClaimRecord
}

func NewClaimStore() *ClaimStore {
	return &ClaimStore{claims: make(map[uuid.UUID]*models.ClaimRecord)}
}

func (s *ClaimStore) Save(_ context.Context, record *models.ClaimRecord) error {
	if record == nil {
		return fmt.Errorf("claim record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.claims[record.ID]; exists {
		return sentinel.ErrConflict
	}
	s.claims[record.ID] = record
	return nil
}

func (s *ClaimStore) FindByID(_ context.Context, id uuid.UUID) (*models.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.claims[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record, nil
}

// ListByMember returns the member's claims, newest first.
func (s *ClaimStore) ListByMember(_ context.Context, memberID string) ([]*models.ClaimRecord, error) {
	s.mu.RLock()
	out := make([]*models.ClaimRecord, 0)
	for _, r := range s.claims {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
