// Package memory holds map-backed claim stores for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"adjudicator/internal/adjudication"
	"adjudicator/pkg/platform/sentinel"
)

// MemberStore keeps member snapshots keyed by member ID.
type MemberStore struct {
	mu      sync.RWMutex
	members map[string]adjudication.Member
}

func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[string]adjudication.Member)}
}

// Put inserts or replaces a member.
func (s *MemberStore) Put(_ context.Context, m adjudication.Member) error {
	if m.ID == "" {
		return fmt.Errorf("member id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.PriorClaims = append([]adjudication.PriorClaim(nil), m.PriorClaims...)
	s.members[m.ID] = m
	return nil
}

// FindByID returns a copy so callers cannot mutate stored state.
func (s *MemberStore) FindByID(_ context.Context, memberID string) (*adjudication.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	m.PriorClaims = append([]adjudication.PriorClaim(nil), m.PriorClaims...)
	return &m, nil
}

func (s *MemberStore) AddYTD(_ context.Context, memberID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return sentinel.ErrNotFound
	}
	m.YTDClaims += amount
	s.members[memberID] = m
	return nil
}
