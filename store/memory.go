package store

import (
	"context"
	"sort"
	"sync"

	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type (
	positionKey struct {
		reserveId uuid.UUID
		accountId uuid.UUID
	}

	delegationKey struct {
		reserveId uuid.UUID
		delegator uuid.UUID
		delegatee uuid.UUID
	}

	memoryData struct {
		reserves    map[uuid.UUID]*lendingpool.Reserve
		positions   map[positionKey]*lendingpool.Position
		delegations map[delegationKey]*lendingpool.Delegation
		events      []*lendingpool.Event
	}
)

// MemoryStore keeps pool state in maps. It hands out and stores clones, so
// callers never share state with it.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *memoryData
}

var _ lendingpool.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

func newMemoryData() *memoryData {
	return &memoryData{
		reserves:    map[uuid.UUID]*lendingpool.Reserve{},
		positions:   map[positionKey]*lendingpool.Position{},
		delegations: map[delegationKey]*lendingpool.Delegation{},
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for k, v := range d.reserves {
		c.reserves[k] = v.Clone()
	}
	for k, v := range d.positions {
		c.positions[k] = v.Clone()
	}
	for k, v := range d.delegations {
		c.delegations[k] = v.Clone()
	}
	c.events = append(c.events, d.events...)
	return c
}

// Atomic runs fn on a copy of the data and swaps it in only on success.
// Atomic calls are serialized with each other.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx lendingpool.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	tx := &MemoryStore{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) CreateReserve(ctx context.Context, reserve *lendingpool.Reserve) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.reserves[reserve.Id]; ok {
		return gorm.ErrDuplicatedKey
	}
	s.data.reserves[reserve.Id] = reserve.Clone()
	return nil
}

func (s *MemoryStore) UpdateReserve(ctx context.Context, reserve *lendingpool.Reserve) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.reserves[reserve.Id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.data.reserves[reserve.Id] = reserve.Clone()
	return nil
}

func (s *MemoryStore) GetReserveById(ctx context.Context, reserveId uuid.UUID) (*lendingpool.Reserve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reserve, ok := s.data.reserves[reserveId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reserve.Clone(), nil
}

func (s *MemoryStore) FindPosition(ctx context.Context, reserveId, accountId uuid.UUID) (*lendingpool.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position, ok := s.data.positions[positionKey{reserveId, accountId}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return position.Clone(), nil
}

func (s *MemoryStore) UpsertPosition(ctx context.Context, position *lendingpool.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.positions[positionKey{position.ReserveId, position.AccountId}] = position.Clone()
	return nil
}

func (s *MemoryStore) ListPositions(ctx context.Context, reserveId uuid.UUID) ([]*lendingpool.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := []*lendingpool.Position{}
	for k, v := range s.data.positions {
		if k.reserveId == reserveId {
			positions = append(positions, v.Clone())
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].CreatedAt != positions[j].CreatedAt {
			return positions[i].CreatedAt < positions[j].CreatedAt
		}
		return positions[i].AccountId.String() < positions[j].AccountId.String()
	})
	return positions, nil
}

func (s *MemoryStore) FindDelegation(ctx context.Context, reserveId, delegator, delegatee uuid.UUID) (*lendingpool.Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	delegation, ok := s.data.delegations[delegationKey{reserveId, delegator, delegatee}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return delegation.Clone(), nil
}

func (s *MemoryStore) UpsertDelegation(ctx context.Context, delegation *lendingpool.Delegation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.delegations[delegationKey{delegation.ReserveId, delegation.Delegator, delegation.Delegatee}] = delegation.Clone()
	return nil
}

func (s *MemoryStore) ListDelegationsByDelegatee(ctx context.Context, reserveId, delegatee uuid.UUID) ([]*lendingpool.Delegation, error) {
	return s.listDelegations(func(k delegationKey) bool {
		return k.reserveId == reserveId && k.delegatee == delegatee
	}), nil
}

func (s *MemoryStore) ListDelegationsByDelegator(ctx context.Context, reserveId, delegator uuid.UUID) ([]*lendingpool.Delegation, error) {
	return s.listDelegations(func(k delegationKey) bool {
		return k.reserveId == reserveId && k.delegator == delegator
	}), nil
}

func (s *MemoryStore) listDelegations(match func(delegationKey) bool) []*lendingpool.Delegation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	delegations := []*lendingpool.Delegation{}
	for k, v := range s.data.delegations {
		if match(k) {
			delegations = append(delegations, v.Clone())
		}
	}
	sort.Slice(delegations, func(i, j int) bool {
		a, b := delegations[i], delegations[j]
		if a.UpdatedAt != b.UpdatedAt {
			return a.UpdatedAt < b.UpdatedAt
		}
		if a.Delegator != b.Delegator {
			return a.Delegator.String() < b.Delegator.String()
		}
		return a.Delegatee.String() < b.Delegatee.String()
	})
	return delegations
}

func (s *MemoryStore) CreateEvent(ctx context.Context, event *lendingpool.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *event
	e.Amount = lendingpool.CloneAmount(event.Amount)
	s.data.events = append(s.data.events, &e)
	return nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, reserveId, account uuid.UUID, action lendingpool.ActionType, createdBeforeAt, limit int64) ([]*lendingpool.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []*lendingpool.Event{}
	// newest first
	for i := len(s.data.events) - 1; i >= 0; i-- {
		e := s.data.events[i]
		if e.ReserveId != reserveId {
			continue
		}
		if account != uuid.Nil && e.Actor != account && e.Counterparty != account {
			continue
		}
		if action != 0 && e.Action != action {
			continue
		}
		if createdBeforeAt > 0 && e.CreatedAt >= createdBeforeAt {
			continue
		}
		c := *e
		c.Amount = lendingpool.CloneAmount(e.Amount)
		events = append(events, &c)
		if limit > 0 && int64(len(events)) >= limit {
			break
		}
	}
	return events, nil
}
