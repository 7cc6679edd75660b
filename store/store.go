package store

import (
	"context"

	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists pool state through gorm. Missing rows surface as
// gorm.ErrRecordNotFound.
type Store struct {
	db *gorm.DB
}

var _ lendingpool.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the pool tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Reserve{}, &Position{}, &Delegation{}, &Event{})
}

func (s *Store) Atomic(ctx context.Context, fn func(tx lendingpool.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) CreateReserve(ctx context.Context, reserve *lendingpool.Reserve) error {
	return s.db.WithContext(ctx).Create(newReserveModel(reserve)).Error
}

func (s *Store) UpdateReserve(ctx context.Context, reserve *lendingpool.Reserve) error {
	result := s.db.WithContext(ctx).Select("*").Updates(newReserveModel(reserve))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	// some dialects count only changed rows, so an unchanged reserve reads 0
	var m Reserve
	if err := s.db.WithContext(ctx).Select("id").Where("id = ?", reserve.Id.String()).Take(&m).Error; err != nil {
		return errors.Wrapf(err, "reserve %s", reserve.Id)
	}
	return nil
}

func (s *Store) GetReserveById(ctx context.Context, reserveId uuid.UUID) (*lendingpool.Reserve, error) {
	var m Reserve
	if err := s.db.WithContext(ctx).Where("id = ?", reserveId.String()).Take(&m).Error; err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (s *Store) FindPosition(ctx context.Context, reserveId, accountId uuid.UUID) (*lendingpool.Position, error) {
	var m Position
	err := s.db.WithContext(ctx).
		Where("reserve_id = ? AND account_id = ?", reserveId.String(), accountId.String()).
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (s *Store) UpsertPosition(ctx context.Context, position *lendingpool.Position) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(newPositionModel(position)).Error
}

func (s *Store) ListPositions(ctx context.Context, reserveId uuid.UUID) ([]*lendingpool.Position, error) {
	var models []Position
	err := s.db.WithContext(ctx).
		Where("reserve_id = ?", reserveId.String()).
		Order("created_at, account_id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	positions := make([]*lendingpool.Position, 0, len(models))
	for i := range models {
		position, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, nil
}

func (s *Store) FindDelegation(ctx context.Context, reserveId, delegator, delegatee uuid.UUID) (*lendingpool.Delegation, error) {
	var m Delegation
	err := s.db.WithContext(ctx).
		Where("reserve_id = ? AND delegator = ? AND delegatee = ?", reserveId.String(), delegator.String(), delegatee.String()).
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return m.toDomain()
}

func (s *Store) UpsertDelegation(ctx context.Context, delegation *lendingpool.Delegation) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(newDelegationModel(delegation)).Error
}

func (s *Store) ListDelegationsByDelegatee(ctx context.Context, reserveId, delegatee uuid.UUID) ([]*lendingpool.Delegation, error) {
	return s.listDelegations(ctx, "reserve_id = ? AND delegatee = ?", reserveId.String(), delegatee.String())
}

func (s *Store) ListDelegationsByDelegator(ctx context.Context, reserveId, delegator uuid.UUID) ([]*lendingpool.Delegation, error) {
	return s.listDelegations(ctx, "reserve_id = ? AND delegator = ?", reserveId.String(), delegator.String())
}

func (s *Store) listDelegations(ctx context.Context, query string, args ...any) ([]*lendingpool.Delegation, error) {
	var models []Delegation
	if err := s.db.WithContext(ctx).Where(query, args...).Order("updated_at, delegator, delegatee").Find(&models).Error; err != nil {
		return nil, err
	}

	delegations := make([]*lendingpool.Delegation, 0, len(models))
	for i := range models {
		delegation, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		delegations = append(delegations, delegation)
	}
	return delegations, nil
}

func (s *Store) CreateEvent(ctx context.Context, event *lendingpool.Event) error {
	return s.db.WithContext(ctx).Create(newEventModel(event)).Error
}

func (s *Store) ListEvents(ctx context.Context, reserveId, account uuid.UUID, action lendingpool.ActionType, createdBeforeAt, limit int64) ([]*lendingpool.Event, error) {
	tx := s.db.WithContext(ctx).Where("reserve_id = ?", reserveId.String())
	if account != uuid.Nil {
		tx = tx.Where("actor = ? OR counterparty = ?", account.String(), account.String())
	}
	if action != 0 {
		tx = tx.Where("action = ?", uint8(action))
	}
	if createdBeforeAt > 0 {
		tx = tx.Where("created_at < ?", createdBeforeAt)
	}
	if limit > 0 {
		tx = tx.Limit(int(limit))
	}

	var models []Event
	if err := tx.Order("created_at DESC, id").Find(&models).Error; err != nil {
		return nil, err
	}

	events := make([]*lendingpool.Event, 0, len(models))
	for i := range models {
		event, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
