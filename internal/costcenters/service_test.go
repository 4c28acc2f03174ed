package costcenters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

type stubRepo struct {
	costCenters map[string]CostCenter
}

func newStubRepo() *stubRepo {
	return &stubRepo{costCenters: map[string]CostCenter{}}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *stubRepo) Get(ctx context.Context, id string) (CostCenter, error) {
	cc, ok := s.costCenters[id]
	if !ok {
		return CostCenter{}, shared.NewNotFound(shared.KeyNotFound)
	}
	return cc, nil
}

func (s *stubRepo) ExistsCode(ctx context.Context, clientID, code string) (bool, error) {
	for _, cc := range s.costCenters {
		if cc.ClientID == clientID && cc.Code == code && cc.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) List(ctx context.Context, lq entity.ListQuery) ([]CostCenter, int, error) {
	var out []CostCenter
	for _, cc := range s.costCenters {
		if cc.DeletedAt == nil {
			out = append(out, cc)
		}
	}
	return out, len(out), nil
}

func (s *stubRepo) Create(ctx context.Context, cc CostCenter) error {
	cc.Version = 1
	s.costCenters[cc.ID] = cc
	return nil
}

func (s *stubRepo) Update(ctx context.Context, cc CostCenter) error {
	current, ok := s.costCenters[cc.ID]
	if !ok || current.DeletedAt != nil || current.Version != cc.Version {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	cc.Version = current.Version + 1
	s.costCenters[cc.ID] = cc
	return nil
}

func (s *stubRepo) CheckVersion(ctx context.Context, id string, version *int) error {
	if version == nil {
		return shared.NewValidation(shared.KeyVersionRequired)
	}
	current, ok := s.costCenters[id]
	if ok && current.DeletedAt == nil && current.Version == *version {
		return nil
	}
	if ok && current.DeletedAt == nil {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return shared.NewNotFound(shared.KeyNotFound)
}

func (s *stubRepo) SoftDelete(ctx context.Context, id string, version int) error {
	current, ok := s.costCenters[id]
	if !ok || current.DeletedAt != nil || current.Version != version {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	now := time.Now()
	current.Status = entity.StatusInactive
	current.DeletedAt = &now
	current.Version++
	s.costCenters[id] = current
	return nil
}

func TestSeedCreatesActiveCostCenter(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, nil)

	id, err := svc.Seed(context.Background(), "client-1", "Headquarters", "HQ")
	require.NoError(t, err)

	cc, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, cc.Status)
	assert.Equal(t, "client-1", cc.ClientID)
	assert.Equal(t, "HQ", cc.Code)
}

func TestSeedDuplicateCode(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Seed(context.Background(), "client-1", "Headquarters", "HQ")
	require.NoError(t, err)

	_, err = svc.Seed(context.Background(), "client-1", "Head Office", "HQ")
	assert.True(t, shared.IsKind(err, shared.KindConflict))
}

func TestUpdateCostCenterCodeCollision(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Seed(context.Background(), "client-1", "Headquarters", "HQ")
	require.NoError(t, err)
	id, err := svc.Seed(context.Background(), "client-1", "Plant", "PL")
	require.NoError(t, err)

	version := 1
	code := "HQ"
	_, err = svc.Update(context.Background(), id, UpdateCostCenterRequest{Code: &code, Version: &version}, "actor-1")
	assert.True(t, shared.IsKind(err, shared.KindConflict))
}
