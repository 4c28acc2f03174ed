package clients

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
	clients map[string]Client
	history []HistoryEntry
}

func newStubRepo() *stubRepo {
	return &stubRepo{clients: map[string]Client{}}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *stubRepo) Get(ctx context.Context, id string) (Client, error) {
	client, ok := s.clients[id]
	if !ok {
		return Client{}, shared.NewNotFound(shared.KeyNotFound)
	}
	return client, nil
}

func (s *stubRepo) ExistsCNPJ(ctx context.Context, cnpj string) (bool, error) {
	for _, client := range s.clients {
		if client.CNPJ == cnpj && client.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) Exists(ctx context.Context, id string) (bool, error) {
	client, ok := s.clients[id]
	return ok && client.DeletedAt == nil, nil
}

func (s *stubRepo) List(ctx context.Context, lq entity.ListQuery) ([]Client, int, error) {
	var out []Client
	for _, client := range s.clients {
		if client.DeletedAt == nil {
			out = append(out, client)
		}
	}
	return out, len(out), nil
}

func (s *stubRepo) Create(ctx context.Context, client Client) error {
	client.Version = 1
	s.clients[client.ID] = client
	return nil
}

func (s *stubRepo) Update(ctx context.Context, client Client) error {
	current, ok := s.clients[client.ID]
	if !ok || current.DeletedAt != nil || current.Version != client.Version {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	client.Version = current.Version + 1
	s.clients[client.ID] = client
	return nil
}

func (s *stubRepo) CheckVersion(ctx context.Context, id string, version *int) error {
	if version == nil {
		return shared.NewValidation(shared.KeyVersionRequired)
	}
	current, ok := s.clients[id]
	if ok && current.DeletedAt == nil && current.Version == *version {
		return nil
	}
	if ok && current.DeletedAt == nil {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return shared.NewNotFound(shared.KeyNotFound)
}

func (s *stubRepo) SoftDelete(ctx context.Context, id string, version int) error {
	current, ok := s.clients[id]
	if !ok || current.DeletedAt != nil || current.Version != version {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	now := time.Now()
	current.Status = entity.StatusInactive
	current.DeletedAt = &now
	current.Version++
	s.clients[id] = current
	return nil
}

func (s *stubRepo) SetStatus(ctx context.Context, id string, version int, status entity.Status) error {
	current, ok := s.clients[id]
	if !ok || current.DeletedAt != nil || current.Version != version {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	current.Status = status
	current.Version++
	s.clients[id] = current
	return nil
}

func (s *stubRepo) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	s.history = append(s.history, entry)
	return nil
}

func (s *stubRepo) ListHistory(ctx context.Context, clientID string) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for _, entry := range s.history {
		if entry.ClientID == clientID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type stubOwners struct {
	calls int
	fail  bool
}

func (s *stubOwners) CreateOwner(ctx context.Context, clientID, name, email, password string) (string, error) {
	s.calls++
	if s.fail {
		return "", shared.NewConflict(shared.KeyDuplicateEmail)
	}
	return "owner-1", nil
}

type stubSeeder struct {
	seeded []string
}

func (s *stubSeeder) Seed(ctx context.Context, clientID, name, code string) (string, error) {
	s.seeded = append(s.seeded, code)
	return "cc-" + code, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, nil, nil, nil)
}

func createRequest() CreateClientRequest {
	return CreateClientRequest{
		CNPJ:      "12345678000199",
		Name:      "Acme Ltda",
		PackageID: "0c2e46aa-65a1-4a39-9f56-8d2a3f1b0001",
	}
}

func TestCreateClientStartsPendingAtVersionOne(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	id, err := svc.Create(context.Background(), createRequest(), "actor-1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	client, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, client.Version)
	assert.Equal(t, entity.StatusPending, client.Status)

	history, err := svc.History(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, HistoryCreated, history[0].Action)
}

func TestCreateClientDuplicateCNPJ(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), createRequest(), "actor-1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createRequest(), "actor-1")
	assert.True(t, shared.IsKind(err, shared.KindConflict))
}

func TestCreateClientWithOwnerAndSeeds(t *testing.T) {
	repo := newStubRepo()
	owners := &stubOwners{}
	seeder := &stubSeeder{}
	svc := NewService(repo, owners, seeder, nil, nil)

	req := createRequest()
	req.Owner = &OwnerRequest{Name: "Owner", Email: "owner@acme.com", Password: "secret123"}
	req.CostCenters = []CostCenterSeed{{Name: "HQ", Code: "HQ"}, {Name: "Plant", Code: "PL"}}

	_, err := svc.Create(context.Background(), req, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, owners.calls)
	assert.Equal(t, []string{"HQ", "PL"}, seeder.seeded)
}

func TestUpdateClientStaleVersionConflicts(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	id, err := svc.Create(context.Background(), createRequest(), "actor-1")
	require.NoError(t, err)

	name := "Renamed"
	stale := 99
	_, err = svc.Update(context.Background(), id, UpdateClientRequest{Name: &name, Version: &stale}, "actor-1")
	assert.True(t, shared.IsKind(err, shared.KindConflict))

	current := 1
	updated, err := svc.Update(context.Background(), id, UpdateClientRequest{Name: &name, Version: &current}, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 2, updated.Version)
}

func TestUpdateClientMissingVersion(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	id, err := svc.Create(context.Background(), createRequest(), "actor-1")
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.Update(context.Background(), id, UpdateClientRequest{Name: &name}, "actor-1")
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestDeleteClientTwice(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	id, err := svc.Create(context.Background(), createRequest(), "actor-1")
	require.NoError(t, err)

	version := 1
	require.NoError(t, svc.Delete(context.Background(), id, &version, "actor-1"))

	// The row is gone from the live set, so a second delete is not found
	// regardless of the version sent.
	version = 2
	err = svc.Delete(context.Background(), id, &version, "actor-1")
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestDeletedClientStillReadableByID(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	id, err := svc.Create(context.Background(), createRequest(), "actor-1")
	require.NoError(t, err)

	version := 1
	require.NoError(t, svc.Delete(context.Background(), id, &version, "actor-1"))

	client, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInactive, client.Status)
	assert.NotNil(t, client.DeletedAt)

	page, err := svc.List(context.Background(), entity.ListQuery{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestSetActiveTogglesStatus(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	id, err := svc.Create(context.Background(), createRequest(), "actor-1")
	require.NoError(t, err)

	version := 1
	activated, err := svc.SetActive(context.Background(), id, StatusRequest{Active: true, Version: &version}, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, activated.Status)
	assert.Equal(t, 2, activated.Version)

	version = 2
	deactivated, err := svc.SetActive(context.Background(), id, StatusRequest{Active: false, Version: &version}, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInactive, deactivated.Status)

	history, err := svc.History(context.Background(), id)
	require.NoError(t, err)
	actions := make([]string, 0, len(history))
	for _, entry := range history {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, HistoryActivated)
	assert.Contains(t, actions, HistoryDeactivated)
}
