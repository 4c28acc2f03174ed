package events

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

type stubStore struct {
	events []Event
}

func (s *stubStore) Insert(ctx context.Context, event Event) (string, error) {
	event.ID = "evt-" + strconv.Itoa(len(s.events)+1)
	event.Version = 1
	s.events = append(s.events, event)
	return event.ID, nil
}

func (s *stubStore) Get(ctx context.Context, id string) (Event, error) {
	for _, event := range s.events {
		if event.ID == id {
			return event, nil
		}
	}
	return Event{}, shared.NewNotFound(shared.KeyNotFound)
}

func (s *stubStore) List(ctx context.Context, lq entity.ListQuery) ([]Event, int, error) {
	return s.events, len(s.events), nil
}

func TestRecordAppendsEvent(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, nil)

	err := svc.Record(context.Background(), Event{
		ActorID:  "u-1",
		Action:   "CREATE",
		Entity:   "CLIENT",
		EntityID: "c-1",
	})
	require.NoError(t, err)
	require.Len(t, store.events, 1)
	assert.Equal(t, 1, store.events[0].Version)
}

func TestGetRequiresID(t *testing.T) {
	svc := NewService(&stubStore{}, nil)
	_, err := svc.Get(context.Background(), "")
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestListReturnsPageMeta(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(context.Background(), Event{Action: "CREATE", Entity: "SOURCE"}))
	}

	page, err := svc.List(context.Background(), entity.ListQuery{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.LastPage)
	assert.Len(t, page.Data, 3)
}
