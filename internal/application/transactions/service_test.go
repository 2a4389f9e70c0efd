package transactions

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_AssignsIDAndStoresData(t *testing.T) {
	db := testutil.OpenDB(t)

	ev := &domain.LedgerEvent{Type: domain.EventInvest, ISAID: 1, ToPrincipal: Principal("alice.eth"), Units: 10, Amount: 5000}
	require.NoError(t, Record(db, ev, map[string]interface{}{"note": "first"}))
	assert.NotEqual(t, uuid.Nil, ev.EventID)

	var stored domain.LedgerEvent
	require.NoError(t, db.First(&stored, "event_id = ?", ev.EventID).Error)
	assert.Equal(t, int64(10), stored.Units)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.EventData, &data))
	assert.Equal(t, "first", data["note"])
}

func TestViewEvents(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	events := []*domain.LedgerEvent{
		{Type: domain.EventCreate, ISAID: 1, ToPrincipal: Principal("student.one"), CreatedAt: base},
		{Type: domain.EventInvest, ISAID: 1, ToPrincipal: Principal("alice.eth"), Units: 100, CreatedAt: base.Add(time.Minute)},
		{Type: domain.EventTransfer, ISAID: 1, FromPrincipal: Principal("alice.eth"), ToPrincipal: Principal("bob.eth"), Units: 40, CreatedAt: base.Add(2 * time.Minute)},
		{Type: domain.EventInvest, ISAID: 2, ToPrincipal: Principal("bob.eth"), Units: 5, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, ev := range events {
		require.NoError(t, Record(db, ev, nil))
	}

	isaEvents, err := svc.ViewISAEvents(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, isaEvents, 3)
	assert.Equal(t, domain.EventTransfer, isaEvents[0].Type)
	assert.Equal(t, domain.EventCreate, isaEvents[2].Type)

	limited, err := svc.ViewISAEvents(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	alice, err := svc.ViewPrincipalEvents(ctx, "alice.eth", 50)
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	bob, err := svc.ViewPrincipalEvents(ctx, "bob.eth", 50)
	require.NoError(t, err)
	require.Len(t, bob, 2)
	assert.Equal(t, uint64(2), bob[0].ISAID)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, clampLimit(0))
	assert.Equal(t, 100, clampLimit(-3))
	assert.Equal(t, 100, clampLimit(500))
	assert.Equal(t, 25, clampLimit(25))
}
