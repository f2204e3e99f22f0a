// ABOUTME: Tests for the fallback orchestrator
// ABOUTME: Transport failures flip the mode; legitimate absence never does
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/remote"
	"github.com/fieldfolio/fieldfolio/store"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.SetAccount("test-account")

	engine := local.NewEngine(s, audit.NewTrail(s))
	gw := remote.NewGateway(server.URL, "anon-key")
	return NewService(gw, engine), server
}

func TestRemoteFirstListRefreshesReplica(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"id":"c1","name":"Acme Ltd"}]}`))
	}))

	clients := svc.Clients(context.Background())
	require.Len(t, clients, 1)
	assert.Equal(t, "Acme Ltd", clients[0].Name)
	assert.False(t, svc.UsingLocalFallback())

	// The confirmed remote read must land in the replica.
	cached := store.List[models.Client](svc.Engine().Store(), models.KindClients)
	require.Len(t, cached, 1)
	assert.Equal(t, "c1", cached[0].ID)
}

func TestTransportFailureFlipsToLocal(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))

	// Seed the local replica, then make the backend unreachable.
	_, err := svc.Engine().CreateClient(models.Client{Name: "Cached Co"})
	require.NoError(t, err)
	server.Close()

	clients := svc.Clients(context.Background())
	require.Len(t, clients, 1)
	assert.Equal(t, "Cached Co", clients[0].Name)
	assert.True(t, svc.UsingLocalFallback(), "transport failure must flip the mode")
}

func TestNotFoundDoesNotFlipMode(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"not found"}`))
	}))

	client := svc.Client(context.Background(), "missing")
	assert.Nil(t, client)
	assert.False(t, svc.UsingLocalFallback(), "404 must never flip the mode")
}

func TestEmptyRemoteResultDoesNotFlipMode(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))

	// A populated local replica must not shadow a legitimately empty
	// remote store.
	_, err := svc.Engine().CreateClient(models.Client{Name: "Stale Local"})
	require.NoError(t, err)

	clients := svc.Clients(context.Background())
	assert.Empty(t, clients)
	assert.False(t, svc.UsingLocalFallback())
}

func TestLocalModeSkipsRemote(t *testing.T) {
	var hits atomic.Int64
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))

	svc.SetLocalFallback(true)
	_, err := svc.CreateClient(context.Background(), models.Client{Name: "Offline Co"})
	require.NoError(t, err)
	svc.Clients(context.Background())

	assert.Zero(t, hits.Load(), "local mode must not touch the network")
}

func TestRemoteCreateInvalidatesReplica(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"id":"srv-1","name":"Acme Ltd"}}`))
	}))

	// Pre-mutation cache that must not survive the remote create.
	store.Put(svc.Engine().Store(), models.KindClients, []models.Client{{ID: "stale", Name: "Stale"}})

	created, err := svc.CreateClient(context.Background(), models.Client{Name: "Acme Ltd"})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", created.ID)

	cached := store.List[models.Client](svc.Engine().Store(), models.KindClients)
	assert.Empty(t, cached, "remote mutation must invalidate the cached replica")
}

func TestRemoteValidationRejectionSurfaces(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"client name is required"}`))
	}))

	_, err := svc.CreateClient(context.Background(), models.Client{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client name is required")
	assert.False(t, svc.UsingLocalFallback(), "validation rejection must not flip the mode")
}

func TestUpdateRollsBackOnRejection(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"error":"invalid email"}`))
	}))

	_, err := svc.Engine().CreateClient(models.Client{ID: "c1", Name: "Acme Ltd"})
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.UpdateClient(context.Background(), "c1", models.ClientPatch{Name: &name})
	require.Error(t, err)

	cached := store.List[models.Client](svc.Engine().Store(), models.KindClients)
	require.Len(t, cached, 1)
	assert.Equal(t, "Acme Ltd", cached[0].Name, "optimistic local change must roll back")
}

func TestUpdateTransportFailureKeepsProjection(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := svc.Engine().CreateClient(models.Client{ID: "c1", Name: "Acme Ltd"})
	require.NoError(t, err)
	server.Close()

	name := "Renamed"
	updated, err := svc.UpdateClient(context.Background(), "c1", models.ClientPatch{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, svc.UsingLocalFallback())
}

func TestLegacyFallthroughAfterOrgMiss(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/org-data/clients" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":"unknown route"}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":[{"id":"c1","name":"Legacy Co"}]}`))
	}))

	clients := svc.Clients(context.Background())
	require.Len(t, clients, 1)
	assert.Equal(t, "Legacy Co", clients[0].Name)
	assert.False(t, svc.UsingLocalFallback())
}

func TestModeChangeNotifiesObservers(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	var transitions []bool
	svc.OnModeChange(func(localMode bool) {
		transitions = append(transitions, localMode)
	})

	server.Close()
	svc.Clients(context.Background())
	require.Equal(t, []bool{true}, transitions)

	// Flipping to the same value must not re-notify.
	svc.SetLocalFallback(true)
	assert.Len(t, transitions, 1)

	svc.SetLocalFallback(false)
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestDeleteFallsBackToLocalCascade(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	client, err := svc.Engine().CreateClient(models.Client{Name: "Acme Ltd"})
	require.NoError(t, err)
	_, err = svc.Engine().CreateJob(models.Job{ClientID: client.ID, Title: "Boiler Service"})
	require.NoError(t, err)
	server.Close()

	result := svc.DeleteClient(context.Background(), client.ID)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.Cascaded["jobs"])
	assert.True(t, svc.UsingLocalFallback())
}
