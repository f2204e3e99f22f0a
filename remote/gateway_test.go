// ABOUTME: Tests for envelope normalization and transport classification
// ABOUTME: Uses httptest servers standing in for the hosted backend
package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/fieldfolio/fieldfolio/models"
)

func testGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGateway(server.URL, "anon-key")
}

func TestFlatEnvelope(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"c1","name":"Acme Ltd"}]}`))
	})

	resp, err := gw.Get(context.Background(), "/clients")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !resp.OK {
		t.Fatalf("expected success, got error %q", resp.Err)
	}

	clients, err := Decode[[]models.Client](resp)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(clients) != 1 || clients[0].Name != "Acme Ltd" {
		t.Errorf("unexpected payload: %+v", clients)
	}
}

func TestNestedOrgEnvelope(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"success":true,"data":{"id":"c1","name":"Acme Ltd"},"metadata":{"source":"org"}}}`))
	})

	resp, err := gw.Get(context.Background(), "/org-data/clients/c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	client, err := Decode[models.Client](resp)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if client.Name != "Acme Ltd" {
		t.Errorf("nested envelope not unwrapped, got %+v", client)
	}
}

func TestRawBodyWrappedAsSuccess(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"j1","title":"Boiler Service"}]`))
	})

	resp, err := gw.Get(context.Background(), "/jobs")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !resp.OK {
		t.Fatal("raw JSON body should normalize as success")
	}

	jobs, err := Decode[[]models.Job](resp)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("expected 1 job, got %d", len(jobs))
	}
}

func TestNonJSONBodyIsTransportFailure(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})

	resp, err := gw.Get(context.Background(), "/clients")
	if err == nil {
		t.Fatal("expected an error for a non-JSON body")
	}
	if !IsTransport(resp, err) {
		t.Error("non-JSON body must classify as transport failure")
	}
}

func TestNotFoundIsNotTransport(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"client not found"}`))
	})

	resp, err := gw.Get(context.Background(), "/clients/missing")
	if err != nil {
		t.Fatalf("404 must not be an error: %v", err)
	}
	if resp.OK {
		t.Error("404 response should not be OK")
	}
	if !resp.NotFound() {
		t.Error("expected NotFound()")
	}
	if IsTransport(resp, err) {
		t.Error("404 must never classify as transport failure")
	}
	if resp.Err != "client not found" {
		t.Errorf("server message lost: %q", resp.Err)
	}
}

func TestServerErrorIsTransport(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	resp, err := gw.Get(context.Background(), "/clients")
	if err != nil {
		t.Fatalf("5xx should normalize, not error: %v", err)
	}
	if !IsTransport(resp, err) {
		t.Error("5xx must classify as transport failure")
	}
}

func TestValidationErrorIsNotTransport(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"client name is required"}`))
	})

	resp, err := gw.Post(context.Background(), "/clients", map[string]string{})
	if err != nil {
		t.Fatalf("400 should normalize, not error: %v", err)
	}
	if IsTransport(resp, err) {
		t.Error("validation failure must not classify as transport")
	}
	if resp.Err != "client name is required" {
		t.Errorf("expected server validation message, got %q", resp.Err)
	}
}

func TestTimeout(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"success":true}`))
	})
	WithTimeout(50 * time.Millisecond)(gw)

	_, err := gw.Get(context.Background(), "/clients")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTransport(nil, err) {
		t.Error("timeout must classify as transport failure")
	}
}

func TestBearerTokenPreferredOverAnonKey(t *testing.T) {
	var got string
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	})

	gw.Request(context.Background(), http.MethodGet, "/clients", nil)
	if got != "Bearer anon-key" {
		t.Errorf("expected anon key bearer, got %q", got)
	}

	WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "session-token"}))(gw)
	gw.Request(context.Background(), http.MethodGet, "/clients", nil)
	if got != "Bearer session-token" {
		t.Errorf("expected session token bearer, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok","timestamp":"2026-09-01T00:00:00Z"}`))
	})

	if err := gw.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}

func TestEmptyBodySuccess(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := gw.Delete(context.Background(), "/clients/c1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !resp.OK {
		t.Error("empty 2xx body should normalize as success")
	}
}
