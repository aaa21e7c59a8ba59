package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/workflow-resolution/internal/infra/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.DirectorySettings{
		BaseURL: server.URL,
		Timeout: time.Second,
	}, zap.NewNop())

	return client, server
}

func TestClient_Parent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/task-assignment/business-units/B1/parent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"parentBusinessUnitId":"root"}`))
	}))

	parentID, ok := client.Parent(context.Background(), "B1")
	if !ok {
		t.Fatal("expected parent to resolve")
	}
	if parentID != "root" {
		t.Fatalf("expected parent root, got %s", parentID)
	}
}

func TestClient_Parent_Root(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"parentBusinessUnitId":null}`))
	}))

	if _, ok := client.Parent(context.Background(), "root"); ok {
		t.Fatal("expected no parent for root unit")
	}
}

func TestClient_HomeUnitOf(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/task-assignment/users/u2/business-unit" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"businessUnitId":"B1"}`))
	}))

	unitID, ok := client.HomeUnitOf(context.Background(), "u2")
	if !ok {
		t.Fatal("expected home unit to resolve")
	}
	if unitID != "B1" {
		t.Fatalf("expected unit B1, got %s", unitID)
	}
}

func TestClient_UsersWithRoleInUnit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/task-assignment/business-units/B1/roles/r1/users" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["u3","u4"]`))
	}))

	userIDs := client.UsersWithRoleInUnit(context.Background(), "B1", "r1")
	if len(userIDs) != 2 || userIDs[0] != "u3" || userIDs[1] != "u4" {
		t.Fatalf("expected [u3 u4], got %v", userIDs)
	}
}

func TestClient_IsEligibleRole(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"eligible":true}`))
	}))

	if !client.IsEligibleRole(context.Background(), "B1", "r1") {
		t.Fatal("expected role to be eligible")
	}
}

func TestClient_Lookup(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/users/u1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "u1",
			"username": "jdoe",
			"displayName": "J. Doe",
			"businessUnitId": "B1",
			"functionManagerId": "u9",
			"status": "active"
		}`))
	}))

	user, ok := client.Lookup(context.Background(), "u1")
	if !ok {
		t.Fatal("expected user to resolve")
	}
	if user.ID != "u1" || user.Username != "jdoe" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.HomeUnitID == nil || *user.HomeUnitID != "B1" {
		t.Fatalf("unexpected home unit: %v", user.HomeUnitID)
	}
	if user.FunctionManagerID == nil || *user.FunctionManagerID != "u9" {
		t.Fatalf("unexpected function manager: %v", user.FunctionManagerID)
	}
}

func TestClient_Lookup_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, ok := client.Lookup(context.Background(), "missing"); ok {
		t.Fatal("expected lookup to miss")
	}
}

func TestClient_FailOpenOnServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if userIDs := client.UsersWithRoleInUnit(context.Background(), "B1", "r1"); userIDs != nil {
		t.Fatalf("expected nil on server error, got %v", userIDs)
	}
	if _, ok := client.PathOf(context.Background(), "B1"); ok {
		t.Fatal("expected path lookup to fail open")
	}
}
