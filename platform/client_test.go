package platform_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harvestapi/prospector/platform"
)

func TestClient_User(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/users/u1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"username": "jane", "isPaying": false}`))
	}))
	defer server.Close()

	client, err := platform.NewClient(server.URL, "tok")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	user, err := client.User(context.Background(), "u1")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if user.Username != "jane" {
		t.Errorf("username = %q", user.Username)
	}
	if user.IsPaying == nil || *user.IsPaying {
		t.Errorf("isPaying = %v, want false", user.IsPaying)
	}
}

func TestClient_Account_PayingDefaults(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       string
		status     int
		wantPaying bool
	}{
		{"explicit non-paying", "u1", `{"username": "jane", "isPaying": false}`, 200, false},
		{"explicit paying", "u1", `{"username": "jane", "isPaying": true}`, 200, true},
		{"isPaying absent defaults paying", "u1", `{"username": "jane"}`, 200, true},
		{"lookup failure defaults paying", "u1", `oops`, 500, true},
		{"no user id defaults paying", "", ``, 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := platform.NewClient(server.URL, "")
			if err != nil {
				t.Fatalf("new: %v", err)
			}

			account := client.Account(context.Background(), platform.Env{UserID: tt.userID, IsPayPerEvent: true})
			if account.Paying != tt.wantPaying {
				t.Errorf("Paying = %v, want %v", account.Paying, tt.wantPaying)
			}
			if !account.PayPerEvent {
				t.Error("PayPerEvent not carried from env")
			}
		})
	}
}

func TestClient_Charge(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := platform.NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ledger := platform.NewRunLedger(client, "run-1")
	if err := ledger.Charge(context.Background(), "actor-start"); err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if gotPath != "/v2/runs/run-1/charge" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["eventName"] != "actor-start" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestClient_ChargeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no budget", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client, err := platform.NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := client.Charge(context.Background(), "run-1", "actor-start"); err == nil {
		t.Fatal("expected error for rejected charge")
	}
}
