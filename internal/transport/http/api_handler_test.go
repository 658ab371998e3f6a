package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"verbiverse-quiz/internal/domain"
	"verbiverse-quiz/internal/infra/wallet"
)

func TestAPIStats(t *testing.T) {
	server := newTestServer(t, 0)

	resp, err := http.Get(server.URL + "/api/stats?address=" + wallet.DemoAddress)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var snap domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Session != nil || snap.Stats.TotalQuizzes != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestAPIRejectsBadAddress(t *testing.T) {
	server := newTestServer(t, 0)
	for _, path := range []string{"/api/stats", "/api/history?address=bob"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestAPISubmissionsWithoutLedger(t *testing.T) {
	server := newTestServer(t, 0)
	resp, err := http.Get(server.URL + "/api/submissions?address=" + wallet.DemoAddress)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestAPILanguages(t *testing.T) {
	server := newTestServer(t, 0)
	resp, err := http.Get(server.URL + "/api/languages")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var pairs []domain.LanguagePair
	if err := json.NewDecoder(resp.Body).Decode(&pairs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pairs) != len(domain.LanguagePairs) || pairs[0].Label != "English → Spanish" {
		t.Fatalf("unexpected pairs %+v", pairs)
	}
}

func getActive(t *testing.T, serverURL string) bool {
	t.Helper()
	resp, err := http.Get(serverURL + "/api/active?address=" + wallet.DemoAddress)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload activePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return payload.Active
}

func TestAPIActiveFollowsConnections(t *testing.T) {
	server := newTestServer(t, 0)
	if getActive(t, server.URL) {
		t.Fatalf("expected inactive before any connection")
	}

	conn := dial(t, server, "address="+wallet.DemoAddress)
	readUntil(t, conn, "connected")
	if !getActive(t, server.URL) {
		t.Fatalf("expected active while a tab is connected")
	}
}
