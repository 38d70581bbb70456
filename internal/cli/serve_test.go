package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aarforge/aarforge/pkg/cache"
	"github.com/aarforge/aarforge/pkg/export"
)

func testServer(t *testing.T) *graphServer {
	t.Helper()
	return &graphServer{
		cli:       New(io.Discard, LogInfo),
		buildFile: "BUILD.toml",
		graph:     testGraph(),
		store:     export.NewMemoryStore(),
		cache:     cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
	}
}

func TestServeGraphJSON(t *testing.T) {
	srv := httptest.NewServer(testServer(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var g export.Graph
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(g.Nodes))
	}
}

func TestServeGraphDOT(t *testing.T) {
	srv := httptest.NewServer(testServer(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph.dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "digraph") {
		t.Errorf("DOT response should start with digraph:\n%s", body)
	}
}

func TestServeGraphDOTDetailed(t *testing.T) {
	srv := httptest.NewServer(testServer(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph.dot?detailed=1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "kind: android_library") {
		t.Errorf("detailed DOT should include rule kinds:\n%s", body)
	}
}

func TestServeSnapshotLifecycle(t *testing.T) {
	srv := httptest.NewServer(testServer(t).router())
	defer srv.Close()

	// Create
	resp, err := http.Post(srv.URL+"/snapshots", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created export.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if created.ID == "" {
		t.Fatal("created snapshot has no ID")
	}

	// List
	resp, err = http.Get(srv.URL + "/snapshots")
	if err != nil {
		t.Fatal(err)
	}
	var snaps []export.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snaps); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(snaps) != 1 || snaps[0].ID != created.ID {
		t.Errorf("list = %v, want one snapshot %s", snaps, created.ID)
	}

	// Get
	resp, err = http.Get(srv.URL + "/snapshots/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d, want 200", resp.StatusCode)
	}
}

func TestServeSnapshotNotFound(t *testing.T) {
	srv := httptest.NewServer(testServer(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshots/no-such-id")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
