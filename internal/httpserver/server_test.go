package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atlasgame/go-server/internal/countries"
	"github.com/atlasgame/go-server/internal/geo"
	"github.com/atlasgame/go-server/internal/store"
)

// testSchema mirrors sql/001_init.sql closely enough for handler tests.
const testSchema = `
CREATE TABLE users (
    id TEXT PRIMARY KEY, username TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash TEXT NOT NULL, created_at TEXT NOT NULL,
    matches_played INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    best_chain INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE matches (
    id TEXT PRIMARY KEY, user_id TEXT, anonymous_id TEXT,
    difficulty TEXT NOT NULL, status TEXT NOT NULL,
    turns INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL, finished_at TEXT
);
CREATE TABLE daily_results (
    user_id TEXT NOT NULL, date TEXT NOT NULL, letter TEXT NOT NULL,
    chain INTEGER NOT NULL, elapsed_ms INTEGER NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
    UNIQUE(user_id, date)
);`

// newTestServer wires a Server against a throwaway DB and a stub oracle
// endpoint that always returns no results.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if err := countries.Init(); err != nil {
		t.Fatalf("countries.Init: %v", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	oracle := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(oracle.Close)

	srv := New(store.NewMemoryStore(), geo.NewSource(geo.NewClientFor(oracle.URL)), db)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	if out != nil && res.StatusCode == http.StatusOK {
		defer res.Body.Close()
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
}

func TestGameFlow(t *testing.T) {
	ts := newTestServer(t)

	var created newGameRes
	res := postJSON(t, ts.URL+"/game/new", map[string]string{"difficulty": "countries"}, &created)
	if res.StatusCode != http.StatusOK || created.GameID == "" {
		t.Fatalf("new game: status %d, id %q", res.StatusCode, created.GameID)
	}

	var turn turnRes
	res = postJSON(t, ts.URL+"/game/turn", map[string]string{"gameId": created.GameID, "place": "India"}, &turn)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("turn: status %d", res.StatusCode)
	}
	if !turn.Accepted || turn.Conceded {
		t.Fatalf("turn not accepted: %+v", turn)
	}
	if turn.Category != "country" || !strings.HasPrefix(strings.ToLower(turn.Place), "a") {
		t.Fatalf("unexpected answer: %+v", turn)
	}

	var state struct {
		UsedPlaces     []string `json:"usedPlaces"`
		RequiredLetter string   `json:"requiredLetter"`
	}
	res, err := http.Get(ts.URL + "/game/state?gameId=" + created.GameID)
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.UsedPlaces) != 2 || state.RequiredLetter == "" {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestBadDifficulty(t *testing.T) {
	ts := newTestServer(t)
	res := postJSON(t, ts.URL+"/game/new", map[string]string{"difficulty": "impossible"}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestTurnUnknownGame(t *testing.T) {
	ts := newTestServer(t)
	res := postJSON(t, ts.URL+"/game/turn", map[string]string{"gameId": "nope", "place": "India"}, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
}
