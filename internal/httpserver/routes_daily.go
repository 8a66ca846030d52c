// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily run (creates or reuses session)
//   - POST /daily/turn        → play one turn of today's run
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each user can play once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB when the
// run ends (engine concession or the player quitting). The required opening
// letter is deterministic from date + salt and shared by all players.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlasgame/go-server/internal/countries"
	"github.com/atlasgame/go-server/internal/daily"
	"github.com/atlasgame/go-server/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession holds transient in-memory state for an in-progress daily run.
type dailySession struct {
	GameID   string
	UserID   string
	Date     string
	Letter   rune
	Sess     *game.Session
	Start    time.Time
	Finished bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/turn", dd.handleTurn)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// dateLetterNow returns today's date key and deterministic opening letter.
// Only letters with at least one catalog country are viable.
func (d *dailyServer) dateLetterNow() (date string, letter rune) {
	now := time.Now().UTC()
	return daily.DateKey(now), daily.LetterForDate(now, d.salt, countries.Letters())
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return d.srv.ensureAnonID(w, r), true
}

// -----------------------------------------------------------------------------
// /daily/new

// newRes is returned by /daily/new.
type newRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Letter string `json:"letter"`
	Played bool   `json:"played"`
}

// handleNew creates or reuses a daily session for the current date.
// - If user already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	date, letter := d.dateLetterNow()

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(newRes{GameID: "", Date: date, Letter: string(letter), Played: true})
		return
	}

	// Reuse or create session in memory.
	key := uid + "|" + date
	d.mu.Lock()
	if sess, ok := d.sessions[key]; ok {
		d.mu.Unlock()
		_ = json.NewEncoder(w).Encode(newRes{GameID: sess.GameID, Date: date, Letter: string(letter), Played: false})
		return
	}
	// Daily runs are countries-only so every player faces the same pool.
	gs := game.NewSession(d.srv.geo, game.CountriesOnly)
	gs.SetRequiredLetter(letter)
	sess := &dailySession{
		GameID: gs.ID,
		UserID: uid,
		Date:   date,
		Letter: letter,
		Sess:   gs,
		Start:  time.Now(),
	}
	d.sessions[key] = sess
	d.mu.Unlock()

	_ = json.NewEncoder(w).Encode(newRes{GameID: sess.GameID, Date: date, Letter: string(letter), Played: false})
}

// -----------------------------------------------------------------------------
// /daily/turn

// dailyTurnReq is the request payload for /daily/turn.
type dailyTurnReq struct {
	GameID string `json:"gameId"`
	Place  string `json:"place"`
}

// dailyTurnRes is the response payload for /daily/turn.
type dailyTurnRes struct {
	Message        string `json:"message"`
	Place          string `json:"place,omitempty"`
	RequiredLetter string `json:"requiredLetter,omitempty"`
	State          string `json:"state"` // in_progress | finished | locked
	Chain          int    `json:"chain"`
}

// handleTurn validates and plays one turn of today's daily run.
// - Ensures valid GameID and place.
// - Rejects if no session; reports locked once the run is finished.
// - A concession by the engine, or the player quitting, ends the run and
//   persists the chain length.
func (d *dailyServer) handleTurn(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var p dailyTurnReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if p.GameID == "" || p.Place == "" {
		http.Error(w, "invalid", http.StatusBadRequest)
		return
	}

	date, _ := d.dateLetterNow()

	// Find session.
	key := uid + "|" + date
	d.mu.Lock()
	sess, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || sess.GameID != p.GameID {
		http.Error(w, "no session", http.StatusConflict)
		return
	}
	if sess.Finished {
		_ = json.NewEncoder(w).Encode(dailyTurnRes{State: "locked", Chain: sess.Sess.Turns()})
		return
	}

	// Chain length before the turn: a quit wipes the session counter, so
	// the pre-turn value is what gets recorded in that case.
	before := sess.Sess.Turns()
	res := sess.Sess.PlayTurn(r.Context(), p.Place, game.CountriesOnly)
	chain := sess.Sess.Turns()

	done := res.Conceded || res.WasReset
	if res.WasReset {
		chain = before
	}
	if done {
		d.mu.Lock()
		sess.Finished = true
		d.mu.Unlock()

		elapsed := int(time.Since(sess.Start).Milliseconds())
		_ = d.store.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: date, Letter: string(sess.Letter), Chain: chain, ElapsedMs: elapsed,
		})
		_ = json.NewEncoder(w).Encode(dailyTurnRes{
			Message: res.Message, Place: res.Place, State: "finished", Chain: chain,
		})
		return
	}

	_ = json.NewEncoder(w).Encode(dailyTurnRes{
		Message:        res.Message,
		Place:          res.Place,
		RequiredLetter: res.RequiredLetter,
		State:          "in_progress",
		Chain:          chain,
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.dateLetterNow()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
