package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"testing"
)

// jarClient returns an http.Client with a cookie jar, so the anonymous
// identity cookie survives across requests like a browser session.
func jarClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSONWith(t *testing.T, cl *http.Client, url string, body any, out any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	res, err := cl.Post(url, "application/json", bytes.NewReader(b))
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

func TestDailyRunOncePerDay(t *testing.T) {
	ts := newTestServer(t)
	cl := jarClient(t)

	var created newRes
	res := postJSONWith(t, cl, ts.URL+"/daily/new", map[string]string{}, &created)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("daily/new: status %d", res.StatusCode)
	}
	if created.Played || created.GameID == "" || len(created.Letter) != 1 {
		t.Fatalf("unexpected new run: %+v", created)
	}

	// Quitting ends the run and records the pre-quit chain (zero here).
	var turn dailyTurnRes
	res = postJSONWith(t, cl, ts.URL+"/daily/turn",
		map[string]string{"gameId": created.GameID, "place": "quit"}, &turn)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("daily/turn: status %d", res.StatusCode)
	}
	if turn.State != "finished" || turn.Chain != 0 {
		t.Fatalf("unexpected finish: %+v", turn)
	}

	// Same identity cannot start a second run today.
	var again newRes
	res = postJSONWith(t, cl, ts.URL+"/daily/new", map[string]string{}, &again)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("daily/new replay: status %d", res.StatusCode)
	}
	if !again.Played || again.GameID != "" {
		t.Fatalf("replay not blocked: %+v", again)
	}

	var board lbRes
	lb, err := cl.Get(ts.URL + "/daily/leaderboard")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	defer lb.Body.Close()
	if err := json.NewDecoder(lb.Body).Decode(&board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(board.Top) != 1 || board.Top[0].Chain != 0 {
		t.Fatalf("unexpected leaderboard: %+v", board)
	}
}

func TestDailyTurnWithoutSession(t *testing.T) {
	ts := newTestServer(t)
	res := postJSONWith(t, jarClient(t), ts.URL+"/daily/turn",
		map[string]string{"gameId": "ghost", "place": "India"}, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", res.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	cl := jarClient(t)

	res := postJSONWith(t, cl, ts.URL+"/auth/signup",
		map[string]string{"username": "wanderer", "password": "atlas12345"}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signup: status %d", res.StatusCode)
	}

	// Cookie from signup authenticates /auth/me.
	me, err := cl.Get(ts.URL + "/auth/me")
	if err != nil {
		t.Fatalf("GET /auth/me: %v", err)
	}
	defer me.Body.Close()
	if me.StatusCode != http.StatusOK {
		t.Fatalf("/auth/me: status %d", me.StatusCode)
	}
	var who authUser
	if err := json.NewDecoder(me.Body).Decode(&who); err != nil {
		t.Fatalf("decode /auth/me: %v", err)
	}
	if who.Username != "wanderer" {
		t.Fatalf("wrong user: %+v", who)
	}

	// Duplicate username is rejected.
	res = postJSONWith(t, cl, ts.URL+"/auth/signup",
		map[string]string{"username": "wanderer", "password": "atlas12345"}, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup: status %d, want 409", res.StatusCode)
	}

	// Wrong password fails login.
	res = postJSONWith(t, jarClient(t), ts.URL+"/auth/login",
		map[string]string{"username": "wanderer", "password": "wrongwrong"}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d, want 401", res.StatusCode)
	}

	// Fresh stats for a new account.
	stats, err := cl.Get(ts.URL + "/stats/me")
	if err != nil {
		t.Fatalf("GET /stats/me: %v", err)
	}
	defer stats.Body.Close()
	var st struct {
		MatchesPlayed int `json:"matchesPlayed"`
		Wins          int `json:"wins"`
		BestChain     int `json:"bestChain"`
	}
	if err := json.NewDecoder(stats.Body).Decode(&st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.MatchesPlayed != 0 || st.Wins != 0 || st.BestChain != 0 {
		t.Fatalf("unexpected fresh stats: %+v", st)
	}
}
