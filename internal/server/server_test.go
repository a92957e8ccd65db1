package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/game"
	"github.com/abhisek/memoria/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestServer(t *testing.T, results store.ResultRepo) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Options{
		Results:      results,
		ResolveDelay: 10 * time.Millisecond,
		Log:          zerolog.Nop(),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

// pairOf returns the ids of two cards sharing a face and of one card that
// matches neither.
func pairOf(t *testing.T, e *game.Engine) (a, b, other string) {
	t.Helper()
	cards := e.Snapshot().Cards
	for i := 1; i < len(cards); i++ {
		if cards[i].Face == cards[0].Face {
			b = cards[i].ID
		} else if other == "" {
			other = cards[i].ID
		}
	}
	require.NotEmpty(t, b)
	return cards[0].ID, b, other
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestCreateAndGetGame(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/games", map[string]string{"difficulty": "medium"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	snap := body["snapshot"].(map[string]any)
	cards := snap["cards"].([]any)
	assert.Len(t, cards, 14)
	for _, c := range cards {
		assert.Equal(t, "", c.(map[string]any)["face"], "hidden faces must not leak")
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/games/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["id"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/games/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, ErrSessionNotFound.Error(), body["error"])
}

func TestCreateGame_DefaultsAndValidation(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/games", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "easy", body["snapshot"].(map[string]any)["difficulty"])

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/games", map[string]string{"difficulty": "extreme"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "difficulty must be one of")
}

func TestFlip(t *testing.T) {
	s, ts := newTestServer(t, nil)
	_, body := doJSON(t, http.MethodPost, ts.URL+"/api/games", nil)
	id := body["id"].(string)
	sess, err := s.Sessions().Get(id)
	require.NoError(t, err)
	a, b, _ := pairOf(t, sess.Engine)

	flipURL := ts.URL + "/api/games/" + id + "/flip"
	resp, body := doJSON(t, http.MethodPost, flipURL, map[string]string{"card_id": a})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["accepted"])

	// Same card again is ignored.
	_, body = doJSON(t, http.MethodPost, flipURL, map[string]string{"card_id": a})
	assert.Equal(t, false, body["accepted"])

	_, body = doJSON(t, http.MethodPost, flipURL, map[string]string{"card_id": b})
	assert.Equal(t, true, body["accepted"])
	assert.Equal(t, true, body["snapshot"].(map[string]any)["locked"])

	require.Eventually(t, func() bool {
		snap := sess.Engine.Snapshot()
		return snap.Moves == 1 && !snap.Locked
	}, time.Second, 5*time.Millisecond)

	resp, body = doJSON(t, http.MethodPost, flipURL, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "card_id is required", body["error"])
}

func TestResetAndDelete(t *testing.T) {
	s, ts := newTestServer(t, nil)
	_, body := doJSON(t, http.MethodPost, ts.URL+"/api/games", nil)
	id := body["id"].(string)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/games/"+id+"/reset", map[string]string{"difficulty": "hard"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["snapshot"].(map[string]any)["cards"], 20)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/games/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, s.Sessions().Len())
}

func TestResultsAndLeaderboard(t *testing.T) {
	st := openTestStore(t)
	_, ts := newTestServer(t, st.ResultRepo())

	for _, r := range []map[string]any{
		{"name": "ada", "difficulty": "easy", "score": 80, "moves": 6, "duration_ms": 30000},
		{"name": "grace", "difficulty": "easy", "score": 120, "moves": 4, "duration_ms": 20000},
		{"name": "linus", "difficulty": "hard", "score": 200, "moves": 14, "duration_ms": 90000},
	} {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/results", r)
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)
		assert.NotEmpty(t, body["id"])
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/leaderboard?difficulty=easy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := body["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, "grace", results[0].(map[string]any)["name"])
	assert.Equal(t, float64(20000), results[0].(map[string]any)["duration_ms"])

	_, body = doJSON(t, http.MethodGet, ts.URL+"/api/leaderboard?limit=1", nil)
	results = body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "linus", results[0].(map[string]any)["name"])
	assert.Equal(t, "all", body["difficulty"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/leaderboard?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/leaderboard?difficulty=extreme", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateResult_Validation(t *testing.T) {
	st := openTestStore(t)
	_, ts := newTestServer(t, st.ResultRepo())

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"missing name", map[string]any{"difficulty": "easy"}, "name is required"},
		{"long name", map[string]any{"name": strings.Repeat("x", 33), "difficulty": "easy"}, "name must be at most 32"},
		{"bad difficulty", map[string]any{"name": "ada", "difficulty": "extreme"}, "difficulty must be one of"},
		{"negative moves", map[string]any{"name": "ada", "difficulty": "easy", "moves": -1}, "moves must be at least 0"},
		{"unknown field", map[string]any{"name": "ada", "difficulty": "easy", "cheat": true}, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/results", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body["error"], tt.want)
		})
	}
}

func TestResults_WithoutStore(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/leaderboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error"])
}

type wsEvent struct {
	Kind string `json:"kind"`
}

type wsMessage struct {
	Type     string         `json:"type"`
	Event    *wsEvent       `json:"event"`
	Snapshot *game.Snapshot `json:"snapshot"`
	CardID   string         `json:"card_id"`
	Error    string         `json:"error"`
}

func dialWS(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m wsMessage
		require.NoError(t, conn.ReadJSON(&m))
		if match(m) {
			return m
		}
	}
}

func eventIs(kind string) func(wsMessage) bool {
	return func(m wsMessage) bool { return m.Event != nil && m.Event.Kind == kind }
}

func TestWebSocket_PlaysAPair(t *testing.T) {
	s, ts := newTestServer(t, nil)
	sess := s.Sessions().Create(deck.Easy)
	a, b, _ := pairOf(t, sess.Engine)

	conn := dialWS(t, ts, sess.ID)
	first := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "snapshot" })
	assert.Nil(t, first.Event)
	require.NotNil(t, first.Snapshot)
	assert.Len(t, first.Snapshot.Cards, 8)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "flip", "card_id": a}))
	flipped := readUntil(t, conn, eventIs("flipped"))
	assert.NotEmpty(t, flipped.Snapshot.Cards[0].Face, "revealed faces are sent")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "flip", "card_id": b}))
	matched := readUntil(t, conn, eventIs("matched"))
	assert.Equal(t, 1, matched.Snapshot.Moves)
	assert.Equal(t, 1, matched.Snapshot.MatchedPairs())

	// Matched cards cannot be flipped again.
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "flip", "card_id": a}))
	rejected := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "rejected" })
	assert.Equal(t, a, rejected.CardID)
}

func TestWebSocket_ResetAndErrors(t *testing.T) {
	s, ts := newTestServer(t, nil)
	sess := s.Sessions().Create(deck.Easy)
	conn := dialWS(t, ts, sess.ID)
	readUntil(t, conn, func(m wsMessage) bool { return m.Type == "snapshot" })

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "reset", "difficulty": "medium"}))
	reset := readUntil(t, conn, eventIs("reset"))
	assert.Len(t, reset.Snapshot.Cards, 14)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "reset", "difficulty": "extreme"}))
	m := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Contains(t, m.Error, "unknown difficulty")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	m = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Contains(t, m.Error, "unknown message type")
}

func TestWebSocket_ClosedWhenSessionDeleted(t *testing.T) {
	s, ts := newTestServer(t, nil)
	sess := s.Sessions().Create(deck.Easy)
	conn := dialWS(t, ts, sess.ID)
	readUntil(t, conn, func(m wsMessage) bool { return m.Type == "snapshot" })

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/games/"+sess.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var err error
	for err == nil {
		var m wsMessage
		err = conn.ReadJSON(&m)
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestWebSocket_UnknownSession(t *testing.T) {
	_, ts := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := New(Options{Log: zerolog.Nop()})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
