package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kritsw/courtledger/internal/config"
	"github.com/kritsw/courtledger/internal/database"
	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/kritsw/courtledger/internal/metrics"
	"github.com/kritsw/courtledger/internal/notifier"
	"github.com/kritsw/courtledger/internal/pubsub"
	"github.com/kritsw/courtledger/internal/selector"
	"github.com/kritsw/courtledger/internal/syncer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, *notifier.Mock, *syncer.MockSyncer, *pubsub.MockPubSubClient, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := ledger.New(db)
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	notifierMock := notifier.NewMock()
	syncerMock := syncer.NewMock()
	pubsubMock := pubsub.NewMock("TEST")

	server := NewServer(store, metricsSvc, metricsHandler, cfg, notifierMock, syncerMock, pubsubMock)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, notifierMock, syncerMock, pubsubMock, teardown
}

func addPlayers(t *testing.T, s *Server, n int) []ledger.Player {
	t.Helper()
	players := make([]ledger.Player, 0, n)
	for i := 0; i < n; i++ {
		gender := ledger.GenderMale
		if i%2 == 1 {
			gender = ledger.GenderFemale
		}
		p, err := s.Store.AddPlayer(fmt.Sprintf("Player %d", i+1), gender, ledger.Level(i%6+1))
		require.NoError(t, err)
		players = append(players, *p)
	}
	return players
}

func startSessionWith(t *testing.T, s *Server, players []ledger.Player) *ledger.Session {
	t.Helper()
	sess, err := s.Store.StartSession()
	require.NoError(t, err)
	for _, p := range players {
		require.NoError(t, s.Store.TogglePresence(p.ID))
	}
	return sess
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestAddPlayerHandler(t *testing.T) {
	server, _, syncerMock, _, teardown := setupTestServer(t)
	defer teardown()

	body := `{"name": "Nok", "gender": "Female", "level": "Advanced"}`
	req := httptest.NewRequest("POST", "/players/add", strings.NewReader(body))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var player ledger.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.NotEmpty(t, player.ID)
	assert.Equal(t, "Nok", player.Name)
	assert.Equal(t, ledger.LevelAdvanced, player.Level)
	assert.True(t, player.Active)

	// The roster change is pushed to the sheet.
	assert.Equal(t, 1, syncerMock.PushPlayersCalls)
}

func TestAddPlayerHandler_RequiresName(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("POST", "/players/add", strings.NewReader(`{"gender": "Male"}`))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddGameHandler(t *testing.T) {
	server, _, syncerMock, pubsubMock, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	startSessionWith(t, server, players)

	params := ledger.GameParams{
		PlayerIDs:    []string{players[0].ID, players[1].ID, players[2].ID, players[3].ID},
		SequenceID:   1,
		ShuttlesUsed: 2,
	}
	body, _ := json.Marshal(params)
	req := httptest.NewRequest("POST", "/games/add", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var game ledger.GameRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.True(t, game.IsActive)
	assert.Equal(t, 2.0, game.ShuttlesUsed)

	// A game event is published and the sheet is refreshed.
	require.Len(t, pubsubMock.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventGameRecorded), pubsubMock.SendMessageCalls[0].Topic)
	assert.Equal(t, 1, syncerMock.PushGamesCalls)
	assert.Equal(t, 1, syncerMock.PushPlayersCalls)
}

func TestAddGameHandler_NoSession(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	params := ledger.GameParams{
		PlayerIDs: []string{players[0].ID, players[1].ID, players[2].ID, players[3].ID},
	}
	body, _ := json.Marshal(params)
	req := httptest.NewRequest("POST", "/games/add", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddGameHandler_BusyPlayerConflicts(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 6)
	startSessionWith(t, server, players)

	first := ledger.GameParams{
		PlayerIDs: []string{players[0].ID, players[1].ID, players[2].ID, players[3].ID},
	}
	body, _ := json.Marshal(first)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest("POST", "/games/add", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)

	// Player 1 is still on court.
	second := ledger.GameParams{
		PlayerIDs: []string{players[0].ID, players[1].ID, players[4].ID, players[5].ID},
	}
	body, _ = json.Marshal(second)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest("POST", "/games/add", bytes.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestEndGameHandler_WithScoresNotifies(t *testing.T) {
	server, notifierMock, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	startSessionWith(t, server, players)

	params := ledger.GameParams{
		PlayerIDs: []string{players[0].ID, players[1].ID, players[2].ID, players[3].ID},
	}
	game, err := server.Store.AddGame(params)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/games/end?gameID="+game.ID, strings.NewReader(`{"scoreA": "21", "scoreB": "15"}`))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	got, err := server.Store.GetGame(game.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "21", got.ScoreA)

	require.Len(t, notifierMock.SendGameResultCalls, 1)
	assert.Equal(t, game.ID, notifierMock.SendGameResultCalls[0].Game.ID)
}

func TestCloseSessionHandler(t *testing.T) {
	server, notifierMock, syncerMock, pubsubMock, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	sess := startSessionWith(t, server, players)

	_, err := server.Store.AddGame(ledger.GameParams{
		PlayerIDs:    []string{players[0].ID, players[1].ID, players[2].ID, players[3].ID},
		ShuttlesUsed: 2,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/sessions/close", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	closed, err := server.Store.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed)

	require.Len(t, notifierMock.SendSessionSummaryCalls, 1)
	assert.Len(t, notifierMock.SendSessionSummaryCalls[0].Costs, 4)
	require.Len(t, pubsubMock.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventSessionClosed), pubsubMock.SendMessageCalls[0].Topic)
	assert.Equal(t, 1, syncerMock.PushAllCalls)
}

func TestCloseSessionHandler_NoActiveSession(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("POST", "/sessions/close", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCloseSessionHandler_DryRunPropagates(t *testing.T) {
	server, notifierMock, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	startSessionWith(t, server, players)

	req := httptest.NewRequest("POST", "/sessions/close?dry_run=true", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, notifierMock.SendSessionSummaryCalls, 1)
	assert.True(t, notifierMock.SendSessionSummaryCalls[0].DryRun)
}

func TestSessionCostsHandler(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	startSessionWith(t, server, players)

	_, err := server.Store.AddGame(ledger.GameParams{
		PlayerIDs:    []string{players[0].ID, players[1].ID, players[2].ID, players[3].ID},
		ShuttlesUsed: 2,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/sessions/costs", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Costs []ledger.PlayerCost `json:"costs"`
		Total float64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Costs, 4)
	// Court fee 70 plus a quarter of 2 shuttles at 25 each.
	assert.InDelta(t, 82.5, resp.Costs[0].Amount, 0.001)
	// 4 players at 70 plus 2 shuttles at 25.
	assert.InDelta(t, 330, resp.Total, 0.001)
}

func TestSuggestBalancedHandler(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	startSessionWith(t, server, players)

	req := httptest.NewRequest("GET", "/suggest/balanced", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var pairing selector.Pairing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pairing))
	assert.Len(t, pairing.Players(), 4)
}

func TestSuggestBalancedHandler_Disabled(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	settings := ledger.DefaultSettings()
	settings.EnableAutoSelect = false
	require.NoError(t, server.Store.UpdateSettings(settings))

	req := httptest.NewRequest("GET", "/suggest/balanced", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSuggestRandomHandler_InsufficientPool(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 2)
	startSessionWith(t, server, players)

	req := httptest.NewRequest("GET", "/suggest/random", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportGamesHandler(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 4)
	sess := startSessionWith(t, server, players)

	for i := 0; i < 2; i++ {
		game, err := server.Store.AddGame(ledger.GameParams{
			PlayerIDs:  []string{players[0].ID, players[1].ID, players[2].ID, players[3].ID},
			SequenceID: i + 1,
		})
		require.NoError(t, err)
		require.NoError(t, server.Store.EndGame(game.ID, nil))
	}

	req := httptest.NewRequest("GET", "/export/games?sessionID="+sess.ID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))

	// One header line plus one line per recorded game.
	lines := strings.Split(strings.TrimRight(rr.Body.String(), "\r\n"), "\r\n")
	assert.Len(t, lines, 3)
}

func TestSyncHandler_Pull(t *testing.T) {
	server, _, syncerMock, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("POST", "/sync", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, syncerMock.PullAllCalls)
}

func TestSyncHandler_Push(t *testing.T) {
	server, _, syncerMock, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("POST", "/sync?direction=push", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, syncerMock.PushAllCalls)
}

func TestPubSubPushHandler_SyncRequested(t *testing.T) {
	server, _, syncerMock, _, teardown := setupTestServer(t)
	defer teardown()

	payload, err := msgpack.Marshal(pubsub.SyncRequestedEvent{Reason: "nightly"})
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/push",
		"message": map[string]any{
			"data":       base64.StdEncoding.EncodeToString(payload),
			"attributes": map[string]string{"type": string(pubsub.EventSyncRequested)},
		},
	}
	body, _ := json.Marshal(envelope)

	req := httptest.NewRequest("POST", "/pubsub/push", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, syncerMock.PullAllCalls)
}

func TestPubSubPushHandler_InvalidJSON(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("POST", "/pubsub/push", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSettingsHandler_RoundTrip(t *testing.T) {
	server, _, syncerMock, _, teardown := setupTestServer(t)
	defer teardown()

	body := `{"currency": "USD", "courtFee": 5, "shuttlePrice": 3, "enableAutoSelect": false}`
	req := httptest.NewRequest("POST", "/settings", strings.NewReader(body))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, syncerMock.PushSettingsCalls)

	req = httptest.NewRequest("GET", "/settings", nil)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var settings ledger.Settings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &settings))
	assert.Equal(t, "USD", settings.Currency)
	assert.False(t, settings.EnableAutoSelect)
}

func TestViewSessionHandler(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 2)
	sess := startSessionWith(t, server, players)
	require.NoError(t, server.Store.CloseSession())

	// Select the closed session for review.
	req := httptest.NewRequest("POST", "/sessions/view?sessionID="+sess.ID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got ledger.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, sess.ID, got.ID)
	assert.True(t, got.IsClosed)
}

func TestTogglePresenceHandler(t *testing.T) {
	server, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	players := addPlayers(t, server, 1)
	sess, err := server.Store.StartSession()
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/players/presence?playerID="+players[0].ID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	got, err := server.Store.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Contains(t, got.PresentPlayerIDs, players[0].ID)
}
