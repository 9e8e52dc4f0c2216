package ledger_test

import (
	"testing"

	"github.com/kritsw/courtledger/internal/database"
	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary in-memory SQLite database for testing.
func setupTestStore(t *testing.T) (ledger.LedgerStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := ledger.New(db)
	return store, dbTeardown
}

// addTestPlayers creates four free players with the given levels and returns their ids.
func addTestPlayers(t *testing.T, store ledger.LedgerStore, levels ...ledger.Level) []string {
	t.Helper()
	genders := []ledger.Gender{ledger.GenderMale, ledger.GenderFemale, ledger.GenderMale, ledger.GenderFemale}
	ids := make([]string, 0, len(levels))
	for i, lvl := range levels {
		p, err := store.AddPlayer("Player", genders[i%len(genders)], lvl)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func TestAddPlayer_Defaults(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	p, err := store.AddPlayer("Anna", ledger.GenderFemale, ledger.LevelAdvanced)
	require.NoError(t, err)

	got, err := store.GetPlayer(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Active)
	assert.Equal(t, ledger.StatusFree, got.Status)
	assert.Equal(t, 0, got.VisitCount)
	assert.Equal(t, 0.0, got.ShuttleCount)
}

func TestAddGame_MarksPlayersPlayingAndSplitsShuttles(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 2, 4, 3, 4)
	_, err := store.StartSession()
	require.NoError(t, err)

	game, err := store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 1, ShuttlesUsed: 2})
	require.NoError(t, err)
	assert.True(t, game.IsActive)
	assert.Equal(t, "2M/2F", game.GenderMix)
	assert.Equal(t, 3.3, game.AvgLevel)

	for _, id := range ids {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPlaying, p.Status)
		assert.Equal(t, 0.5, p.ShuttleCount)
	}

	sess, err := store.ActiveSession()
	require.NoError(t, err)
	assert.Equal(t, []string{game.ID}, sess.GameIDs)
}

func TestAddGame_RejectsBusyPlayerWithoutMutating(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4, 5)
	_, err := store.StartSession()
	require.NoError(t, err)

	_, err = store.AddGame(ledger.GameParams{PlayerIDs: ids[:4], SequenceID: 1, ShuttlesUsed: 1})
	require.NoError(t, err)

	before, err := store.GetAllPlayers()
	require.NoError(t, err)
	gamesBefore, err := store.GetAllGames()
	require.NoError(t, err)

	// ids[3] is still playing.
	_, err = store.AddGame(ledger.GameParams{PlayerIDs: []string{ids[0], ids[1], ids[2], ids[4]}, SequenceID: 2, ShuttlesUsed: 1})
	require.ErrorIs(t, err, ledger.ErrPlayerBusy)

	after, err := store.GetAllPlayers()
	require.NoError(t, err)
	gamesAfter, err := store.GetAllGames()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, gamesBefore, gamesAfter)
}

func TestAddGame_RequiresViewedSession(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4)
	_, err := store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 1, ShuttlesUsed: 1})
	assert.ErrorIs(t, err, ledger.ErrNoViewedSession)
}

func TestAddGame_RequiresFourResolvablePlayers(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3)
	_, err := store.StartSession()
	require.NoError(t, err)

	_, err = store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 1, ShuttlesUsed: 1})
	assert.ErrorIs(t, err, ledger.ErrPlayerCount)

	// A duplicated id resolves to fewer than 4 distinct players.
	_, err = store.AddGame(ledger.GameParams{PlayerIDs: []string{ids[0], ids[0], ids[1], ids[2]}, SequenceID: 1, ShuttlesUsed: 1})
	assert.ErrorIs(t, err, ledger.ErrPlayerCount)

	// An unknown id does not resolve at all.
	_, err = store.AddGame(ledger.GameParams{PlayerIDs: []string{ids[0], ids[1], ids[2], "ghost"}, SequenceID: 1, ShuttlesUsed: 1})
	assert.ErrorIs(t, err, ledger.ErrPlayerCount)
}

func TestAddGame_HistoricalSessionCreatesFinishedGame(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4)
	sess, err := store.StartSession()
	require.NoError(t, err)
	require.NoError(t, store.CloseSession())

	store.SetViewedSession(sess.ID)
	game, err := store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 1, ShuttlesUsed: 1})
	require.NoError(t, err)
	assert.False(t, game.IsActive)

	// Players stay free; shuttle shares are still counted.
	for _, id := range ids {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusFree, p.Status)
		assert.Equal(t, 0.25, p.ShuttleCount)
	}
}

func TestUpdateGame_ReconcilesShuttleShares(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4, 5)
	_, err := store.StartSession()
	require.NoError(t, err)

	game, err := store.AddGame(ledger.GameParams{PlayerIDs: ids[:4], SequenceID: 1, ShuttlesUsed: 2})
	require.NoError(t, err)

	// Swap ids[3] for ids[4] and double the shuttles.
	newLineup := []string{ids[0], ids[1], ids[2], ids[4]}
	require.NoError(t, store.UpdateGame(game.ID, ledger.GameParams{PlayerIDs: newLineup, SequenceID: 1, ShuttlesUsed: 4}))

	// Unchanged members net the difference: -0.5 + 1.0 = +0.5 on top of 0.5.
	for _, id := range ids[:3] {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Equal(t, 1.0, p.ShuttleCount)
		assert.Equal(t, ledger.StatusPlaying, p.Status)
	}

	removed, err := store.GetPlayer(ids[3])
	require.NoError(t, err)
	assert.Equal(t, 0.0, removed.ShuttleCount)
	assert.Equal(t, ledger.StatusFree, removed.Status)

	added, err := store.GetPlayer(ids[4])
	require.NoError(t, err)
	assert.Equal(t, 1.0, added.ShuttleCount)
	assert.Equal(t, ledger.StatusPlaying, added.Status)
}

func TestUpdateGame_RoundTripRestoresShuttleCounts(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4, 5)
	_, err := store.StartSession()
	require.NoError(t, err)

	game, err := store.AddGame(ledger.GameParams{PlayerIDs: ids[:4], SequenceID: 1, ShuttlesUsed: 3})
	require.NoError(t, err)

	other := []string{ids[0], ids[1], ids[2], ids[4]}
	require.NoError(t, store.UpdateGame(game.ID, ledger.GameParams{PlayerIDs: other, SequenceID: 1, ShuttlesUsed: 5}))
	require.NoError(t, store.UpdateGame(game.ID, ledger.GameParams{PlayerIDs: ids[:4], SequenceID: 1, ShuttlesUsed: 3}))

	for _, id := range ids[:4] {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.InDelta(t, 0.75, p.ShuttleCount, 1e-9)
	}
	p, err := store.GetPlayer(ids[4])
	require.NoError(t, err)
	assert.InDelta(t, 0.0, p.ShuttleCount, 1e-9)
}

func TestEndGame_FreesPlayersAndIsIdempotent(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4)
	_, err := store.StartSession()
	require.NoError(t, err)

	game, err := store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 1, ShuttlesUsed: 1})
	require.NoError(t, err)

	require.NoError(t, store.EndGame(game.ID, &ledger.Scores{TeamA: "21", TeamB: "15"}))

	got, err := store.GetGame(game.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "21", got.ScoreA)
	assert.Equal(t, "15", got.ScoreB)

	for _, id := range ids {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusFree, p.Status)
	}

	// Ending again, or ending a missing game, is a no-op.
	require.NoError(t, store.EndGame(game.ID, nil))
	require.NoError(t, store.EndGame("missing", nil))
}

func TestStatusFollowsActiveGames(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4)
	_, err := store.StartSession()
	require.NoError(t, err)

	game, err := store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 1, ShuttlesUsed: 1})
	require.NoError(t, err)

	players, err := store.GetPlayers(ids)
	require.NoError(t, err)
	for _, p := range players {
		assert.Equal(t, ledger.StatusPlaying, p.Status)
	}

	require.NoError(t, store.EndGame(game.ID, nil))
	players, err = store.GetPlayers(ids)
	require.NoError(t, err)
	for _, p := range players {
		assert.Equal(t, ledger.StatusFree, p.Status)
	}
}

func TestStartSession_NoOpWhenActive(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	first, err := store.StartSession()
	require.NoError(t, err)
	second, err := store.StartSession()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	sessions, err := store.GetAllSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestCloseSession_EndsGamesAndCountsVisits(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1, 2, 3, 4)
	sess, err := store.StartSession()
	require.NoError(t, err)

	for _, id := range ids {
		require.NoError(t, store.TogglePresence(id))
	}

	game1, err := store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 1, ShuttlesUsed: 1})
	require.NoError(t, err)
	require.NoError(t, store.EndGame(game1.ID, nil))
	game2, err := store.AddGame(ledger.GameParams{PlayerIDs: ids, SequenceID: 2, ShuttlesUsed: 1})
	require.NoError(t, err)

	require.NoError(t, store.CloseSession())

	closed, err := store.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed)
	assert.NotNil(t, closed.EndTime)

	g2, err := store.GetGame(game2.ID)
	require.NoError(t, err)
	assert.False(t, g2.IsActive)

	// One visit per present player, regardless of how many games they played.
	for _, id := range ids {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Equal(t, 1, p.VisitCount)
		assert.Equal(t, ledger.StatusFree, p.Status)
	}

	// Closing again is a no-op.
	require.NoError(t, store.CloseSession())
	for _, id := range ids {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Equal(t, 1, p.VisitCount)
	}
}

func TestTogglePresence(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1)

	// No viewed session: silent no-op.
	require.NoError(t, store.TogglePresence(ids[0]))

	sess, err := store.StartSession()
	require.NoError(t, err)

	require.NoError(t, store.TogglePresence(ids[0]))
	got, err := store.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0]}, got.PresentPlayerIDs)

	require.NoError(t, store.TogglePresence(ids[0]))
	got, err = store.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PresentPlayerIDs)
}

func TestTogglePaymentStatus(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	ids := addTestPlayers(t, store, 1)
	sess, err := store.StartSession()
	require.NoError(t, err)

	require.NoError(t, store.TogglePaymentStatus(ids[0], sess.ID))
	got, err := store.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, got.PaymentStatus[ids[0]])

	require.NoError(t, store.TogglePaymentStatus(ids[0], sess.ID))
	got, err = store.GetSession(sess.ID)
	require.NoError(t, err)
	assert.False(t, got.PaymentStatus[ids[0]])
}

func TestViewedSessionFallsBackToActive(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	viewed, err := store.ViewedSession()
	require.NoError(t, err)
	assert.Nil(t, viewed)

	sess, err := store.StartSession()
	require.NoError(t, err)

	store.SetViewedSession("")
	viewed, err = store.ViewedSession()
	require.NoError(t, err)
	require.NotNil(t, viewed)
	assert.Equal(t, sess.ID, viewed.ID)
}

func TestSettingsRoundTrip(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultSettings(), settings)

	settings.CourtFee = 100
	settings.EnableAutoSelect = false
	require.NoError(t, store.UpdateSettings(settings))

	got, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestReplaceCollections(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	addTestPlayers(t, store, 1, 2)

	remote := []ledger.Player{
		{ID: "r1", Name: "Remote One", Gender: ledger.GenderMale, Level: ledger.LevelPro, Active: true, Status: ledger.StatusFree},
	}
	require.NoError(t, store.ReplacePlayers(remote))

	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "r1", players[0].ID)
}
