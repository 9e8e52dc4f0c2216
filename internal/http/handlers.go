package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kritsw/courtledger/internal/export"
	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/kritsw/courtledger/internal/pubsub"
	"github.com/kritsw/courtledger/internal/selector"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// writeJSON renders v as the response body. Encoding failures are logged
// but too late to change the status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeStoreError maps ledger sentinel errors onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNoViewedSession), errors.Is(err, ledger.ErrPlayerCount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrPlayerBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error("Store operation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) AddPlayerHandler() http.HandlerFunc {
	type request struct {
		Name   string `json:"name"`
		Gender string `json:"gender"`
		Level  string `json:"level"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "Player name is required", http.StatusBadRequest)
			return
		}

		player, err := s.Store.AddPlayer(req.Name, ledger.Gender(req.Gender), ledger.ParseLevel(req.Level))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		log.Info("Added player", "id", player.ID, "name", player.Name)
		s.pushPlayers()
		writeJSON(w, http.StatusOK, player)
	}
}

func (s *Server) UpdatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var player ledger.Player
		if err := json.NewDecoder(r.Body).Decode(&player); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if player.ID == "" {
			http.Error(w, "Player id is required", http.StatusBadRequest)
			return
		}

		if err := s.Store.UpdatePlayer(player); err != nil {
			writeStoreError(w, err)
			return
		}
		s.pushPlayers()
		writeJSON(w, http.StatusOK, player)
	}
}

func (s *Server) TogglePresenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			http.Error(w, "playerID is required", http.StatusBadRequest)
			return
		}

		if err := s.Store.TogglePresence(playerID); err != nil {
			writeStoreError(w, err)
			return
		}
		s.pushSessions()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) TogglePaymentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		sessionID := r.URL.Query().Get("sessionID")
		if playerID == "" || sessionID == "" {
			http.Error(w, "playerID and sessionID are required", http.StatusBadRequest)
			return
		}

		if err := s.Store.TogglePaymentStatus(playerID, sessionID); err != nil {
			writeStoreError(w, err)
			return
		}
		s.pushSessions()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) ListGamesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			games, err := s.Store.GetAllGames()
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, games)
			return
		}

		games, err := s.Store.GetSessionGames(sessionID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func (s *Server) AddGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params ledger.GameParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		game, err := s.Store.AddGame(params)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		s.Metrics.IncGamesRecorded()
		log.Info("Recorded game", "id", game.ID, "session", game.SessionID, "sequence", game.SequenceID)

		if s.pubsub != nil {
			event := pubsub.GameRecordedEvent{
				GameID:    game.ID,
				SessionID: game.SessionID,
				PlayerIDs: game.PlayerIDs,
			}
			if err := s.pubsub.SendMessage(pubsub.EventGameRecorded, event); err != nil {
				log.Error("Failed to publish game event", "error", err)
			}
		}
		s.pushGames()
		s.pushPlayers()
		writeJSON(w, http.StatusOK, game)
	}
}

func (s *Server) UpdateGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameID")
		if gameID == "" {
			http.Error(w, "gameID is required", http.StatusBadRequest)
			return
		}

		var params ledger.GameParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if err := s.Store.UpdateGame(gameID, params); err != nil {
			writeStoreError(w, err)
			return
		}
		s.pushGames()
		s.pushPlayers()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) EndGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameID")
		if gameID == "" {
			http.Error(w, "gameID is required", http.StatusBadRequest)
			return
		}

		var scores *ledger.Scores
		if r.Body != nil {
			body, err := io.ReadAll(r.Body)
			if err == nil && len(body) > 0 {
				scores = &ledger.Scores{}
				if err := json.Unmarshal(body, scores); err != nil {
					http.Error(w, "Invalid JSON", http.StatusBadRequest)
					return
				}
			}
		}

		if err := s.Store.EndGame(gameID, scores); err != nil {
			writeStoreError(w, err)
			return
		}

		if scores != nil && s.Notifier != nil {
			s.notifyGameResult(gameID, isDryRunFromContext(r))
		}
		s.pushGames()
		s.pushPlayers()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) UpdateScoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameID")
		if gameID == "" {
			http.Error(w, "gameID is required", http.StatusBadRequest)
			return
		}

		var scores ledger.Scores
		if err := json.NewDecoder(r.Body).Decode(&scores); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if err := s.Store.UpdateGameScores(gameID, scores); err != nil {
			writeStoreError(w, err)
			return
		}
		s.pushGames()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) notifyGameResult(gameID string, dryRun bool) {
	game, err := s.Store.GetGame(gameID)
	if err != nil || game == nil {
		return
	}
	players, err := s.Store.GetPlayers(game.PlayerIDs)
	if err != nil {
		return
	}
	if err := s.Notifier.SendGameResult(game, players, dryRun); err != nil {
		log.Error("Failed to send game result notification", "error", err, "gameID", gameID)
	}
}

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Store.GetAllSessions()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

func (s *Server) StartSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Store.StartSession()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		log.Info("Session started", "id", sess.ID, "name", sess.Name)
		s.pushSessions()
		writeJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) CloseSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Store.ActiveSession()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if sess == nil {
			http.Error(w, "No active session", http.StatusBadRequest)
			return
		}

		if err := s.Store.CloseSession(); err != nil {
			writeStoreError(w, err)
			return
		}
		s.Metrics.IncSessionsClosed()
		log.Info("Session closed", "id", sess.ID)

		if s.Notifier != nil {
			s.notifySessionSummary(sess.ID, isDryRunFromContext(r))
		}
		if s.pubsub != nil {
			if err := s.pubsub.SendMessage(pubsub.EventSessionClosed, pubsub.SessionClosedEvent{SessionID: sess.ID}); err != nil {
				log.Error("Failed to publish session close event", "error", err)
			}
		}
		if s.Syncer != nil {
			if err := s.Syncer.PushAll(); err != nil {
				log.Error("Failed to push state after session close", "error", err)
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Session closed")
	}
}

func (s *Server) notifySessionSummary(sessionID string, dryRun bool) {
	sess, err := s.Store.GetSession(sessionID)
	if err != nil || sess == nil {
		return
	}
	costs, settings, err := s.sessionCosts(sess)
	if err != nil {
		log.Error("Failed to compute session costs", "error", err, "sessionID", sessionID)
		return
	}
	if err := s.Notifier.SendSessionSummary(sess, costs, settings, dryRun); err != nil {
		log.Error("Failed to send session summary", "error", err, "sessionID", sessionID)
	}
}

func (s *Server) sessionCosts(sess *ledger.Session) ([]ledger.PlayerCost, ledger.Settings, error) {
	settings, err := s.Store.GetSettings()
	if err != nil {
		return nil, settings, err
	}
	games, err := s.Store.GetSessionGames(sess.ID)
	if err != nil {
		return nil, settings, err
	}
	players, err := s.Store.GetPlayers(sess.PresentPlayerIDs)
	if err != nil {
		return nil, settings, err
	}
	return ledger.SessionCosts(settings, sess, games, players), settings, nil
}

func (s *Server) ViewSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		s.Store.SetViewedSession(sessionID)

		sess, err := s.Store.ViewedSession()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if sess == nil {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "No session viewed")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) SessionCostsHandler() http.HandlerFunc {
	type response struct {
		Session *ledger.Session     `json:"session"`
		Costs   []ledger.PlayerCost `json:"costs"`
		Total   float64             `json:"total"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")

		var sess *ledger.Session
		var err error
		if sessionID == "" {
			sess, err = s.Store.ViewedSession()
		} else {
			sess, err = s.Store.GetSession(sessionID)
		}
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if sess == nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}

		costs, settings, err := s.sessionCosts(sess)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		games, err := s.Store.GetSessionGames(sess.ID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, response{
			Session: sess,
			Costs:   costs,
			Total:   ledger.SessionTotalCost(settings, len(sess.PresentPlayerIDs), games),
		})
	}
}

// freePresentPlayers returns the present players of the viewed session that
// are not currently in a game.
func (s *Server) freePresentPlayers() ([]ledger.Player, error) {
	sess, err := s.Store.ViewedSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ledger.ErrNoViewedSession
	}

	players, err := s.Store.GetPlayers(sess.PresentPlayerIDs)
	if err != nil {
		return nil, err
	}

	free := make([]ledger.Player, 0, len(players))
	for _, p := range players {
		if p.Status == ledger.StatusFree {
			free = append(free, p)
		}
	}
	return free, nil
}

func (s *Server) SuggestBalancedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := s.Store.GetSettings()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !settings.EnableAutoSelect {
			http.Error(w, "Auto-select is disabled", http.StatusForbidden)
			return
		}

		pool, err := s.freePresentPlayers()
		if err != nil {
			writeStoreError(w, err)
			return
		}

		start := time.Now()
		pairing, err := selector.Balanced(pool)
		s.Metrics.ObserveSelectorDuration(time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, selector.ErrInsufficientPlayers) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pairing)
	}
}

func (s *Server) SuggestRandomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := s.Store.GetSettings()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !settings.EnableAutoSelect {
			http.Error(w, "Auto-select is disabled", http.StatusForbidden)
			return
		}

		pool, err := s.freePresentPlayers()
		if err != nil {
			writeStoreError(w, err)
			return
		}

		gender := selector.GenderFilter(r.URL.Query().Get("gender"))
		if gender == "" {
			gender = selector.GenderAny
		}
		var level ledger.Level
		if name := r.URL.Query().Get("level"); name != "" {
			level = ledger.ParseLevel(name)
		}

		players, err := selector.Suggest(pool, gender, level)
		if err != nil {
			if errors.Is(err, selector.ErrInsufficientPlayers) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) ExportPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeCSV(w, "players.csv", export.PlayersCSV(players))
	}
}

func (s *Server) ExportSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Store.GetAllSessions()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeCSV(w, "sessions.csv", export.SessionsCSV(sessions))
	}
}

func (s *Server) ExportGamesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")

		var games []ledger.GameRecord
		var err error
		if sessionID == "" {
			games, err = s.Store.GetAllGames()
		} else {
			games, err = s.Store.GetSessionGames(sessionID)
		}
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeCSV(w, "games.csv", export.GamesCSV(games))
	}
}

func writeCSV(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, body)
}

func (s *Server) SyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Syncer == nil {
			http.Error(w, "Sync is not configured", http.StatusServiceUnavailable)
			return
		}

		if r.URL.Query().Get("direction") == "push" {
			if err := s.Syncer.PushAll(); err != nil {
				log.Error("Push sync failed", "error", err)
				http.Error(w, "Push sync failed", http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, "Push completed")
			return
		}

		if err := s.Syncer.PullAll(); err != nil {
			log.Error("Pull sync failed", "error", err)
			http.Error(w, "Pull sync failed", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "Pull completed")
	}
}

func (s *Server) PubSubPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received pubsub push", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data       string            `json:"data"` // base64-encoded message payload
				Attributes map[string]string `json:"attributes"`
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		switch pubsub.EventType(pubsubMsg.Message.Attributes["type"]) {
		case pubsub.EventSyncRequested:
			var event pubsub.SyncRequestedEvent
			if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
				http.Error(w, "Invalid message payload", http.StatusBadRequest)
				return
			}
			log.Info("Sync requested", "reason", event.Reason)
			if s.Syncer != nil {
				if err := s.Syncer.PullAll(); err != nil {
					log.Error("Requested sync failed", "error", err)
				}
			}
		case pubsub.EventSessionClosed:
			var event pubsub.SessionClosedEvent
			if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
				http.Error(w, "Invalid message payload", http.StatusBadRequest)
				return
			}
			if s.Notifier != nil {
				s.notifySessionSummary(event.SessionID, isDryRunFromContext(r))
			}
		default:
			log.Warn("Unhandled pubsub event", "type", pubsubMsg.Message.Attributes["type"])
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) SettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			settings, err := s.Store.GetSettings()
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, settings)
			return
		}

		var settings ledger.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Store.UpdateSettings(settings); err != nil {
			writeStoreError(w, err)
			return
		}
		if s.Syncer != nil {
			if err := s.Syncer.PushSettings(); err != nil {
				log.Error("Failed to push settings", "error", err)
			}
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

// Best-effort push helpers. Sync failures never fail the request that
// triggered them.
func (s *Server) pushPlayers() {
	if s.Syncer == nil {
		return
	}
	if err := s.Syncer.PushPlayers(); err != nil {
		log.Error("Failed to push players", "error", err)
	}
}

func (s *Server) pushSessions() {
	if s.Syncer == nil {
		return
	}
	if err := s.Syncer.PushSessions(); err != nil {
		log.Error("Failed to push sessions", "error", err)
	}
}

func (s *Server) pushGames() {
	if s.Syncer == nil {
		return
	}
	if err := s.Syncer.PushGames(); err != nil {
		log.Error("Failed to push games", "error", err)
	}
}
