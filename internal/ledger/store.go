package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new LedgerStore backed by the given database.
func New(db *sql.DB) LedgerStore {
	return &store{
		db: db,
	}
}

func (s *store) AddPlayer(name string, gender Gender, level Level) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Player{
		ID:     uuid.New().String(),
		Name:   name,
		Gender: gender,
		Level:  level,
		Active: true,
		Status: StatusFree,
	}
	_, err := s.db.Exec(`
		INSERT INTO players (id, name, gender, level, active, status, visit_count, shuttle_count)
		VALUES (?, ?, ?, ?, 1, ?, 0, 0)
	`, p.ID, p.Name, string(p.Gender), int(p.Level), string(p.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to add player: %w", err)
	}

	log.Info("Added player", "playerID", p.ID, "name", p.Name, "player_level", p.Level.String())
	return p, nil
}

// UpdatePlayer replaces the stored record matching by id. Derived fields are
// overwritten with whatever the caller supplies.
func (s *store) UpdatePlayer(p Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE players
		SET name = ?, gender = ?, level = ?, active = ?, status = ?, visit_count = ?, shuttle_count = ?
		WHERE id = ?
	`, p.Name, string(p.Gender), int(p.Level), p.Active, string(p.Status), p.VisitCount, p.ShuttleCount, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	return nil
}

func (s *store) GetPlayer(id string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlayerLocked(id)
}

func (s *store) getPlayerLocked(id string) (*Player, error) {
	row := s.db.QueryRow(`
		SELECT id, name, gender, level, active, status, visit_count, shuttle_count
		FROM players WHERE id = ?
	`, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *store) GetPlayers(ids []string) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlayersLocked(ids)
}

func (s *store) getPlayersLocked(ids []string) ([]Player, error) {
	players := make([]Player, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, err := s.getPlayerLocked(id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			players = append(players, *p)
		}
	}
	return players, nil
}

func (s *store) GetAllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, gender, level, active, status, visit_count, shuttle_count
		FROM players ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// TogglePresence flips the player's membership in the viewed session's
// present set. No-op when no session is viewed.
func (s *store) TogglePresence(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.viewedSessionLocked()
	if err != nil {
		return err
	}
	if sess == nil {
		log.Debug("TogglePresence with no viewed session", "playerID", playerID)
		return nil
	}

	present := make([]string, 0, len(sess.PresentPlayerIDs)+1)
	found := false
	for _, id := range sess.PresentPlayerIDs {
		if id == playerID {
			found = true
			continue
		}
		present = append(present, id)
	}
	if !found {
		present = append(present, playerID)
	}

	return s.saveSessionRosterLocked(sess.ID, present, sess.PaymentStatus)
}

// TogglePaymentStatus flips the payment flag for a player within a session.
// Absent entries default to unpaid.
func (s *store) TogglePaymentStatus(playerID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSessionLocked(sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	if sess.PaymentStatus == nil {
		sess.PaymentStatus = make(map[string]bool)
	}
	sess.PaymentStatus[playerID] = !sess.PaymentStatus[playerID]

	return s.saveSessionRosterLocked(sess.ID, sess.PresentPlayerIDs, sess.PaymentStatus)
}

func (s *store) saveSessionRosterLocked(sessionID string, present []string, payments map[string]bool) error {
	presentJSON, err := json.Marshal(present)
	if err != nil {
		return fmt.Errorf("failed to marshal present ids: %w", err)
	}
	if payments == nil {
		payments = map[string]bool{}
	}
	paymentJSON, err := json.Marshal(payments)
	if err != nil {
		return fmt.Errorf("failed to marshal payment map: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE sessions SET present_ids_json = ?, payment_json = ? WHERE id = ?
	`, string(presentJSON), string(paymentJSON), sessionID)
	if err != nil {
		return fmt.Errorf("failed to save session roster: %w", err)
	}
	return nil
}

// AddGame records a new 2v2 game against the viewed session. Validation and
// conflict failures return before anything is written, so the collections
// stay untouched.
func (s *store) AddGame(params GameParams) (*GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	viewed, err := s.viewedSessionLocked()
	if err != nil {
		return nil, err
	}
	if viewed == nil {
		return nil, ErrNoViewedSession
	}

	players, err := s.getPlayersLocked(params.PlayerIDs)
	if err != nil {
		return nil, err
	}
	if len(params.PlayerIDs) != 4 || len(players) != 4 {
		return nil, ErrPlayerCount
	}

	active, err := s.activeSessionLocked()
	if err != nil {
		return nil, err
	}
	isForActive := active != nil && active.ID == viewed.ID

	if isForActive {
		for _, p := range players {
			if p.Status == StatusPlaying {
				return nil, fmt.Errorf("%w: %s", ErrPlayerBusy, p.Name)
			}
		}
	}

	if params.ShuttlesUsed <= 0 {
		params.ShuttlesUsed = 1
	}

	game := &GameRecord{
		ID:           uuid.New().String(),
		SessionID:    viewed.ID,
		CreatedAt:    time.Now().Unix(),
		SequenceID:   params.SequenceID,
		ShuttlesUsed: params.ShuttlesUsed,
		PlayerIDs:    params.PlayerIDs,
		GenderMix:    GenderMix(players),
		AvgLevel:     AvgLevel(players),
		Notes:        params.Notes,
		IsActive:     isForActive,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	playersJSON, err := json.Marshal(game.PlayerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player ids: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO games (id, session_id, created_at, position, sequence_id, shuttles_used, players_json, gender_mix, avg_level, notes, is_active)
		VALUES (?, ?, ?, (SELECT COUNT(*) FROM games WHERE session_id = ?), ?, ?, ?, ?, ?, ?, ?)
	`, game.ID, game.SessionID, game.CreatedAt, game.SessionID, game.SequenceID, game.ShuttlesUsed,
		string(playersJSON), game.GenderMix, game.AvgLevel, game.Notes, game.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game: %w", err)
	}

	share := game.ShuttlesUsed / 4
	for _, p := range players {
		if isForActive {
			_, err = tx.Exec(`UPDATE players SET shuttle_count = shuttle_count + ?, status = ? WHERE id = ?`,
				share, string(StatusPlaying), p.ID)
		} else {
			_, err = tx.Exec(`UPDATE players SET shuttle_count = shuttle_count + ? WHERE id = ?`, share, p.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update player %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit game: %w", err)
	}

	log.Info("Recorded game", "gameID", game.ID, "sessionID", game.SessionID, "active", game.IsActive)
	return game, nil
}

// UpdateGame replaces a game's lineup, sequence id, shuttle count and notes,
// recomputing derived fields and reconciling each player's shuttle share.
// The old per-player share is subtracted and the new one added independently,
// so a player kept in the lineup nets the difference.
func (s *store) UpdateGame(gameID string, params GameParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.getGameLocked(gameID)
	if err != nil {
		return err
	}
	if game == nil {
		log.Debug("UpdateGame on unknown game", "gameID", gameID)
		return nil
	}

	players, err := s.getPlayersLocked(params.PlayerIDs)
	if err != nil {
		return err
	}
	if len(params.PlayerIDs) != 4 || len(players) != 4 {
		return ErrPlayerCount
	}

	active, err := s.activeSessionLocked()
	if err != nil {
		return err
	}
	isForActive := active != nil && active.ID == game.SessionID

	oldShare := orOne(game.ShuttlesUsed) / 4
	newShare := orOne(params.ShuttlesUsed) / 4

	oldIDs := make(map[string]bool, len(game.PlayerIDs))
	for _, id := range game.PlayerIDs {
		oldIDs[id] = true
	}
	newIDs := make(map[string]bool, len(params.PlayerIDs))
	for _, id := range params.PlayerIDs {
		newIDs[id] = true
	}

	affected := make(map[string]bool)
	for id := range oldIDs {
		affected[id] = true
	}
	for id := range newIDs {
		affected[id] = true
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for id := range affected {
		var adjustment float64
		if oldIDs[id] {
			adjustment -= oldShare
		}
		if newIDs[id] {
			adjustment += newShare
		}
		if adjustment != 0 {
			if _, err := tx.Exec(`UPDATE players SET shuttle_count = shuttle_count + ? WHERE id = ?`, adjustment, id); err != nil {
				return fmt.Errorf("failed to adjust shuttle count for %s: %w", id, err)
			}
		}
		if isForActive {
			switch {
			case oldIDs[id] && !newIDs[id]:
				if _, err := tx.Exec(`UPDATE players SET status = ? WHERE id = ?`, string(StatusFree), id); err != nil {
					return fmt.Errorf("failed to free player %s: %w", id, err)
				}
			case !oldIDs[id] && newIDs[id]:
				if _, err := tx.Exec(`UPDATE players SET status = ? WHERE id = ?`, string(StatusPlaying), id); err != nil {
					return fmt.Errorf("failed to mark player %s playing: %w", id, err)
				}
			}
		}
	}

	playersJSON, err := json.Marshal(params.PlayerIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal player ids: %w", err)
	}
	_, err = tx.Exec(`
		UPDATE games
		SET players_json = ?, sequence_id = ?, shuttles_used = ?, notes = ?, gender_mix = ?, avg_level = ?
		WHERE id = ?
	`, string(playersJSON), params.SequenceID, params.ShuttlesUsed, params.Notes,
		GenderMix(players), AvgLevel(players), gameID)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game update: %w", err)
	}

	log.Info("Updated game", "gameID", gameID)
	return nil
}

// EndGame is the one-way active→finished transition. Missing or already
// finished games are a silent no-op.
func (s *store) EndGame(gameID string, scores *Scores) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endGameLocked(gameID, scores)
}

func (s *store) endGameLocked(gameID string, scores *Scores) error {
	game, err := s.getGameLocked(gameID)
	if err != nil {
		return err
	}
	if game == nil || !game.IsActive {
		return nil
	}

	active, err := s.activeSessionLocked()
	if err != nil {
		return err
	}
	isForActive := active != nil && active.ID == game.SessionID

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if scores != nil {
		_, err = tx.Exec(`UPDATE games SET is_active = 0, score_a = ?, score_b = ? WHERE id = ?`,
			scores.TeamA, scores.TeamB, gameID)
	} else {
		_, err = tx.Exec(`UPDATE games SET is_active = 0 WHERE id = ?`, gameID)
	}
	if err != nil {
		return fmt.Errorf("failed to end game: %w", err)
	}

	if isForActive {
		for _, id := range game.PlayerIDs {
			if _, err := tx.Exec(`UPDATE players SET status = ? WHERE id = ?`, string(StatusFree), id); err != nil {
				return fmt.Errorf("failed to free player %s: %w", id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game end: %w", err)
	}

	log.Info("Ended game", "gameID", gameID)
	return nil
}

// UpdateGameScores is a pure field update with no status or count side effects.
func (s *store) UpdateGameScores(gameID string, scores Scores) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE games SET score_a = ?, score_b = ? WHERE id = ?`,
		scores.TeamA, scores.TeamB, gameID)
	if err != nil {
		return fmt.Errorf("failed to update scores: %w", err)
	}
	return nil
}

func (s *store) GetGame(id string) (*GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getGameLocked(id)
}

func (s *store) getGameLocked(id string) (*GameRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, session_id, created_at, sequence_id, shuttles_used, players_json, gender_mix, avg_level, notes, is_active, score_a, score_b
		FROM games WHERE id = ?
	`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

func (s *store) GetSessionGames(sessionID string) ([]GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionGamesLocked(sessionID)
}

func (s *store) sessionGamesLocked(sessionID string) ([]GameRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, created_at, sequence_id, shuttles_used, players_json, gender_mix, avg_level, notes, is_active, score_a, score_b
		FROM games WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session games: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

func (s *store) GetAllGames() ([]GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, session_id, created_at, sequence_id, shuttles_used, players_json, gender_mix, avg_level, notes, is_active, score_a, score_b
		FROM games ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// StartSession opens a new session unless one is already active, in which
// case the existing session is returned untouched.
func (s *store) StartSession() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.activeSessionLocked()
	if err != nil {
		return nil, err
	}
	if active != nil {
		log.Debug("StartSession with a session already active", "sessionID", active.ID)
		return active, nil
	}

	settings, err := s.getSettingsLocked()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:               uuid.New().String(),
		Name:             "Session - " + now.Format("02/01/2006"),
		StartTime:        now.Unix(),
		Currency:         settings.Currency,
		PresentPlayerIDs: []string{},
		PaymentStatus:    map[string]bool{},
		GameIDs:          []string{},
	}
	_, err = s.db.Exec(`
		INSERT INTO sessions (id, name, start_time, currency, is_closed, present_ids_json, payment_json)
		VALUES (?, ?, ?, ?, 0, '[]', '{}')
	`, sess.ID, sess.Name, sess.StartTime, sess.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	s.viewedSessionID = sess.ID
	log.Info("Started session", "sessionID", sess.ID, "name", sess.Name)
	return sess, nil
}

// CloseSession ends every still-active game of the active session, counts a
// visit for each present player and closes the session, all in one
// transaction so the passes complete or fail as a unit.
func (s *store) CloseSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.activeSessionLocked()
	if err != nil {
		return err
	}
	if active == nil {
		log.Debug("CloseSession with no active session")
		return nil
	}

	games, err := s.sessionGamesLocked(active.ID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	freed := make(map[string]bool)
	for _, g := range games {
		if !g.IsActive {
			continue
		}
		if _, err := tx.Exec(`UPDATE games SET is_active = 0 WHERE id = ?`, g.ID); err != nil {
			return fmt.Errorf("failed to end game %s: %w", g.ID, err)
		}
		for _, id := range g.PlayerIDs {
			freed[id] = true
		}
	}
	for id := range freed {
		if _, err := tx.Exec(`UPDATE players SET status = ? WHERE id = ?`, string(StatusFree), id); err != nil {
			return fmt.Errorf("failed to free player %s: %w", id, err)
		}
	}

	for _, id := range active.PresentPlayerIDs {
		if _, err := tx.Exec(`UPDATE players SET visit_count = visit_count + 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to count visit for %s: %w", id, err)
		}
	}

	if _, err := tx.Exec(`UPDATE sessions SET is_closed = 1, end_time = ? WHERE id = ?`, time.Now().Unix(), active.ID); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session close: %w", err)
	}

	log.Info("Closed session", "sessionID", active.ID, "presentPlayers", len(active.PresentPlayerIDs))
	return nil
}

func (s *store) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSessionLocked(id)
}

func (s *store) getSessionLocked(id string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, name, start_time, end_time, currency, is_closed, present_ids_json, payment_json
		FROM sessions WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if err := s.fillGameIDsLocked(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *store) fillGameIDsLocked(sess *Session) error {
	rows, err := s.db.Query(`SELECT id FROM games WHERE session_id = ? ORDER BY position`, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to query session game ids: %w", err)
	}
	defer rows.Close()

	sess.GameIDs = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		sess.GameIDs = append(sess.GameIDs, id)
	}
	return rows.Err()
}

func (s *store) GetAllSessions() ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, start_time, end_time, currency, is_closed, present_ids_json, payment_json
		FROM sessions ORDER BY start_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			log.Error("Failed to scan session row", "error", err)
			continue
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range sessions {
		if err := s.fillGameIDsLocked(&sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *store) ActiveSession() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSessionLocked()
}

func (s *store) activeSessionLocked() (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, name, start_time, end_time, currency, is_closed, present_ids_json, payment_json
		FROM sessions WHERE is_closed = 0 LIMIT 1
	`)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	if err := s.fillGameIDsLocked(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetViewedSession selects a session for management. An empty id clears the
// selection, falling back to the active session.
func (s *store) SetViewedSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewedSessionID = sessionID
}

func (s *store) ViewedSession() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewedSessionLocked()
}

func (s *store) viewedSessionLocked() (*Session, error) {
	if s.viewedSessionID != "" {
		sess, err := s.getSessionLocked(s.viewedSessionID)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return sess, nil
		}
	}
	return s.activeSessionLocked()
}

func (s *store) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSettingsLocked()
}

func (s *store) getSettingsLocked() (Settings, error) {
	row := s.db.QueryRow(`SELECT currency, court_fee, shuttle_price, enable_auto_select FROM settings WHERE id = 'default'`)
	var settings Settings
	err := row.Scan(&settings.Currency, &settings.CourtFee, &settings.ShuttlePrice, &settings.EnableAutoSelect)
	if err == sql.ErrNoRows {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func (s *store) UpdateSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO settings (id, currency, court_fee, shuttle_price, enable_auto_select)
		VALUES ('default', ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			currency = excluded.currency,
			court_fee = excluded.court_fee,
			shuttle_price = excluded.shuttle_price,
			enable_auto_select = excluded.enable_auto_select;
	`, settings.Currency, settings.CourtFee, settings.ShuttlePrice, settings.EnableAutoSelect)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

func (s *store) ReplacePlayers(players []Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM players`); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}
	for _, p := range players {
		_, err := tx.Exec(`
			INSERT INTO players (id, name, gender, level, active, status, visit_count, shuttle_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, string(p.Gender), int(p.Level), p.Active, string(p.Status), p.VisitCount, p.ShuttleCount)
		if err != nil {
			return fmt.Errorf("failed to insert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) ReplaceSessions(sessions []Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	for _, sess := range sessions {
		presentJSON, err := json.Marshal(sess.PresentPlayerIDs)
		if err != nil {
			return fmt.Errorf("failed to marshal present ids: %w", err)
		}
		payments := sess.PaymentStatus
		if payments == nil {
			payments = map[string]bool{}
		}
		paymentJSON, err := json.Marshal(payments)
		if err != nil {
			return fmt.Errorf("failed to marshal payment map: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO sessions (id, name, start_time, end_time, currency, is_closed, present_ids_json, payment_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, sess.ID, sess.Name, sess.StartTime, sess.EndTime, sess.Currency, sess.IsClosed, string(presentJSON), string(paymentJSON))
		if err != nil {
			return fmt.Errorf("failed to insert session %s: %w", sess.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) ReplaceGames(games []GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM games`); err != nil {
		return fmt.Errorf("failed to clear games: %w", err)
	}
	for i, g := range games {
		playersJSON, err := json.Marshal(g.PlayerIDs)
		if err != nil {
			return fmt.Errorf("failed to marshal player ids: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO games (id, session_id, created_at, position, sequence_id, shuttles_used, players_json, gender_mix, avg_level, notes, is_active, score_a, score_b)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, g.ID, g.SessionID, g.CreatedAt, i, g.SequenceID, g.ShuttlesUsed, string(playersJSON),
			g.GenderMix, g.AvgLevel, g.Notes, g.IsActive, g.ScoreA, g.ScoreB)
		if err != nil {
			return fmt.Errorf("failed to insert game %s: %w", g.ID, err)
		}
	}
	return tx.Commit()
}

func orOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var (
		p      Player
		gender string
		level  int
		status string
	)
	err := scanner.Scan(&p.ID, &p.Name, &gender, &level, &p.Active, &status, &p.VisitCount, &p.ShuttleCount)
	if err != nil {
		return nil, err
	}
	p.Gender = Gender(gender)
	p.Level = Level(level)
	p.Status = PlayerStatus(status)
	return &p, nil
}

func scanSession(scanner interface{ Scan(...any) error }) (*Session, error) {
	var (
		sess        Session
		endTime     sql.NullInt64
		presentJSON string
		paymentJSON string
	)
	err := scanner.Scan(&sess.ID, &sess.Name, &sess.StartTime, &endTime, &sess.Currency, &sess.IsClosed, &presentJSON, &paymentJSON)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		sess.EndTime = &endTime.Int64
	}
	sess.PresentPlayerIDs = []string{}
	if presentJSON != "" {
		if err := json.Unmarshal([]byte(presentJSON), &sess.PresentPlayerIDs); err != nil {
			log.Error("Failed to unmarshal present_ids_json", "error", err, "sessionID", sess.ID)
		}
	}
	sess.PaymentStatus = map[string]bool{}
	if paymentJSON != "" {
		if err := json.Unmarshal([]byte(paymentJSON), &sess.PaymentStatus); err != nil {
			log.Error("Failed to unmarshal payment_json", "error", err, "sessionID", sess.ID)
		}
	}
	return &sess, nil
}

func scanGame(scanner interface{ Scan(...any) error }) (*GameRecord, error) {
	var (
		g           GameRecord
		playersJSON string
		notes       sql.NullString
		scoreA      sql.NullString
		scoreB      sql.NullString
	)
	err := scanner.Scan(&g.ID, &g.SessionID, &g.CreatedAt, &g.SequenceID, &g.ShuttlesUsed,
		&playersJSON, &g.GenderMix, &g.AvgLevel, &notes, &g.IsActive, &scoreA, &scoreB)
	if err != nil {
		return nil, err
	}
	g.Notes = notes.String
	g.ScoreA = scoreA.String
	g.ScoreB = scoreB.String
	g.PlayerIDs = []string{}
	if playersJSON != "" {
		if err := json.Unmarshal([]byte(playersJSON), &g.PlayerIDs); err != nil {
			log.Error("Failed to unmarshal players_json", "error", err, "gameID", g.ID)
		}
	}
	return &g, nil
}

func collectGames(rows *sql.Rows) ([]GameRecord, error) {
	var games []GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			log.Error("Failed to scan game row", "error", err)
			continue
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}
