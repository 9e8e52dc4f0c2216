package syncer

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/kritsw/courtledger/internal/metrics"
	"github.com/kritsw/courtledger/internal/sheets"
)

type service struct {
	store   ledger.LedgerStore
	client  sheets.SheetsClient
	metrics metrics.Metrics
}

// New creates a Syncer backed by the given sheet client.
func New(store ledger.LedgerStore, client sheets.SheetsClient, metrics metrics.Metrics) Syncer {
	return &service{
		store:   store,
		client:  client,
		metrics: metrics,
	}
}

var _ Syncer = (*service)(nil)

// PullAll fetches every entity from the sheet and replaces the local
// collections. An empty remote tab is treated as "nothing to pull" so a
// fresh sheet never wipes local state.
func (s *service) PullAll() error {
	if rows, err := s.client.Get(sheets.EntityPlayers); err != nil {
		return fmt.Errorf("pulling players: %w", err)
	} else if len(rows) > 0 {
		players := make([]ledger.Player, 0, len(rows))
		for _, r := range rows {
			players = append(players, sheets.RowToPlayer(r))
		}
		if err := s.store.ReplacePlayers(players); err != nil {
			return fmt.Errorf("replacing players: %w", err)
		}
		log.Info("Pulled players", "count", len(players))
	}

	if rows, err := s.client.Get(sheets.EntitySessions); err != nil {
		return fmt.Errorf("pulling sessions: %w", err)
	} else if len(rows) > 0 {
		sessions := make([]ledger.Session, 0, len(rows))
		for _, r := range rows {
			sessions = append(sessions, sheets.RowToSession(r))
		}
		if err := s.store.ReplaceSessions(sessions); err != nil {
			return fmt.Errorf("replacing sessions: %w", err)
		}
		log.Info("Pulled sessions", "count", len(sessions))
	}

	if rows, err := s.client.Get(sheets.EntityGames); err != nil {
		return fmt.Errorf("pulling games: %w", err)
	} else if len(rows) > 0 {
		games := make([]ledger.GameRecord, 0, len(rows))
		for _, r := range rows {
			games = append(games, sheets.RowToGame(r))
		}
		if err := s.store.ReplaceGames(games); err != nil {
			return fmt.Errorf("replacing games: %w", err)
		}
		log.Info("Pulled games", "count", len(games))
	}

	if rows, err := s.client.Get(sheets.EntitySettings); err != nil {
		return fmt.Errorf("pulling settings: %w", err)
	} else if len(rows) > 0 {
		if err := s.store.UpdateSettings(sheets.RowToSettings(rows[0])); err != nil {
			return fmt.Errorf("replacing settings: %w", err)
		}
		log.Info("Pulled settings")
	}

	return nil
}

func (s *service) PushPlayers() error {
	players, err := s.store.GetAllPlayers()
	if err != nil {
		return fmt.Errorf("loading players: %w", err)
	}
	rows := make([]sheets.Row, 0, len(players))
	for _, p := range players {
		rows = append(rows, sheets.PlayerToRow(p))
	}
	return s.push(sheets.EntityPlayers, rows)
}

func (s *service) PushSessions() error {
	sessions, err := s.store.GetAllSessions()
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	rows := make([]sheets.Row, 0, len(sessions))
	for _, sess := range sessions {
		rows = append(rows, sheets.SessionToRow(sess))
	}
	return s.push(sheets.EntitySessions, rows)
}

func (s *service) PushGames() error {
	games, err := s.store.GetAllGames()
	if err != nil {
		return fmt.Errorf("loading games: %w", err)
	}
	rows := make([]sheets.Row, 0, len(games))
	for _, g := range games {
		rows = append(rows, sheets.GameToRow(g))
	}
	return s.push(sheets.EntityGames, rows)
}

func (s *service) PushSettings() error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	return s.push(sheets.EntitySettings, []sheets.Row{sheets.SettingsToRow(settings)})
}

// PushAll pushes every entity, collecting errors rather than stopping at
// the first failed tab.
func (s *service) PushAll() error {
	return errors.Join(
		s.PushPlayers(),
		s.PushSessions(),
		s.PushGames(),
		s.PushSettings(),
	)
}

func (s *service) push(entity sheets.Entity, rows []sheets.Row) error {
	s.metrics.IncSheetPushes()
	if err := s.client.Upsert(entity, rows); err != nil {
		s.metrics.IncSheetPushFailures()
		log.Error("Failed to push to sheet backend", "entity", entity, "error", err)
		return fmt.Errorf("pushing %s: %w", entity, err)
	}
	return nil
}
