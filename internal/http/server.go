package http

import (
	"net/http"

	"github.com/kritsw/courtledger/internal/config"
	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/kritsw/courtledger/internal/metrics"
	"github.com/kritsw/courtledger/internal/notifier"
	"github.com/kritsw/courtledger/internal/pubsub"
	"github.com/kritsw/courtledger/internal/syncer"
)

func NewServer(store ledger.LedgerStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, syncer syncer.Syncer, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Syncer:         syncer,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/players/add", Chain(s.AddPlayerHandler(), paramsMiddleware))
	s.Router.Handle("/players/update", Chain(s.UpdatePlayerHandler(), paramsMiddleware))
	s.Router.Handle("/players/presence", Chain(s.TogglePresenceHandler(), paramsMiddleware))
	s.Router.Handle("/players/payment", Chain(s.TogglePaymentHandler(), paramsMiddleware))

	s.Router.Handle("/games", Chain(s.ListGamesHandler(), paramsMiddleware))
	s.Router.Handle("/games/add", Chain(s.AddGameHandler(), paramsMiddleware))
	s.Router.Handle("/games/update", Chain(s.UpdateGameHandler(), paramsMiddleware))
	s.Router.Handle("/games/end", Chain(s.EndGameHandler(), paramsMiddleware))
	s.Router.Handle("/games/scores", Chain(s.UpdateScoresHandler(), paramsMiddleware))

	s.Router.Handle("/sessions", Chain(s.ListSessionsHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/start", Chain(s.StartSessionHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/close", Chain(s.CloseSessionHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/view", Chain(s.ViewSessionHandler(), paramsMiddleware))
	s.Router.Handle("/sessions/costs", Chain(s.SessionCostsHandler(), paramsMiddleware))

	s.Router.Handle("/suggest/balanced", Chain(s.SuggestBalancedHandler(), paramsMiddleware))
	s.Router.Handle("/suggest/random", Chain(s.SuggestRandomHandler(), paramsMiddleware))

	s.Router.Handle("/export/players", Chain(s.ExportPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/export/sessions", Chain(s.ExportSessionsHandler(), paramsMiddleware))
	s.Router.Handle("/export/games", Chain(s.ExportGamesHandler(), paramsMiddleware))

	s.Router.Handle("/sync", Chain(s.SyncHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/push", Chain(s.PubSubPushHandler(), paramsMiddleware))
	s.Router.Handle("/settings", Chain(s.SettingsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
