package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		GamesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtledger_games_recorded_total",
			Help: "The total number of games recorded in the ledger.",
		}),
		SessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtledger_sessions_closed_total",
			Help: "The total number of sessions closed.",
		}),
		SheetPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtledger_sheet_pushes_total",
			Help: "The total number of collection pushes to the remote sheet.",
		}),
		SheetPushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtledger_sheet_push_failures_total",
			Help: "The total number of remote sheet pushes that failed.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtledger_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtledger_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		SelectorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtledger_selector_duration_seconds",
			Help:    "The duration of balanced-team searches.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		StartupSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtledger_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.GamesRecorded,
		s.SessionsClosed,
		s.SheetPushes,
		s.SheetPushFailures,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.SelectorDuration,
		s.StartupSeconds,
	)

	return s
}

func (s *Service) IncGamesRecorded() {
	s.GamesRecorded.Inc()
}

func (s *Service) IncSessionsClosed() {
	s.SessionsClosed.Inc()
}

func (s *Service) IncSheetPushes() {
	s.SheetPushes.Inc()
}

func (s *Service) IncSheetPushFailures() {
	s.SheetPushFailures.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) ObserveSelectorDuration(duration float64) {
	s.SelectorDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupSeconds.Set(duration)
}
