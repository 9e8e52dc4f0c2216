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

type Server struct {
	Store          ledger.LedgerStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Syncer         syncer.Syncer
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
