package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	GamesRecorded     prometheus.Counter
	SessionsClosed    prometheus.Counter
	SheetPushes       prometheus.Counter
	SheetPushFailures prometheus.Counter
	SlackNotifSent    prometheus.Counter
	SlackNotifFailed  prometheus.Counter
	SelectorDuration  prometheus.Histogram
	StartupSeconds    prometheus.Gauge
}
