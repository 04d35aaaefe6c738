package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RelayEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_events_total",
		Help: "Решения релея по входящим сообщениям",
	}, []string{"kind"})

	MappingsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_mappings_active",
		Help: "Количество живых маппингов сообщений",
	})

	BroadcastRecipients = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcast_recipients_total",
		Help: "Получатели рассылок",
	}, []string{"status"})

	PollFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poll_failures_total",
		Help: "Ошибки получения апдейтов",
	})

	PollBackoffs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poll_backoffs_total",
		Help: "Паузы после серии ошибок подряд",
	})

	APIErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Накопленные ошибки обращения к API",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 25, 30, 35, 40},
	}, []string{"component", "operation", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "status"})
)

// Kinds for RelayEvents.
const (
	EventDiscarded   = "discarded"
	EventBlocked     = "blocked"
	EventForwarded   = "forwarded"
	EventUndelivered = "undelivered"
	EventReply       = "admin_reply"
	EventStaleReply  = "stale_reply"
	EventCommand     = "command"
	EventBroadcast   = "broadcast"
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		RelayEvents,
		MappingsActive,
		BroadcastRecipients,
		PollFailures,
		PollBackoffs,
		APIErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	NetworkRequestDuration.WithLabelValues(component, operation, status).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(component, operation, status).Inc()
}

// IncRelayEvent увеличивает счётчик решений релея.
func IncRelayEvent(kind string) {
	RelayEvents.WithLabelValues(kind).Inc()
}
