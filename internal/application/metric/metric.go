package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики - количество запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - время обработки запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// WS метрики - количество активных соединений
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	queueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broker_queue_length",
			Help: "Количество соединений в очереди поиска собеседника",
		},
	)

	pairRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broker_pair_rooms",
			Help: "Количество активных парных сессий",
		},
	)

	socialRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broker_social_rooms",
			Help: "Количество активных комнат",
		},
	)

	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_events_total",
			Help: "Входящие события по типу",
		},
		[]string{"type"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_matches_total",
			Help: "Количество созданных пар",
		},
	)

	droppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_dropped_events_total",
			Help: "Исходящие события, которые не удалось доставить",
		},
		[]string{"reason"},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

// SetBrokerState обновляет gauges реестров брокера
func SetBrokerState(queued, pairs, rooms int) {
	queueLength.Set(float64(queued))
	pairRooms.Set(float64(pairs))
	socialRooms.Set(float64(rooms))
}

func IncrementEvent(eventType string) {
	eventsTotal.WithLabelValues(eventType).Inc()
}

func IncrementMatches() {
	matchesTotal.Inc()
}

func IncrementDropped(reason string) {
	droppedTotal.WithLabelValues(reason).Inc()
}
