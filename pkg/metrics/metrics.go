package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ChatMetrics struct {
	ConnectionUp       prometheus.Gauge
	ConnectsTotal      prometheus.Counter
	ReconnectAttempts  prometheus.Counter
	ReconnectExhausted prometheus.Counter

	MessagesSent       *prometheus.CounterVec
	MessagesDispatched *prometheus.CounterVec
	MessagesDropped    prometheus.Counter
	DeserializeErrors  prometheus.Counter
}

type FavoritesMetrics struct {
	SyncsTotal          prometheus.Counter
	SyncErrors          prometheus.Counter
	OptimisticMutations *prometheus.CounterVec
	Rollbacks           prometheus.Counter
	FavoritesCount      prometheus.Gauge
}

type SessionMetrics struct {
	ActivityResets    prometheus.Counter
	WarningsShown     prometheus.Counter
	InactivityLogouts prometheus.Counter
}

type HttpMetrics struct {
	RequestsTotal      *prometheus.CounterVec
	ResponseStatusCode *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

type SystemMetrics struct {
	GoroutineCount prometheus.Gauge
}

type Metrics struct {
	Chat      ChatMetrics
	Favorites FavoritesMetrics
	Session   SessionMetrics
	Http      HttpMetrics
	System    SystemMetrics
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		Chat: ChatMetrics{
			ConnectionUp: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "chat_connection_up",
				Help:      "Состояние соединения с чат-сервером (1 — установлено)",
			}),
			ConnectsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_connects_total",
				Help:      "Общее количество установленных соединений с чат-сервером",
			}),
			ReconnectAttempts: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_reconnect_attempts_total",
				Help:      "Количество попыток переподключения",
			}),
			ReconnectExhausted: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_reconnect_exhausted_total",
				Help:      "Количество исчерпаний лимита попыток переподключения",
			}),
			MessagesSent: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_sent_total",
				Help:      "Количество отправленных сообщений, по типам",
			}, []string{"message_type"}),
			MessagesDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_dispatched_total",
				Help:      "Количество доставленных подписчикам сообщений, по типам",
			}, []string{"message_type"}),
			MessagesDropped: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_dropped_total",
				Help:      "Количество сообщений без зарегистрированного обработчика",
			}),
			DeserializeErrors: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_deserialize_errors_total",
				Help:      "Количество ошибок десериализации входящих сообщений",
			}),
		},
		Favorites: FavoritesMetrics{
			SyncsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorites_syncs_total",
				Help:      "Количество синхронизаций избранного с сервером",
			}),
			SyncErrors: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorites_sync_errors_total",
				Help:      "Количество ошибок синхронизации избранного",
			}),
			OptimisticMutations: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorites_optimistic_mutations_total",
				Help:      "Количество оптимистичных изменений избранного, по операциям",
			}, []string{"operation"}),
			Rollbacks: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorites_rollbacks_total",
				Help:      "Количество откатов оптимистичных изменений",
			}),
			FavoritesCount: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "favorites_count",
				Help:      "Текущее количество товаров в избранном",
			}),
		},
		Session: SessionMetrics{
			ActivityResets: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_activity_resets_total",
				Help:      "Количество сбросов таймера неактивности",
			}),
			WarningsShown: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_warnings_shown_total",
				Help:      "Количество показов предупреждения о выходе",
			}),
			InactivityLogouts: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_inactivity_logouts_total",
				Help:      "Количество принудительных выходов по неактивности",
			}),
		},
		Http: HttpMetrics{
			RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Количество HTTP-запросов, по методам и путям",
			}, []string{"method", "path"}),
			ResponseStatusCode: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_response_status_code_total",
				Help:      "Количество HTTP-ответов, по кодам статуса",
			}, []string{"status_code"}),
			RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Время обработки HTTP-запроса",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
			}, []string{"path"}),
		},
		System: SystemMetrics{
			GoroutineCount: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_goroutine_count",
				Help:      "Количество активных горутин",
			}),
		},
	}

	return m
}
