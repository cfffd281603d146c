package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"5000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:5173"`
	JWTSecret  string `env:"JWT_SECRET,required,notEmpty"`

	// ModerationEnabled - поднимать ли postgres и ручки report/block
	ModerationEnabled bool `env:"MODERATION_ENABLED" envDefault:"true"`

	WS        WebSocketConfig `envPrefix:"WS_"`
	Broker    BrokerConfig
	RateLimit RateLimitConfig `envPrefix:"REST_RATE_LIMIT_"`
	ICE       ICEConfig
	Postgres  PostgresConfig

	// ICEServers - STUN сервера, собранные из ICE.STUNURLs
	ICEServers []webrtc.ICEServer `env:"-"`
}

type WebSocketConfig struct {
	ReadLimit  int64         `env:"READ_LIMIT" envDefault:"65536"`
	PongWait   time.Duration `env:"PONG_WAIT" envDefault:"60s"`
	PingPeriod time.Duration `env:"PING_PERIOD" envDefault:"30s"`
	WriteWait  time.Duration `env:"WRITE_WAIT" envDefault:"5s"`
	SendBuffer int           `env:"SEND_BUFFER" envDefault:"64"`

	// Лимит входящих событий на одно соединение
	EventRate  float64 `env:"EVENT_RATE" envDefault:"50"`
	EventBurst int     `env:"EVENT_BURST" envDefault:"100"`
}

type BrokerConfig struct {
	RoomCodeAttempts int `env:"ROOM_CODE_ATTEMPTS" envDefault:"64"`
}

type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"100"`
	Window   time.Duration `env:"WINDOW" envDefault:"15m"`
}

type ICEConfig struct {
	STUNURLs []string `env:"STUN_URLS" envSeparator:"," envDefault:"stun:stun.l.google.com:19302"`

	// TURNSecret - static-auth-secret coturn, нужен для генерации временных кредов для фронта
	TURNHost   string        `env:"TURN_HOST"`
	TURNSecret string        `env:"TURN_SECRET"`
	TURNTTL    time.Duration `env:"TURN_TTL" envDefault:"1h"`
}

func (i *ICEConfig) TURNEnabled() bool {
	return i.TURNHost != "" && i.TURNSecret != ""
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"letztalk"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`

	ConnectAttempts uint64 `env:"POSTGRES_CONNECT_ATTEMPTS" envDefault:"5"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if c.WS.PingPeriod >= c.WS.PongWait {
		return nil, fmt.Errorf("WS_PING_PERIOD (%s) must be less than WS_PONG_WAIT (%s)", c.WS.PingPeriod, c.WS.PongWait)
	}

	if c.Broker.RoomCodeAttempts <= 0 {
		return nil, fmt.Errorf("ROOM_CODE_ATTEMPTS must be positive, got %d", c.Broker.RoomCodeAttempts)
	}

	c.ICEServers = make([]webrtc.ICEServer, 0, len(c.ICE.STUNURLs))
	for _, url := range c.ICE.STUNURLs {
		c.ICEServers = append(c.ICEServers, webrtc.ICEServer{URLs: []string{url}})
	}

	return &c, nil
}
