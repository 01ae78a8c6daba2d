package dashboard

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHost is the loopback interface used when no override is provided.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the default TCP port for the dashboard.
	DefaultPort = 8470
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Settings captures runtime configuration for the dashboard server.
type Settings struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewSettings fills defaults, applies the configured host/port, then the
// REVISOR_HOST and REVISOR_PORT environment overrides.
func NewSettings(host string, port int) Settings {
	s := Settings{
		Host:         DefaultHost,
		Port:         DefaultPort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
	if host = strings.TrimSpace(host); host != "" {
		s.Host = host
	}
	if isValidPort(port) {
		s.Port = port
	}
	s.applyEnvOverrides()
	return s
}

func (s *Settings) applyEnvOverrides() {
	if host := strings.TrimSpace(os.Getenv("REVISOR_HOST")); host != "" {
		s.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("REVISOR_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			s.Port = parsed
		}
	}
}

// Address joins host and port for net.Listen.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func isValidPort(port int) bool {
	return port > 0 && port < 65536
}
