// Package config loads the daemon configuration from file, environment
// and defaults via viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/telcoflow/diampeer/peer"
	"github.com/telcoflow/diampeer/pkg/connection"
)

// Config holds the daemon configuration.
type Config struct {
	Node      NodeConfig
	Peers     []PeerConfig
	Watchdog  WatchdogConfig
	Transport TransportConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
}

// NodeConfig holds the local node identity and listener settings.
type NodeConfig struct {
	OriginHost       string
	OriginRealm      string
	ProductName      string
	VendorID         uint32
	FirmwareRevision uint32
	AuthAppIDs       []uint32
	AcctAppIDs       []uint32
	HostIPAddresses  []string
	ListenAddr       string
}

// PeerConfig holds one remote peer to dial.
type PeerConfig struct {
	Name       string
	Host       string
	Port       int
	Realm      string
	Persistent bool
}

// WatchdogConfig holds the peer-layer timers.
type WatchdogConfig struct {
	CEATimeout        time.Duration
	DWATimeout        time.Duration
	IdleTimeout       time.Duration
	SweepInterval     time.Duration
	DisconnectTimeout time.Duration
}

// TransportConfig holds the per-connection transport settings.
type TransportConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxFrameSize int
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "text"
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// Load loads configuration from file and environment variables.
// Priority order (highest to lowest):
// 1. Environment variables (prefixed with DIAMPEER_)
// 2. Config file specified by configPath
// 3. config.yaml in standard paths
// 4. Hardcoded defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/diampeer")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("DIAMPEER")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; defaults and environment carry the day.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Node defaults
	v.SetDefault("node.originHost", "diampeer.example.com")
	v.SetDefault("node.originRealm", "example.com")
	v.SetDefault("node.productName", "diampeer")
	v.SetDefault("node.vendorID", 99999)
	v.SetDefault("node.firmwareRevision", 1)
	v.SetDefault("node.authAppIDs", []uint32{})
	v.SetDefault("node.acctAppIDs", []uint32{})
	v.SetDefault("node.hostIPAddresses", []string{})
	v.SetDefault("node.listenAddr", "0.0.0.0:3868")

	// Watchdog defaults
	v.SetDefault("watchdog.ceaTimeout", "5s")
	v.SetDefault("watchdog.dwaTimeout", "10s")
	v.SetDefault("watchdog.idleTimeout", "30s")
	v.SetDefault("watchdog.sweepInterval", "1s")
	v.SetDefault("watchdog.disconnectTimeout", "2s")

	// Transport defaults
	v.SetDefault("transport.readTimeout", "0s")
	v.SetDefault("transport.writeTimeout", "10s")
	v.SetDefault("transport.maxFrameSize", 1<<20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9091)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Node.Validate(); err != nil {
		return fmt.Errorf("node config: %w", err)
	}
	for i := range c.Peers {
		if err := c.Peers[i].Validate(); err != nil {
			return fmt.Errorf("peer %q: %w", c.Peers[i].Name, err)
		}
	}
	if err := c.Watchdog.Validate(); err != nil {
		return fmt.Errorf("watchdog config: %w", err)
	}
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}
	return nil
}

// Validate validates the NodeConfig.
func (c *NodeConfig) Validate() error {
	if c.OriginHost == "" {
		return fmt.Errorf("originHost is required")
	}
	if c.OriginRealm == "" {
		return fmt.Errorf("originRealm is required")
	}
	if c.ProductName == "" {
		return fmt.Errorf("productName is required")
	}
	if c.VendorID == 0 {
		return fmt.Errorf("vendorID must be non-zero")
	}
	return nil
}

// Validate validates the PeerConfig.
func (c *PeerConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// Validate validates the WatchdogConfig.
func (c *WatchdogConfig) Validate() error {
	if c.CEATimeout <= 0 {
		return fmt.Errorf("ceaTimeout must be positive")
	}
	if c.DWATimeout <= 0 {
		return fmt.Errorf("dwaTimeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idleTimeout must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweepInterval must be positive")
	}
	if c.SweepInterval > c.IdleTimeout {
		return fmt.Errorf("sweepInterval %s exceeds idleTimeout %s", c.SweepInterval, c.IdleTimeout)
	}
	return nil
}

// Validate validates the TransportConfig.
func (c *TransportConfig) Validate() error {
	if c.ReadTimeout < 0 {
		return fmt.Errorf("readTimeout must not be negative")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("writeTimeout must be positive")
	}
	if c.MaxFrameSize < 20 {
		return fmt.Errorf("maxFrameSize %d below the Diameter header size", c.MaxFrameSize)
	}
	return nil
}

// Validate validates the LoggingConfig.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Format)
	}
	return nil
}

// Validate validates the MetricsConfig.
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required when metrics are enabled")
	}
	return nil
}

// Identity converts the node section into a peer.Identity.
func (c *NodeConfig) Identity() peer.Identity {
	return peer.Identity{
		OriginHost:         c.OriginHost,
		OriginRealm:        c.OriginRealm,
		ProductName:        c.ProductName,
		VendorID:           c.VendorID,
		FirmwareRevision:   c.FirmwareRevision,
		AuthApplicationIDs: c.AuthAppIDs,
		AcctApplicationIDs: c.AcctAppIDs,
		HostIPAddresses:    c.HostIPAddresses,
	}
}

// PeerConfig converts the timer sections into a peer.Config.
func (c *Config) PeerConfig() *peer.Config {
	return &peer.Config{
		CEATimeout:        c.Watchdog.CEATimeout,
		DWATimeout:        c.Watchdog.DWATimeout,
		IdleTimeout:       c.Watchdog.IdleTimeout,
		SweepInterval:     c.Watchdog.SweepInterval,
		DisconnectTimeout: c.Watchdog.DisconnectTimeout,
		Connection: &connection.Config{
			ReadTimeout:  c.Transport.ReadTimeout,
			WriteTimeout: c.Transport.WriteTimeout,
			MaxFrameSize: c.Transport.MaxFrameSize,
		},
	}
}

// Peer converts one peer section into a peer.Peer.
func (c *PeerConfig) Peer() *peer.Peer {
	return &peer.Peer{
		Name:       c.Name,
		Host:       c.Host,
		Port:       c.Port,
		Realm:      c.Realm,
		Persistent: c.Persistent,
	}
}
