package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Node.OriginHost != "diampeer.example.com" {
		t.Errorf("default originHost = %q", cfg.Node.OriginHost)
	}
	if cfg.Node.ListenAddr != "0.0.0.0:3868" {
		t.Errorf("default listenAddr = %q", cfg.Node.ListenAddr)
	}
	if cfg.Watchdog.IdleTimeout != 30*time.Second {
		t.Errorf("default idleTimeout = %s", cfg.Watchdog.IdleTimeout)
	}
	if cfg.Transport.MaxFrameSize != 1<<20 {
		t.Errorf("default maxFrameSize = %d", cfg.Transport.MaxFrameSize)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != 9091 {
		t.Errorf("default metrics = %+v", cfg.Metrics)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
node:
  originHost: hss01.operator.net
  originRealm: operator.net
  productName: hss-frontend
  vendorID: 10415
  listenAddr: 127.0.0.1:3868
peers:
  - name: dra1
    host: 10.0.0.1
    port: 3868
    realm: operator.net
    persistent: true
watchdog:
  idleTimeout: 15s
  dwaTimeout: 5s
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Node.OriginHost != "hss01.operator.net" {
		t.Errorf("originHost = %q", cfg.Node.OriginHost)
	}
	if cfg.Node.VendorID != 10415 {
		t.Errorf("vendorID = %d", cfg.Node.VendorID)
	}
	if len(cfg.Peers) != 1 || cfg.Peers[0].Host != "10.0.0.1" || !cfg.Peers[0].Persistent {
		t.Errorf("peers = %+v", cfg.Peers)
	}
	if cfg.Watchdog.IdleTimeout != 15*time.Second {
		t.Errorf("idleTimeout = %s", cfg.Watchdog.IdleTimeout)
	}
	// Untouched sections keep their defaults.
	if cfg.Watchdog.CEATimeout != 5*time.Second {
		t.Errorf("ceaTimeout = %s", cfg.Watchdog.CEATimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty origin host", func(c *Config) { c.Node.OriginHost = "" }},
		{"zero vendor id", func(c *Config) { c.Node.VendorID = 0 }},
		{"peer without host", func(c *Config) { c.Peers = []PeerConfig{{Name: "x", Port: 3868}} }},
		{"peer port out of range", func(c *Config) { c.Peers = []PeerConfig{{Name: "x", Host: "h", Port: 70000}} }},
		{"zero dwa timeout", func(c *Config) { c.Watchdog.DWATimeout = 0 }},
		{"sweep exceeds idle", func(c *Config) {
			c.Watchdog.SweepInterval = time.Minute
			c.Watchdog.IdleTimeout = time.Second
		}},
		{"tiny frame size", func(c *Config) { c.Transport.MaxFrameSize = 8 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"metrics without path", func(c *Config) { c.Metrics.Path = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestConversionHelpers(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Node.AuthAppIDs = []uint32{4, 16777251}

	id := cfg.Node.Identity()
	if id.OriginHost != cfg.Node.OriginHost || len(id.AuthApplicationIDs) != 2 {
		t.Errorf("Identity = %+v", id)
	}

	pc := cfg.PeerConfig()
	if pc.IdleTimeout != cfg.Watchdog.IdleTimeout {
		t.Errorf("PeerConfig idle = %s", pc.IdleTimeout)
	}
	if pc.Connection.MaxFrameSize != cfg.Transport.MaxFrameSize {
		t.Errorf("PeerConfig frame size = %d", pc.Connection.MaxFrameSize)
	}

	p := (&PeerConfig{Name: "dra1", Host: "10.0.0.1", Port: 3868}).Peer()
	if p.Addr() != "10.0.0.1:3868" {
		t.Errorf("Peer addr = %q", p.Addr())
	}
}
