// diampeerd is a standalone Diameter peer daemon: it listens for and
// dials peers, keeps them alive with the RFC 6733 watchdog, and
// exposes Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/telcoflow/diampeer/commands/base"
	"github.com/telcoflow/diampeer/internal/config"
	"github.com/telcoflow/diampeer/internal/version"
	"github.com/telcoflow/diampeer/peer"
	"github.com/telcoflow/diampeer/pkg/logger"
	"github.com/telcoflow/diampeer/pkg/metrics"
)

// redialInterval is the pause between reconnect attempts to a
// persistent peer.
const redialInterval = 5 * time.Second

// shutdownTimeout bounds the metrics server drain on exit.
const shutdownTimeout = 5 * time.Second

var configPath string

var rootCmd = &cobra.Command{
	Use:   "diampeerd",
	Short: "Diameter peer daemon",
	Long:  "diampeerd maintains RFC 6733 peer connections: capabilities exchange, device watchdog and orderly disconnect.",
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (YAML)")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.Full("diampeerd"))
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.SetLevel(cfg.Logging.Level)
	log := logger.Log

	log.Infow("diampeerd starting",
		"version", version.Version,
		"origin_host", cfg.Node.OriginHost,
		"listen", cfg.Node.ListenAddr,
		"peers", len(cfg.Peers))

	reg := prometheus.NewRegistry()
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(reg)
	}

	node := peer.NewNode(cfg.Node.Identity(),
		peer.WithConfig(cfg.PeerConfig()),
		peer.WithLogger(log),
		peer.WithMetrics(collector),
		peer.WithHandler(peer.Chain(
			peer.HandlerFunc(func(c *peer.Conn, m base.Message) {
				log.Warnw("unhandled application message",
					"host", c.HostIdentity(), "msg", m.String())
			}),
			peer.Recovery(log),
			peer.Logging(log),
		)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Node.ListenAddr != "" {
		if err := node.Listen(cfg.Node.ListenAddr); err != nil {
			return err
		}
	}

	// One goroutine per configured peer keeps the connection alive.
	for i := range cfg.Peers {
		p := cfg.Peers[i].Peer()
		g.Go(func() error {
			maintainPeer(gCtx, node, p, log)
			return nil
		})
	}

	// Disconnects are consumed for visibility; maintainPeer drives the
	// actual redial off the connection's Done channel.
	g.Go(func() error {
		for ev := range node.Events() {
			log.Infow("peer disconnected",
				"host", ev.HostIdentity,
				"cause", ev.Cause.String(),
				"err", ev.Err)
		}
		return nil
	})

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		g.Go(func() error {
			log.Infow("metrics server listening", "addr", metricsSrv.Addr, "path", cfg.Metrics.Path)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		log.Infow("shutting down")
		if metricsSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = metricsSrv.Shutdown(sctx)
		}
		return node.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Infow("diampeerd stopped")
	return nil
}

// maintainPeer dials p and, for persistent peers, redials after every
// disconnect until ctx is cancelled.
func maintainPeer(ctx context.Context, node *peer.Node, p *peer.Peer, log logger.Logger) {
	for {
		conn, err := node.DialPeer(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnw("peer dial failed", "peer", p.Name, "addr", p.Addr(), "err", err)
		} else {
			select {
			case <-conn.Done():
			case <-ctx.Done():
				return
			}
			if !p.Persistent {
				return
			}
		}
		select {
		case <-time.After(redialInterval):
		case <-ctx.Done():
			return
		}
	}
}
