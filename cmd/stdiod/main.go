package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/danmuck/stdiorpc/internal/audit"
	"github.com/danmuck/stdiorpc/internal/config"
	"github.com/danmuck/stdiorpc/internal/exchange"
	"github.com/danmuck/stdiorpc/internal/logging"
)

var (
	configPath = kingpin.Flag("config", "Server config file (TOML)").
			Short('c').
			String()
	auditPath = kingpin.Flag("audit", "Append-only request log (overrides config)").
			String()
	noAudit = kingpin.Flag("no-audit", "Disable the request log").
		Bool()
	announce = kingpin.Flag("announce", "Send Log messages describing each exchange").
			Bool()
	memProfile = kingpin.Flag("memprofile", "Enable memory profiling").
			Bool()
)

func main() {
	kingpin.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stdiod: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *memProfile {
		defer profile.Start(profile.MemProfile).Stop()
	}
	logging.ConfigureRuntime()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return serve(os.Stdin, os.Stdout, cfg)
}

func loadConfig() (config.ServerConfig, error) {
	cfg := config.DefaultServerConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadServerConfig(*configPath); err != nil {
			return config.ServerConfig{}, err
		}
	}
	if *auditPath != "" {
		cfg.AuditPath = *auditPath
	}
	if *noAudit {
		cfg.AuditPath = ""
	}
	if *announce {
		cfg.Announce = true
	}
	return cfg, nil
}

// serve answers exchanges on in/out until the client closes in.
func serve(in io.Reader, out io.Writer, cfg config.ServerConfig) error {
	log := logging.New("stdiod")
	opts := []exchange.ServerOption{
		exchange.WithAnnounce(cfg.Announce),
		exchange.WithLogger(log),
	}
	if cfg.AuditPath != "" {
		sink, err := audit.Open(cfg.AuditPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				log.Error().Err(err).Msg("close audit log")
			}
		}()
		opts = append(opts, exchange.WithAudit(sink))
	}

	w := bufio.NewWriter(out)
	srv := exchange.NewServer(in, w, opts...)
	log.Info().Int("pid", os.Getpid()).Str("audit", cfg.AuditPath).Bool("announce", cfg.Announce).Msg("serving on stdio")
	if err := srv.Serve(); err != nil {
		return fmt.Errorf("serve (state %s): %w", srv.State(), err)
	}
	log.Info().Msg("client closed, exiting")
	return nil
}
