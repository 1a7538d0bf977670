package main

import (
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/danmuck/stdiorpc/internal/child"
	"github.com/danmuck/stdiorpc/internal/config"
	"github.com/danmuck/stdiorpc/internal/exchange"
	"github.com/danmuck/stdiorpc/internal/logging"
	"github.com/danmuck/stdiorpc/internal/metrics"
	"github.com/danmuck/stdiorpc/internal/transcript"
)

var (
	app = kingpin.New("stdioctl", "Evaluate expressions on a stdiod child, answering its symbol queries.")

	configPath = app.Flag("config", "Client config file (TOML)").Short('c').String()
	serverPath = app.Flag("server", "Server binary to spawn (overrides config)").String()
	noColor    = app.Flag("no-color", "Disable colored output").Bool()
	summary    = app.Flag("summary", "Print an exchange summary to stderr on exit").Bool()

	runCmd = app.Command("run", "Read expressions from stdin, one per line").Default()

	evalCmd   = app.Command("eval", "Evaluate the given expressions and exit")
	evalExprs = evalCmd.Arg("expr", "Expressions to evaluate").Required().Strings()
	evalQuiet = evalCmd.Flag("quiet", "Print only results, one per line").Short('q').Bool()
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	if err := run(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "stdioctl: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string) error {
	logging.ConfigureRuntime()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	proc, err := child.Spawn(cfg.ServerPath, cfg.ServerArgs...)
	if err != nil {
		return err
	}
	lg := logging.New("stdioctl")
	lg.Debug().Int("pid", proc.Pid()).Str("server", cfg.ServerPath).Msg("spawned server")

	collector := metrics.NewCollector()
	quiet := cmd == evalCmd.FullCommand() && *evalQuiet
	renderer := transcript.NewStdoutRenderer(cfg.NoColor)
	bus := transcript.NewBus()
	if !quiet {
		if err := bus.Attach(renderer); err != nil {
			_ = proc.Kill()
			return err
		}
	}
	client := exchange.NewClient(proc.Stdin, proc.Stdout,
		exchange.WithResolver(cfg.Symbols),
		exchange.WithFallback(cfg.Fallback),
		exchange.WithObserver(bus),
	)

	var runErr error
	switch cmd {
	case evalCmd.FullCommand():
		runErr = evalAll(client, renderer, collector, *evalExprs, quiet)
	default:
		renderer.Pool(cfg.Symbols)
		runErr = interactive(os.Stdin, isTerminal(os.Stdin), client, renderer, collector)
	}

	if err := proc.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	if *summary {
		s, err := collector.Summary()
		if err != nil {
			return err
		}
		if err := s.Print(os.Stderr); err != nil {
			return err
		}
	}
	return runErr
}

func loadConfig() (config.ClientConfig, error) {
	cfg := config.DefaultClientConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadClientConfig(*configPath); err != nil {
			return config.ClientConfig{}, err
		}
	}
	if *serverPath != "" {
		cfg.ServerPath = *serverPath
	}
	if *noColor {
		cfg.NoColor = true
	}
	return cfg, cfg.Validate()
}
