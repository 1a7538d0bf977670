package main

import (
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/danmuck/stdiorpc/internal/config"
)

var (
	kind = kingpin.Flag("kind", "Config kind").
		Default(config.KindClient).
		Enum(config.KindClient, config.KindServer)
	output = kingpin.Flag("output", "Output path for config template (defaults to per-kind path)").
		Short('o').
		String()
	validate = kingpin.Flag("validate", "Validate an existing config file").
			Bool()
	input = kingpin.Flag("input", "Config path for validation (defaults to per-kind path)").
		Short('i').
		String()
	force = kingpin.Flag("force", "Overwrite existing config file").
		Short('f').
		Bool()
)

func main() {
	kingpin.Parse()
	msg, err := run(*kind, *output, *input, *validate, *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, msg)
}

func defaultPath(kind string) string {
	switch kind {
	case config.KindServer:
		return "stdiod.toml"
	default:
		return "stdioctl.toml"
	}
}

func run(kind, output, input string, validate, force bool) (string, error) {
	if validate {
		path := input
		if path == "" {
			path = defaultPath(kind)
		}
		if err := config.Validate(path, kind); err != nil {
			return "", err
		}
		return fmt.Sprintf("validated %s config at %s", kind, path), nil
	}

	target := output
	if target == "" {
		target = defaultPath(kind)
	}
	if err := config.WriteTemplate(target, kind, force); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %s config template to %s", kind, target), nil
}
