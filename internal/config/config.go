package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/stdiorpc/internal/audit"
	"github.com/danmuck/stdiorpc/internal/symtab"
)

// ClientConfig drives stdioctl.
type ClientConfig struct {
	ServerPath string
	ServerArgs []string
	Fallback   int64
	NoColor    bool
	Symbols    symtab.Table
}

// ServerConfig drives stdiod.
type ServerConfig struct {
	// AuditPath is the append-only request log. Empty disables it.
	AuditPath string
	Announce  bool
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerPath: "./stdiod",
		ServerArgs: []string{},
		Fallback:   0,
		Symbols:    symtab.Default(),
	}
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		AuditPath: audit.DefaultPath,
	}
}

type clientFile struct {
	ServerPath string           `toml:"server_path"`
	ServerArgs []string         `toml:"server_args"`
	Fallback   int64            `toml:"fallback"`
	NoColor    bool             `toml:"no_color"`
	Symbols    map[string]int64 `toml:"symbols"`
}

type serverFile struct {
	AuditPath string `toml:"audit_path"`
	Announce  bool   `toml:"announce"`
}

// LoadClientConfig applies the keys present in path on top of the defaults.
// Entries of [symbols] are merged into the default pool.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ClientConfig{}, fmt.Errorf("client config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("server_path") {
		cfg.ServerPath = strings.TrimSpace(raw.ServerPath)
	}
	if meta.IsDefined("server_args") {
		cfg.ServerArgs = append([]string{}, raw.ServerArgs...)
	}
	if meta.IsDefined("fallback") {
		cfg.Fallback = raw.Fallback
	}
	if meta.IsDefined("no_color") {
		cfg.NoColor = raw.NoColor
	}
	if meta.IsDefined("symbols") {
		extra, err := symtab.FromStrings(raw.Symbols)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("client config symbols: %w", err)
		}
		cfg.Symbols = cfg.Symbols.Merge(extra)
	}

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	var raw serverFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("load server config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ServerConfig{}, fmt.Errorf("server config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("audit_path") {
		cfg.AuditPath = strings.TrimSpace(raw.AuditPath)
	}
	if meta.IsDefined("announce") {
		cfg.Announce = raw.Announce
	}
	return cfg, nil
}

func (c ClientConfig) Validate() error {
	if strings.TrimSpace(c.ServerPath) == "" {
		return fmt.Errorf("client config missing server_path")
	}
	for i, arg := range c.ServerArgs {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("client config server_args[%d] contains NUL", i)
		}
	}
	return nil
}
