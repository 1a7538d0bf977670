package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/stdiorpc/internal/audit"
	"github.com/danmuck/stdiorpc/internal/symtab"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestTemplatesLoad(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{KindClient, KindServer} {
		path := filepath.Join(dir, kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("write %s template: %v", kind, err)
		}
		if err := Validate(path, kind); err != nil {
			t.Fatalf("validate %s template: %v", kind, err)
		}
	}

	cfg, err := LoadClientConfig(filepath.Join(dir, "client.toml"))
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.Symbols['x'] != 10 || cfg.Symbols['◆'] != -5 || cfg.Symbols['▶'] != 100 {
		t.Fatalf("unexpected symbols: %v", cfg.Symbols)
	}
	if len(cfg.ServerArgs) != 2 || cfg.ServerArgs[0] != "--audit" {
		t.Fatalf("unexpected server args: %v", cfg.ServerArgs)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	path := writeFile(t, "client.toml", "server_path = \"x\"\n")
	if err := WriteTemplate(path, KindClient, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, KindClient, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "[symbols]") {
		t.Fatalf("template not written: %q", data)
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := Template("mirage"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if err := Validate("any.toml", "mirage"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestClientDefaultsAndOverrides(t *testing.T) {
	path := writeFile(t, "client.toml", "fallback = -1\n")
	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := DefaultClientConfig()
	if cfg.ServerPath != def.ServerPath {
		t.Fatalf("server_path default lost: %q", cfg.ServerPath)
	}
	if cfg.Fallback != -1 {
		t.Fatalf("fallback override lost: %d", cfg.Fallback)
	}
	if len(cfg.Symbols) != len(symtab.Default()) {
		t.Fatalf("default symbols lost: %v", cfg.Symbols)
	}
}

func TestClientConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty server path", "server_path = \"  \"\n"},
		{"multi-character symbol", "[symbols]\nab = 1\n"},
		{"unknown key", "sever_path = \"./stdiod\"\n"},
		{"bad toml", "server_path = \n"},
		{"wrong type", "fallback = \"zero\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadClientConfig(writeFile(t, "client.toml", tt.body)); err == nil {
				t.Fatalf("expected error for %q", tt.body)
			}
		})
	}
}

func TestServerConfig(t *testing.T) {
	cfg, err := LoadServerConfig(writeFile(t, "server.toml", "announce = true\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Announce || cfg.AuditPath != audit.DefaultPath {
		t.Fatalf("unexpected server config: %+v", cfg)
	}

	cfg, err = LoadServerConfig(writeFile(t, "server.toml", "audit_path = \"\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuditPath != "" {
		t.Fatalf("expected audit disabled, got %q", cfg.AuditPath)
	}

	if _, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
