package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	KindClient = "client"
	KindServer = "server"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		return clientTemplate, nil
	case KindServer:
		return serverTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Validate loads path as kind and reports the first problem.
func Validate(path, kind string) error {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		_, err := LoadClientConfig(path)
		return err
	case KindServer:
		_, err := LoadServerConfig(path)
		return err
	default:
		return fmt.Errorf("unknown config kind: %s", kind)
	}
}

const clientTemplate = `server_path = "./stdiod"
server_args = ["--audit", "server.log"]
fallback = 0
no_color = false

# Merged over the built-in pool (a b c ▲ ▼ ▶ ◀).
[symbols]
x = 10
"◆" = -5
`

const serverTemplate = `audit_path = "server.log"
announce = false
`
