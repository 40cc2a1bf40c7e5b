package paths

import (
	"os"
	"path/filepath"
)

func DefaultRuntimeDir() string {
	if x := os.Getenv("XDG_RUNTIME_DIR"); x != "" {
		return filepath.Join(x, "vitcat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vitcat")
}

func DefaultConfigDir() string {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "vitcat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "vitcat")
}

func DefaultSocketPath() string { return filepath.Join(DefaultRuntimeDir(), "daemon.sock") }
func DefaultPIDPath() string    { return filepath.Join(DefaultRuntimeDir(), "daemon.pid") }
func DefaultConfigPath() string { return filepath.Join(DefaultConfigDir(), "config.yaml") }
