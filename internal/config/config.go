// Package config binds kgl's runtime configuration (viper, for flags and
// environment) and the small on-disk "current graph" pointer the CLI
// persists between invocations.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Viper config keys, named the way the teacher names its store.* keys.
const (
	KeyGraphPath  = "graph.path"
	KeyNamespace  = "graph.namespace"
	KeyListenHost = "http.host"
	KeyQueryDepth = "query.max_depth"
)

// Init registers defaults and binds the KGL_ environment prefix, mirroring
// the teacher's viper setup in cmd/cayley/command's flag binding.
func Init() {
	viper.SetEnvPrefix("KGL")
	viper.AutomaticEnv()
	viper.SetDefault(KeyNamespace, "default")
	viper.SetDefault(KeyListenHost, "127.0.0.1:8080")
	viper.SetDefault(KeyQueryDepth, 50)
}

// Current is the small JSON document persisted to CacheFile: which graph
// file the bare `kgl <query>` invocation should load.
type Current struct {
	Graph string `json:"graph"`
}

// CacheDir returns $HOME/.cache/kgl, creating it if absent.
func CacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".cache", "kgl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// CacheFile returns $HOME/.cache/kgl/current.json.
func CacheFile() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "current.json"), nil
}

// GetCurrent reads the persisted current-graph pointer. A missing file
// reads back as a zero-value Current, matching the original
// implementation's "no knowledge graph loaded" fallback.
func GetCurrent() (Current, error) {
	path, err := CacheFile()
	if err != nil {
		return Current{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Current{}, nil
	} else if err != nil {
		return Current{}, err
	}
	var cur Current
	if len(data) == 0 {
		return Current{}, nil
	}
	if err := json.Unmarshal(data, &cur); err != nil {
		return Current{}, err
	}
	return cur, nil
}

// SetCurrent persists cur to CacheFile.
func SetCurrent(cur Current) error {
	path, err := CacheFile()
	if err != nil {
		return err
	}
	data, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
