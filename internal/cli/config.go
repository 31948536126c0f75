package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the .banter project config written by "join".
type Config struct {
	Server string `json:"server"`
	Room   string `json:"room"`
	Nick   string `json:"nick"`
}

const configFileName = ".banter"

// loadConfig reads a .banter config from the current directory or any
// parent directory.
func loadConfig() *Config {
	dir, err := os.Getwd()
	if err != nil {
		return nil
	}

	for {
		path := filepath.Join(dir, configFileName)
		data, err := os.ReadFile(path)
		if err == nil {
			var cfg Config
			if json.Unmarshal(data, &cfg) == nil {
				return &cfg
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil
}

// saveConfig writes the config to .banter in the current directory.
func saveConfig(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configFileName, append(data, '\n'), 0644)
}
