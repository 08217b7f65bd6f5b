package cmd

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/celldown/celldown/internal/log"
)

const projectConfigName = "celldown.yaml"

// projectConfig is the optional per-directory configuration. Flags always
// win over the file.
type projectConfig struct {
	// Filename overrides the default document name.
	Filename string `yaml:"filename"`
	// Env seeds the persistent scope before the first run.
	Env map[string]string `yaml:"env"`
}

var loadedConfig projectConfig

func applyProjectConfig() {
	path := filepath.Join(chdir, projectConfigName)
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var cfg projectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Get().Warn("ignoring malformed project config", zap.String("path", path), zap.Error(err))
		return
	}

	loadedConfig = cfg
	if cfg.Filename != "" && fileName == "notebook.cdown" {
		fileName = cfg.Filename
	}
}

func documentPath() string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(chdir, fileName)
}
