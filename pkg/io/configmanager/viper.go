package configmanager

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// configName is the config file base name searched for ("devrig.yaml").
	configName = "devrig"
	// envPrefix namespaces environment overrides (DEVRIG_SPEC_PLATFORM, ...).
	envPrefix = "DEVRIG"
)

// configKeys lists every configuration key devrig reads. Environment
// overrides only reach Unmarshal for keys viper knows about, so each key is
// bound explicitly.
func configKeys() []string {
	return []string{
		"apiVersion",
		"kind",
		"spec.tools",
		"spec.platform",
		"spec.poll.interval",
		"spec.poll.maxAttempts",
		"spec.manifest",
		"spec.trace",
		"spec.history.enabled",
		"spec.history.path",
		"spec.history.keep",
	}
}

// InitializeViper creates a Viper instance configured for devrig: config file
// search in the working directory then ~/.devrig/, and DEVRIG_* environment
// variable overrides with dots and hyphens mapped to underscores.
func InitializeViper() *viper.Viper {
	viperInstance := viper.New()

	viperInstance.SetConfigName(configName)
	viperInstance.SetConfigType("yaml")
	viperInstance.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viperInstance.AddConfigPath(filepath.Join(home, "."+configName))
	}

	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viperInstance.AutomaticEnv()

	for _, key := range configKeys() {
		_ = viperInstance.BindEnv(key)
	}

	return viperInstance
}
