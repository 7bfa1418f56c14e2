package configmanager

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/cli/ui/timer"
	"github.com/devrig-sh/devrig/pkg/envvar"
	"github.com/devrig-sh/devrig/pkg/notify"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConfigManager implements configuration management for devrig v1alpha1.Rig
// configurations.
type ConfigManager struct {
	Viper  *viper.Viper
	Config *v1alpha1.Rig
	Writer io.Writer // Writer for output notifications

	command         *cobra.Command // Associated Cobra command for flag introspection
	configLoaded    bool           // Track if config has been actually loaded
	configFileFound bool           // Track if a config file was found and read
}

// NewConfigManager creates a new configuration manager.
// Initializes Viper with all configuration including paths and environment handling.
func NewConfigManager(writer io.Writer) *ConfigManager {
	return &ConfigManager{
		Viper:  InitializeViper(),
		Config: v1alpha1.NewRig(),
		Writer: writer,
	}
}

// NewCommandConfigManager constructs a ConfigManager bound to the provided
// Cobra command. It registers the rig flags on the command and writes output
// to the command's standard output writer.
func NewCommandConfigManager(cmd *cobra.Command) *ConfigManager {
	manager := NewConfigManager(cmd.OutOrStdout())
	manager.command = cmd
	manager.AddFlags(cmd)

	return manager
}

// SetConfigFile pins the configuration to an explicit file path instead of
// searching the default locations. An empty path keeps the search behavior.
func (m *ConfigManager) SetConfigFile(path string) {
	if path != "" {
		m.Viper.SetConfigFile(path)
	}
}

// LoadConfig loads the configuration from files, environment variables, and flags.
// Returns the loaded config (either freshly loaded or previously cached) and an
// error if loading failed.
// Configuration priority: defaults < config file < environment variables < flags.
// If timer is provided, timing information will be included in the success notification.
func (m *ConfigManager) LoadConfig(tmr timer.Timer) (*v1alpha1.Rig, error) {
	return m.loadConfigWithOptions(tmr, false)
}

// LoadConfigSilent loads the configuration without outputting notifications.
// Returns the loaded config, either freshly loaded or previously cached.
func (m *ConfigManager) LoadConfigSilent() (*v1alpha1.Rig, error) {
	return m.loadConfigWithOptions(nil, true)
}

// loadConfigWithOptions is the internal implementation with silent option.
func (m *ConfigManager) loadConfigWithOptions(
	tmr timer.Timer,
	silent bool,
) (*v1alpha1.Rig, error) {
	if m.configLoaded {
		if !silent {
			m.notifyConfigReused()
		}

		return m.Config, nil
	}

	if !silent {
		m.notifyLoadingConfig()
	}

	err := m.readConfig(silent)
	if err != nil {
		return nil, err
	}

	flagOverrides := m.captureChangedFlagValues()

	err = m.unmarshalConfig()
	if err != nil {
		return nil, err
	}

	err = m.validateTypeMeta()
	if err != nil {
		return nil, err
	}

	err = m.applyFlagOverrides(flagOverrides)
	if err != nil {
		return nil, err
	}

	err = m.Config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !silent {
		m.notifyLoadingComplete(tmr)
	}

	m.configLoaded = true

	return m.Config, nil
}

func (m *ConfigManager) readConfig(silent bool) error {
	err := m.Viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		m.configFileFound = false
		if !silent {
			m.notifyUsingDefaults()
		}
	} else {
		m.configFileFound = true
		if !silent {
			m.notifyConfigFound()
		}
	}

	return nil
}

func (m *ConfigManager) unmarshalConfig() error {
	decoderConfig := func(decoder *mapstructure.DecoderConfig) {
		decoder.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			envvarExpandDecodeHook(),
			metav1DurationDecodeHook(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}

	// Reset TypeMeta fields only if a config file was found. This lets
	// validation catch incorrect or missing apiVersion/kind values in config
	// files while preserving defaults when loading from environment only.
	if m.configFileFound {
		m.Config.APIVersion = ""
		m.Config.Kind = ""
	}

	err := m.Viper.Unmarshal(m.Config, decoderConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return nil
}

// validateTypeMeta requires config files to carry the devrig apiVersion and
// kind. Environment-only and defaults-only loads keep the constructed values.
func (m *ConfigManager) validateTypeMeta() error {
	if !m.configFileFound {
		return nil
	}

	if m.Config.APIVersion != v1alpha1.APIVersion {
		return fmt.Errorf(
			"%w: %q (expected %s)",
			ErrUnsupportedAPIVersion, m.Config.APIVersion, v1alpha1.APIVersion,
		)
	}

	if m.Config.Kind != v1alpha1.Kind {
		return fmt.Errorf(
			"%w: %q (expected %s)",
			ErrUnsupportedKind, m.Config.Kind, v1alpha1.Kind,
		)
	}

	return nil
}

func (m *ConfigManager) notifyConfigReused() {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config already loaded, reusing existing config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyLoadingConfig() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "loading devrig config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyUsingDefaults() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "using default config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyConfigFound() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "'%s' found",
		Args:    []any{m.Viper.ConfigFileUsed()},
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyLoadingComplete(tmr timer.Timer) {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config loaded",
		Timer:   tmr,
		Writer:  m.Writer,
	})
}

// envvarExpandDecodeHook expands ${VAR} and ${VAR:-default} placeholders in
// string config values before any further decoding, so expanded values feed
// the duration and slice hooks.
func envvarExpandDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, _ reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		value, ok := data.(string)
		if !ok {
			return data, nil
		}

		return envvar.Expand(value), nil
	}
}

// metav1DurationDecodeHook decodes YAML duration strings ("2s", "500ms") and
// bare nanosecond numbers into metav1.Duration values.
func metav1DurationDecodeHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(metav1.Duration{})

	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}

		switch value := data.(type) {
		case string:
			parsed, err := time.ParseDuration(value)
			if err != nil {
				return nil, fmt.Errorf("parse duration %q: %w", value, err)
			}

			return metav1.Duration{Duration: parsed}, nil
		case int:
			return metav1.Duration{Duration: time.Duration(value)}, nil
		case int64:
			return metav1.Duration{Duration: time.Duration(value)}, nil
		case float64:
			return metav1.Duration{Duration: time.Duration(value)}, nil
		default:
			return data, nil
		}
	}
}
