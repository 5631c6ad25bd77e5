package goYK

import (
	"encoding/base64"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// fileConfig is the on-disk configuration schema. The file type is inferred
// by viper from the extension; every key can also be supplied through the
// environment with the GOYK_ prefix (GOYK_CLIENT_ID, ...).
type fileConfig struct {
	ClientID       string   `mapstructure:"client_id" validate:"required"`
	SecretKey      string   `mapstructure:"secret_key" validate:"omitempty,base64"`
	Endpoints      []string `mapstructure:"endpoints" validate:"omitempty,min=1,dive,required"`
	HTTPS          *bool    `mapstructure:"https"`
	VerifyTLS      *bool    `mapstructure:"verify_tls"`
	Timestamp      bool     `mapstructure:"timestamp"`
	SyncLevel      string   `mapstructure:"sync_level"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"omitempty,min=1,max=120"`
	WaitForAll     bool     `mapstructure:"wait_for_all"`
	Audit          bool     `mapstructure:"audit"`
	Metrics        bool     `mapstructure:"metrics"`
}

var fileValidator = validator.New()

func newFileViper(pathFile string) *viper.Viper {
	v := viper.New()

	filename := path.Base(pathFile)
	configName := filename[:len(filename)-len(path.Ext(filename))]

	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(configName)

	v.SetEnvPrefix("GOYK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every schema key is
	// bound explicitly for the environment path.
	for _, key := range []string{
		"client_id", "secret_key", "endpoints", "https", "verify_tls",
		"timestamp", "sync_level", "timeout_seconds", "wait_for_all",
		"audit", "metrics",
	} {
		_ = v.BindEnv(key)
	}

	return v
}

// LoadConfigFile reads a configuration file, validates it, and merges it
// over DefaultConfig. Keys absent from the file keep their defaults.
func LoadConfigFile(pathFile string) (Config, error) {
	v := newFileViper(pathFile)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", pathFile, err)
	}
	return configFromViper(v)
}

func configFromViper(v *viper.Viper) (Config, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := fileValidator.Struct(&fc); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	cfg := defaultConfig()
	cfg.Client.ID = fc.ClientID
	if fc.SecretKey != "" {
		key, err := base64.StdEncoding.DecodeString(fc.SecretKey)
		if err != nil {
			return Config{}, fmt.Errorf("decode secret_key: %w", err)
		}
		cfg.Client.Key = key
	}
	if len(fc.Endpoints) > 0 {
		cfg.Endpoint.Hosts = append([]string(nil), fc.Endpoints...)
	}
	if fc.HTTPS != nil {
		cfg.Endpoint.HTTPS = *fc.HTTPS
	}
	if fc.VerifyTLS != nil {
		cfg.Endpoint.VerifyTLS = *fc.VerifyTLS
	}
	cfg.Request.Timestamp = fc.Timestamp
	if fc.SyncLevel != "" {
		cfg.Request.SyncLevel = fc.SyncLevel
	}
	if fc.TimeoutSeconds > 0 {
		cfg.Request.TimeoutSeconds = fc.TimeoutSeconds
	}
	cfg.Request.WaitForAll = fc.WaitForAll
	cfg.Audit.Enabled = fc.Audit
	cfg.Metrics.Enabled = fc.Metrics

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WatchEndpointsFile watches a configuration file and swaps the verifier's
// endpoint set whenever the file changes and still validates. Other settings
// are fixed at Build time and are not reloaded. The watch lives for the
// process lifetime.
func WatchEndpointsFile(pathFile string, verifier *Verifier) error {
	if verifier == nil {
		return ErrVerifierNotReady
	}

	v := newFileViper(pathFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", pathFile, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			log.Print("goYK: endpoint config reload failed")
			return
		}
		cfg, err := configFromViper(v)
		if err != nil {
			log.Print("goYK: endpoint config rejected on reload")
			return
		}
		if err := verifier.SetEndpoints(cfg.Endpoint.Hosts); err != nil {
			log.Print("goYK: endpoint swap failed")
		}
	})
	v.WatchConfig()

	return nil
}
