// Package config loads the static bootstrap configuration: listen
// port, database path, and the MQTT broker URI default, the same way
// the teacher's cmd/main.go loads its own config.yml.
package config

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/spf13/viper"
)

// Bootstrap holds settings read once at process start, before the
// settings store (which owns everything mutable at runtime) is
// opened.
type Bootstrap struct {
	Port          string
	DBPath        string
	ConfigPath    string
	MQTTBroker    string
	SeedPath      string
	JWTSigningKey string
}

const (
	defaultPort       = "8080"
	defaultDBPath     = "brewctl.db"
	defaultMQTTBroker = ""
	defaultSeedPath   = "configs/defaults.yaml"
)

// randomSigningKey is the fallback used when configs/config.yml sets
// no auth.signing_key: a fresh secret per process rather than a
// hardcoded one, so a misconfigured deployment fails closed (every
// token issued before a restart stops verifying) instead of shipping
// a known key.
func randomSigningKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "brewctl-insecure-fallback-signing-key"
	}
	return hex.EncodeToString(b)
}

// Load reads configs/config.yml (if present) and falls back to
// sensible defaults for anything missing, mirroring the teacher's
// loadConfig + viper.GetString-with-fallback pattern in cmd/main.go.
func Load() (*Bootstrap, error) {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	b := &Bootstrap{
		Port:          viper.GetString("port"),
		DBPath:        viper.GetString("db.path"),
		MQTTBroker:    viper.GetString("mqtt.broker"),
		SeedPath:      viper.GetString("seed.path"),
		JWTSigningKey: viper.GetString("auth.signing_key"),
	}
	if b.Port == "" {
		b.Port = defaultPort
	}
	if b.DBPath == "" {
		b.DBPath = defaultDBPath
	}
	if b.MQTTBroker == "" {
		b.MQTTBroker = defaultMQTTBroker
	}
	if b.SeedPath == "" {
		b.SeedPath = defaultSeedPath
	}
	if b.JWTSigningKey == "" {
		b.JWTSigningKey = randomSigningKey()
	}
	return b, nil
}
