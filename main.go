package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/wbishoptz/jumio-verification/logging"
	"github.com/wbishoptz/jumio-verification/metrics"
	"github.com/wbishoptz/jumio-verification/reconcile"
	redis "github.com/wbishoptz/jumio-verification/redis"
)

type Config struct {
	ServerConfig ServerConfig `json:"server_config"`
	LogLevel     string       `json:"log_level,omitempty"`

	Jumio JumioConfig `json:"jumio"`

	// Optional RS256 key for signing report attestations.
	JwtPrivateKeyPath string `json:"jwt_private_key_path,omitempty"`
	AttestationIssuer string `json:"attestation_issuer,omitempty"`

	StorageType         string                    `json:"storage_type"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use")
	flag.Parse()

	if *configPath == "" {
		fatal("please provide a config path using the --config flag", nil)
	}

	// Credentials may live in a .env next to the binary; absence of the
	// file is fine, absence of the credentials is not.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config, err := readConfigFile(*configPath)
	if err != nil {
		fatal("failed to read config file", err)
	}

	logging.InitLogger(config.LogLevel)
	slog.Info("Using config", "path", *configPath)
	slog.Info("Hosting on", "host", config.ServerConfig.Host, "port", config.ServerConfig.Port)

	applyEnvOverrides(&config)
	if config.Jumio.APIToken == "" || config.Jumio.APISecret == "" {
		fatal("verification provider credentials are not configured", ErrNotConfigured)
	}

	var reportSigner ReportSigner
	if config.JwtPrivateKeyPath != "" {
		signer, err := NewRsaReportSigner(config.JwtPrivateKeyPath, config.AttestationIssuer)
		if err != nil {
			fatal("failed to instantiate report signer", err)
		}
		reportSigner = signer
	}

	sessionStorage, err := createSessionStorage(&config)
	if err != nil {
		fatal("failed to instantiate session storage", err)
	}

	serverState := ServerState{
		verificationClient: NewJumioClient(config.Jumio),
		sessionStorage:     sessionStorage,
		reportSigner:       reportSigner,
		engine:             reconcile.NewEngine(reconcile.DefaultPolicy()),
		metrics:            metrics.New(),
	}

	server, err := NewServer(&serverState, config.ServerConfig)
	if err != nil {
		fatal("failed to create server", err)
	}

	err = server.ListenAndServe()
	if err != nil {
		fatal("failed to listen and serve", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, err
	}

	return config, nil
}

// applyEnvOverrides lets the environment win over the config file for
// provider settings, so credentials can stay out of config.json.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("JUMIO_API_TOKEN"); v != "" {
		config.Jumio.APIToken = v
	}
	if v := os.Getenv("JUMIO_API_SECRET"); v != "" {
		config.Jumio.APISecret = v
	}
	if v := os.Getenv("JUMIO_BASE_URL"); v != "" {
		config.Jumio.BaseURL = v
	}
	if v := os.Getenv("JUMIO_CALLBACK_URL"); v != "" {
		config.Jumio.CallbackURL = v
	}
}

func createSessionStorage(config *Config) (SessionStorage, error) {
	if config.StorageType == "redis" {
		slog.Info("Using redis session storage")
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisSessionStorage(client, config.RedisConfig.Namespace), nil
	}
	if config.StorageType == "redis_sentinel" {
		slog.Info("Using redis sentinel session storage")
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisSessionStorage(client, config.RedisSentinelConfig.Namespace), nil
	}
	if config.StorageType == "" || config.StorageType == "memory" {
		slog.Info("Using in memory session storage")
		return NewInMemorySessionStorage(), nil
	}
	return nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}
