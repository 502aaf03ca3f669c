package config

import (
	"fmt"
	"strings"

	"github.com/localbizintel/backend/internal/db"
	"github.com/spf13/viper"
)

// ServerConfig holds the worker HTTP listener settings.
type ServerConfig struct {
	Addr string
}

// OverpassConfig holds the OpenStreetMap Overpass provider settings used by
// the business density source client.
type OverpassConfig struct {
	Endpoint             string
	UserAgent            string
	TimeoutSeconds       int
	QueryTimeoutSeconds  int
	MaxCoordinateSamples int
	DefaultCountry       string
	CityGeoIDSuffix      string
}

// EmbeddingConfig holds the embedding provider settings. An empty APIKey
// selects the deterministic local embedder.
type EmbeddingConfig struct {
	Endpoint       string
	APIKey         string
	Model          string
	Dimensions     int
	TimeoutSeconds int
}

// SourcesConfig selects where demographics, spending and labour rows come
// from. An empty DataDir selects the deterministic generators; otherwise rows
// load from <DataDir>/<dataset>.csv or .xlsx.
type SourcesConfig struct {
	DataDir string
}

// Config is the full worker configuration.
type Config struct {
	Database  db.Config
	Server    ServerConfig
	Sources   SourcesConfig
	Overpass  OverpassConfig
	Embedding EmbeddingConfig
}

// Default returns the local/dev configuration.
func Default() Config {
	return Config{
		Database: db.DefaultConfig(),
		Server: ServerConfig{
			Addr: ":8080",
		},
		Overpass: OverpassConfig{
			Endpoint:             "https://overpass-api.de/api/interpreter",
			UserAgent:            "localbizintel-etl/1.0",
			TimeoutSeconds:       30,
			QueryTimeoutSeconds:  25,
			MaxCoordinateSamples: 50,
			DefaultCountry:       "GH",
			CityGeoIDSuffix:      "citywide",
		},
		Embedding: EmbeddingConfig{
			Endpoint:       "https://api.openai.com/v1/embeddings",
			Model:          "text-embedding-3-small",
			Dimensions:     768,
			TimeoutSeconds: 30,
		},
	}
}

// Load reads config.yaml from configPath (optional) and applies environment
// overrides on top of defaults. Env vars map flat, e.g. BIZINTEL_DATABASE_HOST
// or BIZINTEL_EMBEDDING_API_KEY.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("BIZINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"server.addr",
		"sources.data_dir",
		"overpass.endpoint",
		"overpass.user_agent",
		"overpass.timeout_seconds",
		"overpass.query_timeout_seconds",
		"overpass.max_coordinate_samples",
		"overpass.default_country",
		"overpass.city_geo_id_suffix",
		"embedding.endpoint",
		"embedding.api_key",
		"embedding.model",
		"embedding.dimensions",
		"embedding.timeout_seconds",
	} {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("sources.data_dir") {
		cfg.Sources.DataDir = v.GetString("sources.data_dir")
	}
	if v.IsSet("overpass.endpoint") {
		cfg.Overpass.Endpoint = v.GetString("overpass.endpoint")
	}
	if v.IsSet("overpass.user_agent") {
		cfg.Overpass.UserAgent = v.GetString("overpass.user_agent")
	}
	if v.IsSet("overpass.timeout_seconds") {
		cfg.Overpass.TimeoutSeconds = v.GetInt("overpass.timeout_seconds")
	}
	if v.IsSet("overpass.query_timeout_seconds") {
		cfg.Overpass.QueryTimeoutSeconds = v.GetInt("overpass.query_timeout_seconds")
	}
	if v.IsSet("overpass.max_coordinate_samples") {
		cfg.Overpass.MaxCoordinateSamples = v.GetInt("overpass.max_coordinate_samples")
	}
	if v.IsSet("overpass.default_country") {
		cfg.Overpass.DefaultCountry = v.GetString("overpass.default_country")
	}
	if v.IsSet("overpass.city_geo_id_suffix") {
		cfg.Overpass.CityGeoIDSuffix = v.GetString("overpass.city_geo_id_suffix")
	}
	if v.IsSet("embedding.endpoint") {
		cfg.Embedding.Endpoint = v.GetString("embedding.endpoint")
	}
	if v.IsSet("embedding.api_key") {
		cfg.Embedding.APIKey = v.GetString("embedding.api_key")
	}
	if v.IsSet("embedding.model") {
		cfg.Embedding.Model = v.GetString("embedding.model")
	}
	if v.IsSet("embedding.dimensions") {
		cfg.Embedding.Dimensions = v.GetInt("embedding.dimensions")
	}
	if v.IsSet("embedding.timeout_seconds") {
		cfg.Embedding.TimeoutSeconds = v.GetInt("embedding.timeout_seconds")
	}

	return cfg, nil
}
