// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/glimpse"
	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/search"
	"github.com/poiesic/glimpse/storage/blob"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvConfigPath = "GLIMPSE_CONFIG"
	EnvAPIKey     = "OPENAI_API_KEY"
	EnvAIHost     = "GLIMPSE_AI_HOST"
	EnvAIModel    = "GLIMPSE_AI_MODEL"
	EnvDataDir    = "GLIMPSE_DATA_DIR"
)

// DefaultPath is read when neither a path nor GLIMPSE_CONFIG is given.
const DefaultPath = "glimpse.yaml"

// Image store kinds.
const (
	ImagesFS    = "fs"
	ImagesMinIO = "minio"
)

// Config is the full glimpse configuration.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
}

type StorageConfig struct {
	Backend string      `yaml:"backend"` // document | badger
	Images  string      `yaml:"images"`  // fs | minio
	MinIO   MinIOConfig `yaml:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AIConfig struct {
	Host           string        `yaml:"host"`
	APIKey         string        `yaml:"api_key"`
	VisionModel    string        `yaml:"vision_model"`
	MatchModel     string        `yaml:"match_model"`
	Matcher        string        `yaml:"matcher"` // local | llm
	Timeout        time.Duration `yaml:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	MatchCacheSize int           `yaml:"match_cache_size"`
}

type SearchConfig struct {
	TopK          int `yaml:"top_k"`
	MinConfidence int `yaml:"min_confidence"`
	Concurrency   int `yaml:"concurrency"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		DataDir: "data",
		Storage: StorageConfig{
			Backend: glimpse.BackendDocument,
			Images:  ImagesFS,
		},
		AI: AIConfig{
			Host:           aiDefaults.Host,
			APIKey:         aiDefaults.APIKey,
			VisionModel:    aiDefaults.VisionModel,
			MatchModel:     aiDefaults.MatchModel,
			Matcher:        aiDefaults.MatcherKind,
			Timeout:        aiDefaults.Timeout,
			MaxAttempts:    aiDefaults.MaxAttempts,
			RetryDelay:     aiDefaults.RetryDelay,
			MatchCacheSize: aiDefaults.MatchCacheSize,
		},
		Search: SearchConfig{
			TopK:          search.DefaultTopK,
			MinConfidence: search.DefaultMinConfidence,
			Concurrency:   search.DefaultConcurrency,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			MaxUploadMB:    int(core.DefaultMaxFileSize >> 20),
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path falls back to GLIMPSE_CONFIG, then DefaultPath.
// A missing file is not an error unless the path was given explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv(EnvAIHost); v != "" {
		c.AI.Host = v
	}
	if v := os.Getenv(EnvAIModel); v != "" {
		c.AI.VisionModel = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	switch c.Storage.Backend {
	case glimpse.BackendDocument, glimpse.BackendBadger:
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (use document or badger)", c.Storage.Backend)
	}
	switch c.Storage.Images {
	case ImagesFS:
	case ImagesMinIO:
		if c.Storage.MinIO.Endpoint == "" || c.Storage.MinIO.Bucket == "" {
			return errors.New("storage.minio: endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("storage.images: unsupported value %q (use fs or minio)", c.Storage.Images)
	}
	if c.Search.TopK <= 0 {
		return errors.New("search.top_k must be > 0")
	}
	if c.Search.MinConfidence < 0 || c.Search.MinConfidence > 100 {
		return errors.New("search.min_confidence must be between 0 and 100")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be > 0")
	}
	if err := c.ProviderConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// ProviderConfig converts the ai section into an ai.Config.
func (c *Config) ProviderConfig() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithHost(c.AI.Host),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithVisionModel(c.AI.VisionModel),
		ai.WithMatchModel(c.AI.MatchModel),
		ai.WithMatcher(c.AI.Matcher),
		ai.WithTimeout(c.AI.Timeout),
		ai.WithRetry(c.AI.MaxAttempts, c.AI.RetryDelay),
		ai.WithMatchCacheSize(c.AI.MatchCacheSize),
	)
	return cfg
}

// LibraryOptions returns the options for glimpse.Open.
func (c *Config) LibraryOptions() []glimpse.LibraryOption {
	opts := []glimpse.LibraryOption{
		glimpse.WithBackend(c.Storage.Backend),
		glimpse.WithAIConfig(c.ProviderConfig()),
	}
	if c.Storage.Images == ImagesMinIO {
		opts = append(opts, glimpse.WithMinIO(blob.MinIOConfig{
			Endpoint:  c.Storage.MinIO.Endpoint,
			Region:    c.Storage.MinIO.Region,
			Bucket:    c.Storage.MinIO.Bucket,
			Prefix:    c.Storage.MinIO.Prefix,
			AccessKey: c.Storage.MinIO.AccessKey,
			SecretKey: c.Storage.MinIO.SecretKey,
			UseSSL:    c.Storage.MinIO.UseSSL,
		}))
	}
	return opts
}

// SearchOptions returns the options for a searcher.
func (c *Config) SearchOptions() []search.Option {
	return []search.Option{
		search.WithMinConfidence(c.Search.MinConfidence),
		search.WithConcurrency(c.Search.Concurrency),
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 { return int64(c.Server.MaxUploadMB) << 20 }
