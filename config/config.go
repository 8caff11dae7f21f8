// Package config reads the casbert configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/casbert/ai"
	"github.com/poiesic/casbert/assets/minio"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/mathml"
	"gopkg.in/yaml.v3"
)

// DefaultServerURL is the public model repository that relative result URLs
// are resolved against.
const DefaultServerURL = "https://models.physiomeproject.org/"

// Embedding configures the query encoder.
type Embedding struct {
	Host      string `yaml:"host"`
	Model     string `yaml:"model"`
	Token     string `yaml:"token,omitempty"`
	CacheSize int    `yaml:"cache_size"`
}

// MinIO locates model images on an S3-compatible object store.
type MinIO struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Secure    bool   `yaml:"secure"`
}

// Assets selects where model images are checked for. MinIO wins when both
// are set; neither means no image is ever reported.
type Assets struct {
	Root      string `yaml:"root,omitempty"`
	MinIO     *MinIO `yaml:"minio,omitempty"`
	CacheSize int    `yaml:"cache_size"`
}

// Search holds the defaults applied to CLI searches.
type Search struct {
	Top           int     `yaml:"top"`
	MinSimilarity float32 `yaml:"min_similarity"`
	Variant       string  `yaml:"variant"`
	MathFormat    string  `yaml:"math_format"`
	PoolSize      int     `yaml:"pool_size"`
}

// Config is the in-memory representation of casbert.yaml.
type Config struct {
	Database  string    `yaml:"database"`
	ServerURL string    `yaml:"server_url"`
	LogLevel  string    `yaml:"log_level"`
	Embedding Embedding `yaml:"embedding"`
	Assets    Assets    `yaml:"assets"`
	Search    Search    `yaml:"search"`
}

// Dir returns the absolute path to ~/.casbert/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".casbert"), nil
}

// DefaultPath returns the absolute path to ~/.casbert/casbert.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "casbert.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Database:  filepath.Join("~", ".casbert", "db"),
		ServerURL: DefaultServerURL,
		LogLevel:  "info",
		Embedding: Embedding{
			Host:      aiDefaults.EmbeddingHost,
			Model:     aiDefaults.EmbeddingModel,
			CacheSize: aiDefaults.CacheSize,
		},
		Assets: Assets{
			Root:      filepath.Join("~", ".casbert", "workspaces"),
			CacheSize: 4096,
		},
		Search: Search{
			Top:           core.DefaultTop,
			MinSimilarity: core.DefaultMinSimilarity,
			Variant:       string(core.DefaultVariant),
			MathFormat:    mathml.LaTeX.String(),
			PoolSize:      5,
		},
	}
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults. Paths in the result have ~ expanded and the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("no config file, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path, creating its directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) expand() error {
	var err error
	if c.Database, err = ExpandPath(c.Database); err != nil {
		return err
	}
	c.Assets.Root, err = ExpandPath(c.Assets.Root)
	return err
}

// Validate checks the search defaults and names.
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.New("database path is required")
	}
	if _, err := c.Variant(); err != nil {
		return err
	}
	if _, err := c.MathFormat(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := core.ValidateRanking(c.Search.Top, c.Search.MinSimilarity); err != nil {
		return err
	}
	if m := c.Assets.MinIO; m != nil && (m.Endpoint == "" || m.Bucket == "") {
		return errors.New("minio assets need an endpoint and a bucket")
	}
	return c.AIConfig().Validate()
}

// Variant returns the default index variant.
func (c *Config) Variant() (core.Variant, error) {
	return core.ParseVariant(c.Search.Variant)
}

// MathFormat returns the format maths are rendered in.
func (c *Config) MathFormat() (mathml.Format, error) {
	return mathml.ParseFormat(c.Search.MathFormat)
}

// Level parses the log level name.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// AIConfig returns the embedder settings.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithToken(c.Embedding.Token),
		ai.WithCacheSize(c.Embedding.CacheSize),
	)
}

// MinIOConfig returns the object store settings, or false when images are
// read from the local filesystem.
func (c *Config) MinIOConfig() (minio.Config, bool) {
	m := c.Assets.MinIO
	if m == nil {
		return minio.Config{}, false
	}
	return minio.Config{
		Endpoint:  m.Endpoint,
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		Region:    m.Region,
		Secure:    m.Secure,
		Bucket:    m.Bucket,
		Prefix:    m.Prefix,
	}, true
}

// Query returns a query for text carrying the configured defaults.
func (c *Config) Query(text string) core.Query {
	q := core.NewQuery(text)
	q.Top = c.Search.Top
	q.MinSimilarity = c.Search.MinSimilarity
	if v, err := c.Variant(); err == nil {
		q.Variant = v
	}
	return q
}
