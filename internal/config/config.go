package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider names accepted by the deploy pipeline.
const (
	ProviderNetlify = "netlify"
	ProviderPages   = "pages"
)

type Config struct {
	Version     string `mapstructure:"version"`
	OutputDir   string `mapstructure:"output_dir"`
	PreviewPort int    `mapstructure:"preview_port"`
	Provider    string `mapstructure:"provider"`
	SiteID      string `mapstructure:"site_id"`
	AuthToken   string `mapstructure:"auth_token"`
	PagesOwner  string `mapstructure:"pages_owner"`
	PagesRepo   string `mapstructure:"pages_repo"`
	PagesBranch string `mapstructure:"pages_branch"`
	LinkURL     string `mapstructure:"link_url"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Version:     "1",
		OutputDir:   "build",
		PreviewPort: 3000,
		Provider:    ProviderNetlify,
		PagesBranch: "gh-pages",
	}
}

// siteIDRegex matches Netlify site IDs (UUIDs) and site names.
var siteIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-]*$`)

// Validate validates the configuration for build and preview operations.
// Deploy credentials are checked separately by ValidateForDeploy.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if strings.Contains(c.OutputDir, "..") {
		return fmt.Errorf("output_dir contains invalid path traversal")
	}
	if c.PreviewPort < 1 || c.PreviewPort > 65535 {
		return fmt.Errorf("preview_port out of range: %d", c.PreviewPort)
	}
	if c.Provider != ProviderNetlify && c.Provider != ProviderPages {
		return fmt.Errorf("unknown provider: %s (expected %s or %s)", c.Provider, ProviderNetlify, ProviderPages)
	}
	if c.SiteID != "" && !siteIDRegex.MatchString(c.SiteID) {
		return fmt.Errorf("invalid site_id format: %s", c.SiteID)
	}
	return nil
}

// ValidateForDeploy validates that the selected provider has its secrets.
func (c *Config) ValidateForDeploy() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.Provider {
	case ProviderNetlify:
		if c.SiteID == "" {
			return fmt.Errorf("site_id is required for netlify deploys")
		}
		if c.AuthToken == "" {
			return fmt.Errorf("auth_token is required for netlify deploys")
		}
	case ProviderPages:
		if c.AuthToken == "" {
			return fmt.Errorf("auth_token is required for pages deploys")
		}
		if c.PagesOwner == "" || c.PagesRepo == "" {
			return fmt.Errorf("pages_owner and pages_repo are required for pages deploys")
		}
	}
	return nil
}

func LoadConfig() (*Config, error) {
	// Local .env files are a convenience for development; missing files are
	// not an error.
	_ = godotenv.Load()
	viper.SetConfigName(".sitekit")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("SITEKIT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// BindEnv checks the variables in order; the provider-native names win
	// so CI secrets work unprefixed.
	if err := viper.BindEnv("version", "APP_VERSION", "SITEKIT_VERSION"); err != nil {
		return nil, fmt.Errorf("failed to bind version env: %w", err)
	}
	if err := viper.BindEnv("site_id", "NETLIFY_SITE_ID", "SITEKIT_SITE_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind site_id env: %w", err)
	}
	if err := viper.BindEnv("auth_token", "NETLIFY_AUTH_TOKEN", "SITEKIT_AUTH_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind auth_token env: %w", err)
	}
	if err := viper.BindEnv("output_dir", "SITEKIT_OUTPUT_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind output_dir env: %w", err)
	}
	if err := viper.BindEnv("preview_port", "PORT", "SITEKIT_PREVIEW_PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind preview_port env: %w", err)
	}
	if err := viper.BindEnv("provider", "SITEKIT_PROVIDER"); err != nil {
		return nil, fmt.Errorf("failed to bind provider env: %w", err)
	}
	if err := viper.BindEnv("pages_owner", "GITHUB_REPOSITORY_OWNER", "SITEKIT_PAGES_OWNER"); err != nil {
		return nil, fmt.Errorf("failed to bind pages_owner env: %w", err)
	}
	if err := viper.BindEnv("pages_repo", "SITEKIT_PAGES_REPO"); err != nil {
		return nil, fmt.Errorf("failed to bind pages_repo env: %w", err)
	}
	defaults := DefaultConfig()
	viper.SetDefault("version", defaults.Version)
	viper.SetDefault("output_dir", defaults.OutputDir)
	viper.SetDefault("preview_port", defaults.PreviewPort)
	viper.SetDefault("provider", defaults.Provider)
	viper.SetDefault("pages_branch", defaults.PagesBranch)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	// An env var set to whitespace still falls back to the default version.
	if strings.TrimSpace(config.Version) == "" {
		config.Version = defaults.Version
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
