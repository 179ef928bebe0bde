package internal

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultBranch is the branch posts are committed to unless configured.
const DefaultBranch = "main"

var repoPattern = regexp.MustCompile(`^[^/\s]+/[^/\s]+$`)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Admin  AdminConfig       `yaml:"admin"`
	Google GoogleConfig      `yaml:"google"`
	GitHub GitHubConfig      `yaml:"github"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Admin.Validate(); err != nil {
		return err
	}
	if err := c.Google.Validate(); err != nil {
		return err
	}
	return c.GitHub.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AdminConfig holds the shared secret publish callers must present.
type AdminConfig struct {
	Secret string `yaml:"secret"`
}

// Validate validates the admin configuration.
func (c *AdminConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("admin: secret is empty (set BLOG_ADMIN_SECRET)")
	}
	return nil
}

// GoogleConfig holds the service-account credential used for document export.
type GoogleConfig struct {
	ServiceAccountJSON string `yaml:"service_account_json"`
}

// Validate validates the Google configuration.
func (c *GoogleConfig) Validate() error {
	if c.ServiceAccountJSON == "" {
		return fmt.Errorf("google: service account credential is empty (set GOOGLE_SERVICE_ACCOUNT_JSON)")
	}
	return nil
}

// GitHubConfig holds the repository posts are committed to.
type GitHubConfig struct {
	Token  string `yaml:"token"`
	Repo   string `yaml:"repo"` // owner/repo
	Branch string `yaml:"branch"`
}

// Validate validates the GitHub configuration.
func (c *GitHubConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("github: token is empty (set GITHUB_TOKEN)")
	}
	if c.Repo == "" {
		return fmt.Errorf("github: repo is empty (set GITHUB_REPO)")
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Repo, validation.Match(repoPattern).Error("must be owner/repo")),
	)
}

// NewDefaultConfig returns a Config populated from the environment, so the
// service runs with env vars alone; a config file may override any field.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8787,
			},
		},
		Admin: AdminConfig{
			Secret: os.Getenv("BLOG_ADMIN_SECRET"),
		},
		Google: GoogleConfig{
			ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		},
		GitHub: GitHubConfig{
			Token:  os.Getenv("GITHUB_TOKEN"),
			Repo:   os.Getenv("GITHUB_REPO"),
			Branch: envOr("GITHUB_BRANCH", DefaultBranch),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
