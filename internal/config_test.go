package internal

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Admin.Secret = "secret"
	cfg.Google.ServiceAccountJSON = `{"type":"service_account"}`
	cfg.GitHub.Token = "ghp_x"
	cfg.GitHub.Repo = "owner/repo"
	return cfg
}

func TestConfig_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}
}

func TestConfig_MissingSecretNamesVariable(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.Secret = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("missing secret should fail")
	}
	if !strings.Contains(err.Error(), "BLOG_ADMIN_SECRET") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestConfig_MissingCredentialNamesVariable(t *testing.T) {
	cfg := validConfig()
	cfg.Google.ServiceAccountJSON = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_SERVICE_ACCOUNT_JSON") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestConfig_MissingTokenNamesVariable(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Token = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "GITHUB_TOKEN") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestConfig_RepoShape(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Repo = "not-a-repo"
	if err := cfg.Validate(); err == nil {
		t.Error("repo without owner should fail")
	}
	cfg.GitHub.Repo = "owner/repo"
	if err := cfg.Validate(); err != nil {
		t.Errorf("owner/repo should pass: %v", err)
	}
}

func TestConfig_BranchDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Branch = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.GitHub.Branch != DefaultBranch {
		t.Errorf("branch = %q, want %q", cfg.GitHub.Branch, DefaultBranch)
	}
}

func TestConfig_PortBounds(t *testing.T) {
	cfg := validConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail")
	}
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port 70000 should fail")
	}
}
