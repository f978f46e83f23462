package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppEnvironmentDefaultsAndAliases(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"", environmentDevelopment},
		{"production", environmentProduction},
		{"prod", environmentProduction},
		{"STAG", environmentStaging},
		{"custom", "custom"},
	}
	for _, c := range cases {
		t.Setenv(appEnvVar, c.value)
		if got := AppEnvironment(); got != c.want {
			t.Errorf("APP_ENV=%q: got %q, want %q", c.value, got, c.want)
		}
	}
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(base, []byte("leaderflow:\n"), 0o644); err != nil {
		t.Fatalf("write base config: %v", err)
	}

	t.Setenv(appEnvVar, "staging")
	if got := ResolveConfigPath(base); got != base {
		t.Fatalf("no env file present: got %s", got)
	}

	envFile := filepath.Join(dir, "config.staging.yml")
	if err := os.WriteFile(envFile, []byte("leaderflow:\n"), 0o644); err != nil {
		t.Fatalf("write env config: %v", err)
	}
	if got := ResolveConfigPath(base); got != envFile {
		t.Fatalf("env file present: got %s, want %s", got, envFile)
	}
}

func TestIsProductionLike(t *testing.T) {
	if !IsProductionLike(EnvironmentProduction) || !IsProductionLike(EnvironmentStaging) {
		t.Error("production and staging should be production-like")
	}
	if IsProductionLike(EnvironmentDevelopment) {
		t.Error("development should not be production-like")
	}
}
