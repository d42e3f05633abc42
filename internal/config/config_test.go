package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "DATABASE_URL", "MONGO_URL", "CORS_ORIGINS", "JWT_SECRET",
		"ACCESS_TOKEN_TTL", "OPENAI_API_KEY", "AI_API_KEY", "EMERGENT_LLM_KEY",
		"AI_PROVIDER", "TASKS_MASK_FOREIGN", "AI_TIMEOUT",
	} {
		t.Setenv(k, "")
	}

	c := FromEnv()
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", c.HTTPAddr)
	}
	if c.DatabaseURL != "memory://" {
		t.Errorf("DatabaseURL = %q", c.DatabaseURL)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", c.CORSOrigins)
	}
	if c.JWTSecretIsSet || len(c.JWTSecret) == 0 {
		t.Errorf("expected generated secret, got set=%v len=%d", c.JWTSecretIsSet, len(c.JWTSecret))
	}
	if c.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %s", c.AccessTokenTTL)
	}
	if !c.MaskForeignTasks {
		t.Error("MaskForeignTasks should default to true")
	}
	if c.AIEnabled() {
		t.Error("AI should be disabled without a key")
	}
}

func TestFromEnvOverridesAndWarnings(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("EMERGENT_LLM_KEY", "k")
	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	t.Setenv("DB_MAX_CONNS", "-3")
	t.Setenv("TASKS_MASK_FOREIGN", "false")

	c := FromEnv()
	if c.DatabaseURL != "mongodb://localhost:27017" {
		t.Errorf("DatabaseURL = %q", c.DatabaseURL)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", c.CORSOrigins)
	}
	if c.OpenAIKey != "k" || !c.AIEnabled() {
		t.Errorf("expected AI key from alias, got %q", c.OpenAIKey)
	}
	if c.AccessTokenTTL != 30*time.Minute || c.DBMaxConns != 10 {
		t.Errorf("bad values should fall back: ttl=%s conns=%d", c.AccessTokenTTL, c.DBMaxConns)
	}
	if len(c.Warnings) != 2 {
		t.Errorf("Warnings = %v", c.Warnings)
	}
	if c.MaskForeignTasks {
		t.Error("MaskForeignTasks should be false")
	}
}

func TestHeuristicProviderEnablesAIWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("EMERGENT_LLM_KEY", "")
	t.Setenv("AI_PROVIDER", "Heuristic")
	if c := FromEnv(); !c.AIEnabled() {
		t.Fatal("heuristic provider should not need a key")
	}
}

func TestSnowflakeNodeZeroAccepted(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "0")
	c := FromEnv()
	if c.SnowflakeNode != 0 {
		t.Errorf("SnowflakeNode = %d, want 0", c.SnowflakeNode)
	}
	for _, w := range c.Warnings {
		if strings.Contains(w, "SNOWFLAKE_NODE") {
			t.Errorf("unexpected warning %q", w)
		}
	}

	t.Setenv("SNOWFLAKE_NODE", "-1")
	if c := FromEnv(); c.SnowflakeNode != 1 {
		t.Errorf("negative node should fall back to 1, got %d", c.SnowflakeNode)
	}
}
