package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DatabaseURL string
	DBName      string
	DBMaxConns  int

	CORSOrigins []string

	JWTSecret      []byte
	JWTSecretIsSet bool
	AccessTokenTTL time.Duration
	BcryptCost     int

	MaskForeignTasks bool

	AIProvider  string
	OpenAIKey   string
	OpenAIModel string
	OpenAIURL   string
	AITimeout   time.Duration

	SnowflakeNode int64

	// Warnings lists values that could not be parsed and fell back to defaults.
	Warnings []string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() *Config {
	c := &Config{}

	c.HTTPAddr = envOr("HTTP_ADDR", ":8080")

	c.DatabaseURL = firstEnv("DATABASE_URL", "MONGO_URL")
	if c.DatabaseURL == "" {
		c.DatabaseURL = "memory://"
	}
	c.DBName = envOr("DB_NAME", "taskflow")
	c.DBMaxConns = c.intEnv("DB_MAX_CONNS", 10, 1)

	c.CORSOrigins = splitList(envOr("CORS_ORIGINS", "*"))

	if s := os.Getenv("JWT_SECRET"); s != "" {
		c.JWTSecret = []byte(s)
		c.JWTSecretIsSet = true
	} else {
		c.JWTSecret = randomSecret()
	}
	c.AccessTokenTTL = c.durationEnv("ACCESS_TOKEN_TTL", 30*time.Minute)
	c.BcryptCost = c.intEnv("BCRYPT_COST", 12, 1)

	c.MaskForeignTasks = c.boolEnv("TASKS_MASK_FOREIGN", true)

	c.AIProvider = strings.ToLower(envOr("AI_PROVIDER", "openai"))
	c.OpenAIKey = firstEnv("OPENAI_API_KEY", "AI_API_KEY", "EMERGENT_LLM_KEY")
	c.OpenAIModel = envOr("OPENAI_MODEL", "gpt-4o-mini")
	c.OpenAIURL = strings.TrimRight(envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/")
	c.AITimeout = c.durationEnv("AI_TIMEOUT", 20*time.Second)

	c.SnowflakeNode = int64(c.intEnv("SNOWFLAKE_NODE", 1, 0))

	return c
}

// AIEnabled reports whether an advisory provider can be used at all.
func (c *Config) AIEnabled() bool {
	return c.AIProvider == "heuristic" || c.OpenAIKey != ""
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// intEnv parses key as an integer no smaller than floor.
func (c *Config) intEnv(key string, def, floor int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < floor {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not an integer >= %d, using %d", key, s, floor, def))
		return def
	}
	return n
}

func (c *Config) durationEnv(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive duration, using %s", key, s, def))
		return def
	}
	return d
}

func (c *Config) boolEnv(key string, def bool) bool {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a boolean, using %t", key, s, def))
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return []byte(hex.EncodeToString(b))
}
