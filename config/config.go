package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const (
	AuthModeRemote = "remote" // ask the Supabase auth server for the user behind each token
	AuthModeJWT    = "jwt"    // verify HS256 tokens locally with the project's JWT secret
	AuthModeJWKS   = "jwks"   // verify asymmetric tokens against the project's published keys

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	DatabaseURL string
	StoreDriver string
	AutoMigrate bool

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	AuthMode          string

	AllowedOrigins []string
	LogLevel       string

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "3001"),
		DatabaseURL:       databaseURL(),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		AutoMigrate:       getBool("AUTO_MIGRATE", false),
		SupabaseURL:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		AuthMode:          strings.ToLower(getEnv("AUTH_MODE", AuthModeRemote)),
		AllowedOrigins:    parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RateLimitRPS:      getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:    getInt("RATE_LIMIT_BURST", 40),
	}
}

// Validate reports configuration that cannot produce a working server.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL (or user/password/host/port/dbname) is required for the postgres store"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.AuthMode {
	case AuthModeJWT:
		if c.SupabaseJWTSecret == "" {
			errs = append(errs, errors.New("SUPABASE_JWT_SECRET is required when AUTH_MODE=jwt"))
		}
	case AuthModeRemote, AuthModeJWKS:
		if c.SupabaseURL == "" {
			errs = append(errs, fmt.Errorf("SUPABASE_URL is required when AUTH_MODE=%s", c.AuthMode))
		} else if _, err := url.ParseRequestURI(c.SupabaseURL); err != nil {
			errs = append(errs, fmt.Errorf("SUPABASE_URL is not a valid URL: %w", err))
		}
		if c.AuthMode == AuthModeRemote && c.SupabaseAnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_ANON_KEY is required when AUTH_MODE=remote"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limit values must not be negative"))
	} else if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1 when RATE_LIMIT_RPS is set"))
	}

	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// databaseURL prefers DATABASE_URL and falls back to the discrete
// connection settings the Supabase dashboard hands out.
func databaseURL() string {
	if u := strings.TrimSpace(os.Getenv("DATABASE_URL")); u != "" {
		return u
	}
	dbUser := strings.TrimSpace(os.Getenv("user"))
	dbHost := strings.TrimSpace(os.Getenv("host"))
	if dbUser == "" || dbHost == "" {
		return ""
	}
	dbPass := strings.TrimSpace(os.Getenv("password"))
	dbPort := strings.TrimSpace(getEnv("port", "5432"))
	dbName := strings.TrimSpace(getEnv("dbname", "postgres"))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbUser, dbPass),
		Host:     dbHost + ":" + dbPort,
		Path:     "/" + dbName,
		RawQuery: "sslmode=require",
	}
	return u.String()
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
