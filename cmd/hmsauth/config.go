package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Dinesh751/hms-auth-service/internal/handlers/middleware"
	"github.com/Dinesh751/hms-auth-service/internal/logger"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLogLevel       = logger.LevelInfo
	defaultLogFormat      = logger.FormatText
	defaultAccessTTLSecs  = 900    // 15 minutes
	defaultRefreshTTLSecs = 604800 // 7 days
	defaultCookieName     = "refresh_token"
	defaultCookiePath     = "/api/auth/v1"
	defaultCookieSameSite = "strict"
)

type Config struct {
	// Address on which the auth service will run
	ListenAddr string

	// Logging level and output format
	LogLevel  string
	LogFormat string

	// Database to connect to
	DatabaseDSN string

	// Secret key used for signing JWT tokens, never logged
	SecretKey string

	// Token lifetimes in seconds
	AccessTTLSeconds  int
	RefreshTTLSeconds int

	// Refresh cookie attributes
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string

	// Paths the request authenticator bypasses, prefix matched
	PublicPaths []string
}

func NewConfig() *Config {
	return &Config{
		ListenAddr:        defaultListenAddr,
		LogLevel:          defaultLogLevel,
		LogFormat:         defaultLogFormat,
		AccessTTLSeconds:  defaultAccessTTLSecs,
		RefreshTTLSeconds: defaultRefreshTTLSecs,
		CookieName:        defaultCookieName,
		CookiePath:        defaultCookiePath,
		CookieSameSite:    defaultCookieSameSite,
		PublicPaths:       middleware.DefaultPublicPaths,
	}
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}
	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if parsed, err := strconv.ParseBool(value); err == nil {
				*o = parsed
			}
		}
	}
	setStringSlice := func(o *[]string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = splitAndTrim(value)
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"LOG_FORMAT":        setString(&c.LogFormat),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"SECRET_KEY":        setString(&c.SecretKey),
		"ACCESS_TOKEN_TTL":  setInt(&c.AccessTTLSeconds),
		"REFRESH_TOKEN_TTL": setInt(&c.RefreshTTLSeconds),
		"COOKIE_NAME":       setString(&c.CookieName),
		"COOKIE_PATH":       setString(&c.CookiePath),
		"COOKIE_DOMAIN":     setString(&c.CookieDomain),
		"COOKIE_SECURE":     setBool(&c.CookieSecure),
		"COOKIE_SAME_SITE":  setString(&c.CookieSameSite),
		"PUBLIC_PATHS":      setStringSlice(&c.PublicPaths),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("hmsauth", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key for signing tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Logging format (text, json)")
	fs.IntVar(&c.AccessTTLSeconds, "access-ttl", c.AccessTTLSeconds, "Access token lifetime in seconds")
	fs.IntVar(&c.RefreshTTLSeconds, "refresh-ttl", c.RefreshTTLSeconds, "Refresh token lifetime in seconds")
	fs.StringVar(&c.CookieName, "cookie-name", c.CookieName, "Refresh cookie name")
	fs.StringVar(&c.CookiePath, "cookie-path", c.CookiePath, "Refresh cookie path")
	fs.StringVar(&c.CookieDomain, "cookie-domain", c.CookieDomain, "Refresh cookie domain")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "Set the Secure flag on the refresh cookie")
	fs.StringVar(&c.CookieSameSite, "cookie-same-site", c.CookieSameSite, "Refresh cookie SameSite attribute (strict, lax, none)")
	fs.StringSliceVar(&c.PublicPaths, "public-paths", c.PublicPaths, "Path prefixes skipped by the request authenticator")

	return fs.Parse(args)
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
