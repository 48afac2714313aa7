package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time is used for duration-typed settings
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// costs, durations for lifetimes.
type Config struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host address
	DBPort     string        // database port number
	DBName     string        // database name
	BcryptCost int           // bcrypt cost for password hashing
	SessionTTL time.Duration // session lifetime (sliding; refreshed on each resolve)
	UploadDir  string        // directory that stores uploaded images
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Settings with a
// sensible default use getenv().
func Load() Config {
	return Config{
		Env:        must("APP_ENV"),  // environment (dev/test/prod)
		Port:       must("APP_PORT"), // port to bind the HTTP server
		DBUser:     must("DB_USER"),  // database user
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		BcryptCost: atoi(getenv("BCRYPT_COST", "12")),
		SessionTTL: time.Duration(atoi(getenv("SESSION_TTL_HOURS", "24"))) * time.Hour,
		UploadDir:  getenv("UPLOAD_DIR", "public/uploads"),
	}
}

// CookieSecure reports whether session cookies should carry the Secure
// flag. Local development runs over plain HTTP, everything else is
// assumed to sit behind TLS.
func (c Config) CookieSecure() bool {
	return c.Env != "dev" && c.Env != "test"
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value: %q", s)
	}
	return i
}
