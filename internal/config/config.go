package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations,
// costs and size limits.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	JWTSecret   string // secret used to sign JWTs; startup fails when unset
	TokenTTLHrs int    // session token time-to-live in hours
	BcryptCost  int    // bcrypt cost for password hashing

	StorageEndpoint  string // object store endpoint (host:port)
	StorageAccessKey string // object store access key
	StorageSecretKey string // object store secret key
	StorageBucket    string // bucket holding report and proof images
	StoragePublicURL string // base URL under which uploaded objects resolve
	StorageUseSSL    bool   // whether to talk to the object store over TLS

	MaxUploadBytes int64    // maximum accepted photo size in bytes
	AllowedImages  []string // accepted image MIME types for uploads
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The JWT signing
// secret deliberately has no fallback: a service running with a guessable
// default would accept forged tokens, so startup aborts instead.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),      // environment (dev/test/prod)
		Port:        must("APP_PORT"),     // port to bind the HTTP server
		DBUser:      must("DB_USER"),      // database user
		DBPass:      os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:      must("DB_HOST"),      // database host
		DBPort:      must("DB_PORT"),      // database port
		DBName:      must("DB_NAME"),      // database name
		JWTSecret:   must("JWT_SECRET"),   // secret used for signing JWTs
		TokenTTLHrs: envInt("TOKEN_TTL_HOURS", 24),
		BcryptCost:  envInt("BCRYPT_COST", 10),

		StorageEndpoint:  must("STORAGE_ENDPOINT"),
		StorageAccessKey: must("STORAGE_ACCESS_KEY"),
		StorageSecretKey: must("STORAGE_SECRET_KEY"),
		StorageBucket:    envStr("STORAGE_BUCKET", "uploads"),
		StoragePublicURL: must("STORAGE_PUBLIC_URL"),
		StorageUseSSL:    envBool("STORAGE_USE_SSL", true),

		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 3*1024*1024)),
		AllowedImages:  splitList(envStr("ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/gif,image/webp")),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// splitList breaks a comma-separated variable into trimmed entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
