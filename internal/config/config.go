package config // package config loads application configuration from environment variables

import (
    "log"  // log is used to report configuration errors and halt execution
    "os"   // os provides access to environment variables
    "time" // time represents the sweep base interval
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Database and Strava credentials are required;
// the bind address and sweep tuning carry local defaults so the server can
// come up against a dev database without any exported variables beyond the
// credentials.
type Config struct {
    Env          string        // application environment (e.g. "dev", "prod")
    IP           string        // interface the HTTP server binds to
    Port         string        // HTTP port to listen on
    DBUser       string        // database username
    DBPass       string        // database password (optional)
    DBHost       string        // database host address
    DBPort       string        // database port number
    DBName       string        // database name
    ClientID     string        // Strava OAuth client id
    ClientSecret string        // Strava OAuth client secret
    RedirectURL  string        // OAuth callback URL registered with Strava
    StateSecret  string        // secret signing the OAuth state token (empty disables verification)
    BaseInterval time.Duration // sweep base interval, multiplied by registry size
    DebugRoutes  bool          // expose /debug-oauth when true
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:          getenv("APP_ENV", "dev"),
        IP:           getenv("APP_IP", "127.0.0.1"),
        Port:         getenv("APP_PORT", "8080"),
        DBUser:       must("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"), // empty allowed
        DBHost:       must("DB_HOST"),
        DBPort:       must("DB_PORT"),
        DBName:       must("DB_NAME"),
        ClientID:     must("STRAVA_CLIENT_ID"),
        ClientSecret: must("STRAVA_CLIENT_SECRET"),
        RedirectURL:  must("STRAVA_REDIRECT_URL"),
        StateSecret:  os.Getenv("STATE_SECRET"),
        BaseInterval: parseDur(getenv("SWEEP_BASE_INTERVAL", "10s")),
        DebugRoutes:  getenv("DEBUG_ROUTES", "false") == "true",
    }
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
