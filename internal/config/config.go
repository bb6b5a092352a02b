package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportHTTP = "http"
	TransportUDS  = "uds"
)

type Config struct {
	APIURL          string
	Transport       string
	Socket          string
	DBPath          string
	WebAddr         string
	HTTPTimeout     time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	Debounce        time.Duration
	LogLevel        string
}

// Load reads an optional .env file and then the PCFORGE_* environment.
// Values already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		APIURL:          strings.TrimRight(getEnv("PCFORGE_API_URL", "http://localhost:8080"), "/"),
		Transport:       normalizeTransport(getEnv("PCFORGE_TRANSPORT", TransportHTTP)),
		Socket:          getEnv("PCFORGE_SOCKET", "/tmp/pcforge.sock"),
		DBPath:          expandHome(getEnv("PCFORGE_DB_PATH", defaultDBPath())),
		WebAddr:         getEnv("PCFORGE_WEB_ADDR", "127.0.0.1:8090"),
		HTTPTimeout:     getEnvAsDuration("PCFORGE_HTTP_TIMEOUT", 20*time.Second),
		CacheTTL:        getEnvAsDuration("PCFORGE_CACHE_TTL", 5*time.Minute),
		CacheMaxEntries: getEnvAsInt("PCFORGE_CACHE_MAX_ENTRIES", 100),
		Debounce:        getEnvAsDuration("PCFORGE_DEBOUNCE", 200*time.Millisecond),
		LogLevel:        getEnv("PCFORGE_LOG_LEVEL", ""),
	}
}

func normalizeTransport(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), TransportUDS) {
		return TransportUDS
	}
	return TransportHTTP
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pcforge", "pcforge.db")
	}
	return filepath.Join(home, ".pcforge", "pcforge.db")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return defaultVal
}
