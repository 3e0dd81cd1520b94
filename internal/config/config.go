package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreBackend string // "redis" | "memory"

	// Service registry
	ServiceFile      string // path to the services.yaml registry
	WatchServiceFile bool   // reload the registry as soon as the file changes
	ReloadInterval   time.Duration

	// Dataset access
	SnapshotDir       string        // directory of YAML dataset snapshots keyed by URL hash
	TableFetchTimeout time.Duration // timeout for tabledap GeoJSON requests

	// Compliance
	Checker           string        // ruleset name, ex: "ioos"
	ComplianceURL     string        // optional, empty = compliance scoring disabled
	ComplianceTimeout time.Duration // per-request timeout for the compliance service
	BeliefFile        string        // optional belief schema override

	// Scheduling
	HarvestInterval      time.Duration // interval between harvest cycles (default: 24h)
	HarvestOnStart       bool          // enqueue a full cycle at startup
	Workers              int           // concurrent harvest workers
	QueuePollTimeout     time.Duration // blocking dequeue timeout
	SmallServiceDatasets int           // services with at most this many datasets get SmallServiceTimeout
	SmallServiceTimeout  time.Duration
	PerDatasetTimeout    time.Duration // allowance per dataset for large services
	GCInterval           time.Duration
	GCThreshold          time.Duration // disabled services older than this are collected

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // dial timeout
	RedisRT               time.Duration // read timeout
	RedisWT               time.Duration // write timeout
	RedisMaxWait          time.Duration // max wait between retries
	RedisPingTimeout      time.Duration // timeout for each ping attempt
	RedisPoolSize         int
	RedisConnectTimeout   time.Duration // total time to retry connecting
	RedisRetryInterval    time.Duration // initial wait between retries (grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// HTTP access
	AllowedHosts      []string // optional, restrict access to specific Host headers
	AllowedCIDRS      []string // optional, restrict trigger endpoints to these IPs/CIDRs
	TrustProxy        bool     // trust X-Forwarded-For headers
	TriggerBurst      int      // rate limit burst for harvest triggers
	TriggerRefillPerM int      // rate limit refill per IP per minute
}

func Load() *Config {
	cfg := &Config{
		ListenPort:      getenv("CATALOG_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CATALOG_SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  getenv("CATALOG_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CATALOG_PRETTY_LOG", false),

		StoreBackend: strings.ToLower(getenv("CATALOG_STORE", StoreRedis)),

		ServiceFile:      getenv("CATALOG_SERVICE_FILE", "/etc/catalog/services.yaml"),
		WatchServiceFile: mustBool("CATALOG_WATCH_SERVICE_FILE", true),
		ReloadInterval:   mustDuration("CATALOG_RELOAD_INTERVAL", time.Hour),

		SnapshotDir:       getenv("CATALOG_SNAPSHOT_DIR", ""),
		TableFetchTimeout: mustDuration("CATALOG_TABLE_FETCH_TIMEOUT", 60*time.Second),

		Checker:           getenv("CATALOG_CHECKER", "ioos"),
		ComplianceURL:     getenv("CATALOG_COMPLIANCE_URL", ""),
		ComplianceTimeout: mustDuration("CATALOG_COMPLIANCE_TIMEOUT", 2*time.Minute),
		BeliefFile:        getenv("CATALOG_BELIEF_FILE", ""),

		HarvestInterval:      mustDuration("CATALOG_HARVEST_INTERVAL", 24*time.Hour),
		HarvestOnStart:       mustBool("CATALOG_HARVEST_ON_START", false),
		Workers:              getenvInt("CATALOG_WORKERS", 4),
		QueuePollTimeout:     mustDuration("CATALOG_QUEUE_POLL_TIMEOUT", 5*time.Second),
		SmallServiceDatasets: getenvInt("CATALOG_SMALL_SERVICE_DATASETS", 36),
		SmallServiceTimeout:  mustDuration("CATALOG_SMALL_SERVICE_TIMEOUT", 180*time.Second),
		PerDatasetTimeout:    mustDuration("CATALOG_PER_DATASET_TIMEOUT", 60*time.Second),
		GCInterval:           mustDuration("CATALOG_GC_INTERVAL", 24*time.Hour),
		GCThreshold:          mustDuration("CATALOG_GC_THRESHOLD", 30*24*time.Hour),

		RedisUser:             getenv("CATALOG_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("CATALOG_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("CATALOG_REDIS_PASSWORD", ""),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		AllowedHosts:      splitAndTrim(getenv("CATALOG_ALLOWED_HOSTS", "")),
		AllowedCIDRS:      parseAllowedIPs(getenv("CATALOG_ALLOWED_CIDRS", "")),
		TrustProxy:        mustBool("CATALOG_TRUST_PROXY", false),
		TriggerBurst:      getenvInt("CATALOG_TRIGGER_BURST", 5),
		TriggerRefillPerM: getenvInt("CATALOG_TRIGGER_REFILL_PER_MIN", 10),
	}

	switch cfg.StoreBackend {
	case StoreRedis:
		cfg.RedisAddr = requireEnv("CATALOG_REDIS_ADDR")
		cfg.RedisDB = requireEnvInt("CATALOG_REDIS_DB")
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: CATALOG_REDIS_PASSWORD is required when CATALOG_REDIS_PASSWORD_REQUIRED=true")
		}
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: unknown CATALOG_STORE %q (want %q or %q)", cfg.StoreBackend, StoreRedis, StoreMemory))
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := requireEnv(key)
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
