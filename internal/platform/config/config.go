package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default mock directory admin credentials for local development.
const defaultMockAdmins = "admin:admin"

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	CORSOrigins   []string

	// ProvisionOnApproval creates the topic or ACL on the broker when a
	// request is approved.
	ProvisionOnApproval bool

	LogLevel  string
	LogFormat string

	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Directory DirectoryConfig
	LoginRate LoginRateConfig
}

// DatabaseConfig selects Postgres; an empty URL keeps stores in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig selects Redis; an empty URL keeps revocation and throttling in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig selects a real cluster; no bootstrap servers means the
// in-memory broker.
type KafkaConfig struct {
	BootstrapServers []string
	ClientID         string
	AuditTopic       string
	RequestTimeout   time.Duration
}

// DirectoryConfig selects the credential check used at login.
type DirectoryConfig struct {
	Mode string // "mock" or "ldap"

	// MockAdmins is a comma separated list of username:password pairs that
	// authenticate as admins in mock mode and as fallback admins in ldap mode.
	MockAdmins      map[string]string
	MockEmailDomain string

	LDAPURL            string
	LDAPBaseDN         string
	LDAPUserDNTemplate string
	LDAPAdminGroup     string
	LDAPFallback       bool
}

// LoginRateConfig throttles login attempts per username and client IP.
type LoginRateConfig struct {
	Limit  int
	Window time.Duration
}

const (
	DirectoryModeMock = "mock"
	DirectoryModeLDAP = "ldap"
)

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:                getEnv("PORTAL_ADDR", ":8000"),
		JWTSigningKey:       jwtSigningKey,
		JWTIssuer:           getEnv("JWT_ISSUER", "kafka-admin-portal"),
		TokenTTL:            getDuration("ACCESS_TOKEN_TTL", 60*time.Minute),
		CORSOrigins:         getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"}),
		ProvisionOnApproval: getBool("PROVISION_ON_APPROVAL", true),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			BootstrapServers: getList("KAFKA_BOOTSTRAP_SERVERS", nil),
			ClientID:         getEnv("KAFKA_CLIENT_ID", "kafka-admin-portal"),
			AuditTopic:       os.Getenv("AUDIT_KAFKA_TOPIC"),
			RequestTimeout:   getDuration("KAFKA_REQUEST_TIMEOUT", 10*time.Second),
		},
		Directory: DirectoryConfig{
			Mode:               strings.ToLower(getEnv("DIRECTORY_MODE", DirectoryModeMock)),
			MockAdmins:         parseCredentials(getEnv("MOCK_DIRECTORY_ADMINS", defaultMockAdmins)),
			MockEmailDomain:    getEnv("MOCK_DIRECTORY_EMAIL_DOMAIN", "company.com"),
			LDAPURL:            getEnv("LDAP_URL", "ldap://localhost:389"),
			LDAPBaseDN:         getEnv("LDAP_BASE_DN", "dc=company,dc=com"),
			LDAPUserDNTemplate: getEnv("LDAP_USER_DN_TEMPLATE", "uid=%s,ou=users,dc=company,dc=com"),
			LDAPAdminGroup:     getEnv("LDAP_ADMIN_GROUP", "cn=kafka-admins,ou=groups,dc=company,dc=com"),
			LDAPFallback:       getBool("LDAP_FALLBACK_ADMINS", true),
		},
		LoginRate: LoginRateConfig{
			Limit:  getInt("LOGIN_RATE_LIMIT", 5),
			Window: getDuration("LOGIN_RATE_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseCredentials reads "user:pass,user2:pass2".
func parseCredentials(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		user, pass, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || user == "" || pass == "" {
			continue
		}
		out[user] = pass
	}
	return out
}
