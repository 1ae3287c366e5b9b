package util

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 60 * time.Minute
	// The auth cookies outlive the refresh token's cryptographic TTL;
	// the stored-value check still bounds the session server-side.
	defaultCookieMaxAge = 24 * time.Hour

	defaultStorageDir    = "storage"
	defaultBackendURL    = "http://localhost:8080"
	defaultMaxPhotoWidth = 1600

	BcryptCost = 10
	JWTLeeWay  = 5 * time.Second
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

// TokenConfig carries the two signing keys. Access and refresh tokens are
// signed with independent secrets so a leaked access key cannot forge
// refresh tokens.
type TokenConfig struct {
	AccessSecretKey  []byte
	RefreshSecretKey []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	CookieMaxAge     time.Duration
}

func NewTokenConfig() *TokenConfig {
	accessSecret := os.Getenv("ACCESS_TOKEN_SECRET")
	if accessSecret == "" {
		log.Fatal("ACCESS_TOKEN_SECRET is not set")
	}
	refreshSecret := os.Getenv("REFRESH_TOKEN_SECRET")
	if refreshSecret == "" {
		log.Fatal("REFRESH_TOKEN_SECRET is not set")
	}

	return &TokenConfig{
		AccessSecretKey:  []byte(accessSecret),
		RefreshSecretKey: []byte(refreshSecret),
		AccessTTL:        parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL:       parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
		CookieMaxAge:     parseDurationOrDefault("AUTH_COOKIE_MAX_AGE", defaultCookieMaxAge),
	}
}

type StorageConfig struct {
	Dir           string
	BaseURL       string
	MaxPhotoWidth int
}

func NewStorageConfig() *StorageConfig {
	dir := os.Getenv("STORAGE_DIR")
	if dir == "" {
		dir = defaultStorageDir
	}
	baseURL := os.Getenv("BACKEND_SERVER_PATH")
	if baseURL == "" {
		baseURL = defaultBackendURL
	}

	maxWidth := defaultMaxPhotoWidth
	if v := os.Getenv("MAX_PHOTO_WIDTH"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			maxWidth = w
		} else {
			log.Printf("Invalid MAX_PHOTO_WIDTH: %s, using default %d", v, defaultMaxPhotoWidth)
		}
	}

	return &StorageConfig{
		Dir:           dir,
		BaseURL:       baseURL,
		MaxPhotoWidth: maxWidth,
	}
}

func GetWebhookURL() string {
	return os.Getenv("WEBHOOK_URL")
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}
