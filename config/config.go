// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi
// oluşturulup main.go'dan ihtiyaç duyan katmanlara dağıtılır.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Ortam değerleri. Development dışındaki her şey production muamelesi görür:
// cookie'ler Secure flag'i ile yazılır, callback redirect'i forwarded host'u dikkate alır.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Env      string // EnvDevelopment | EnvProduction
	Server   ServerConfig
	Database DatabaseConfig
	Access   AccessConfig
	Session  SessionConfig
	OAuth    OAuthConfig
	LLM      LLMConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/sohbet.db)
}

// AccessConfig, access gate ayarları.
//
// Code BOŞ OLABİLİR: eksik secret startup'ı durdurmaz,
// validate-access isteğinde generic 500 olarak yüzeye çıkar.
// Bu yüzden Load() burada zorunluluk kontrolü YAPMAZ.
type AccessConfig struct {
	Code string
}

// SessionConfig, oturum token ayarları.
type SessionConfig struct {
	Secret             string // JWT imzalama anahtarı — GİZLİ TUTULMALI
	AccessTokenExpiry  int    // Dakika cinsinden (varsayılan: 15)
	RefreshTokenExpiry int    // Gün cinsinden (varsayılan: 7)
}

// OAuthConfig, identity provider ayarları.
// Provider-agnostik: herhangi bir standart authorization-code provider'ı
// (Google, GitHub, kurum içi IdP) endpoint URL'leri ile tanımlanır.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string // Provider'ın authorize endpoint'i
	TokenURL     string // Code → token exchange endpoint'i
	UserInfoURL  string // Kimlik bilgisi (sub, email, name, picture) endpoint'i
	RedirectURL  string // Bizim /auth/callback adresimiz
	Scopes       []string
}

// LLMConfig, completion stream servisinin ayarları.
// OpenAI-compatible her endpoint ile çalışır (BaseURL değiştirilebilir).
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler — production'da dosya olmaz,
// gerçek env variable'lar kullanılır.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	accessExpiry, err := strconv.Atoi(getEnv("SESSION_ACCESS_EXPIRY_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_ACCESS_EXPIRY_MINUTES: %w", err)
	}

	refreshExpiry, err := strconv.Atoi(getEnv("SESSION_REFRESH_EXPIRY_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_REFRESH_EXPIRY_DAYS: %w", err)
	}

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	env := getEnv("APP_ENV", EnvDevelopment)
	if env != EnvDevelopment && env != EnvProduction {
		return nil, fmt.Errorf("invalid APP_ENV %q: must be %q or %q", env, EnvDevelopment, EnvProduction)
	}

	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/sohbet.db"),
		},
		Access: AccessConfig{
			Code: getEnv("ACCESS_CODE", ""),
		},
		Session: SessionConfig{
			Secret:             sessionSecret,
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: refreshExpiry,
		},
		OAuth: OAuthConfig{
			ClientID:     getEnv("OAUTH_CLIENT_ID", ""),
			ClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
			AuthURL:      getEnv("OAUTH_AUTH_URL", ""),
			TokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
			UserInfoURL:  getEnv("OAUTH_USERINFO_URL", ""),
			RedirectURL:  getEnv("OAUTH_REDIRECT_URL", ""),
			Scopes:       []string{"openid", "email", "profile"},
		},
		LLM: LLMConfig{
			BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("LLM_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
	}

	return cfg, nil
}

// IsDevelopment, local/development ortamında mıyız?
// Cookie Secure flag'i ve callback redirect host mantığı buna bakar.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:8080").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
