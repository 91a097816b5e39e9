package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGeminiAPI = "gemini"
	BackendVertexAI  = "vertex"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Gemini API
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBackend  string
	VertexProject  string
	VertexLocation string

	// Redis (선택 - 비어있으면 메모리 세션 저장소 사용)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Server
	Port string

	// Upload
	MaxUploadImages   int
	MaxUploadBytes    int64
	MaxImageDimension int

	// Output
	WebPQuality float32

	// Session
	SessionTTL time.Duration
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// 기존 배포 환경 호환: API_KEY 도 허용
	apiKey := getEnv("GEMINI_API_KEY", os.Getenv("API_KEY"))

	cfg := &Config{
		// Gemini API
		GeminiAPIKey:   apiKey,
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBackend:  strings.ToLower(getEnv("GEMINI_BACKEND", BackendGeminiAPI)),
		VertexProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		VertexLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   getEnvBool("REDIS_USE_TLS", false),

		// Server
		Port: getEnv("PORT", "8080"),

		// Upload
		MaxUploadImages:   getEnvInt("MAX_UPLOAD_IMAGES", 5),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaxImageDimension: getEnvInt("MAX_IMAGE_DIMENSION", 2048),

		// Output
		WebPQuality: float32(getEnvInt("WEBP_QUALITY", 90)),

		// Session
		SessionTTL: getEnvDuration("SESSION_TTL", 2*time.Hour),
	}

	// 필수 환경변수 검증
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Gemini: %s (backend: %s)", cfg.GeminiModel, cfg.GeminiBackend)
	if cfg.RedisEnabled() {
		log.Printf("   Redis: %s (TLS: %v)", cfg.GetRedisAddr(), cfg.RedisUseTLS)
	} else {
		log.Printf("   Redis: disabled (in-memory sessions, TTL %v)", cfg.SessionTTL)
	}
	log.Printf("   Upload: max %d images, %d bytes each, max side %dpx",
		cfg.MaxUploadImages, cfg.MaxUploadBytes, cfg.MaxImageDimension)

	return cfg, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	switch c.GeminiBackend {
	case BackendGeminiAPI:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case BackendVertexAI:
		if c.VertexProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the vertex backend")
		}
	default:
		return fmt.Errorf("unknown GEMINI_BACKEND: %s", c.GeminiBackend)
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	if c.MaxUploadImages <= 0 {
		return fmt.Errorf("MAX_UPLOAD_IMAGES must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.WebPQuality < 0 || c.WebPQuality > 100 {
		return fmt.Errorf("WEBP_QUALITY must be between 0 and 100")
	}
	return nil
}

// RedisEnabled - REDIS_HOST 가 설정된 경우에만 Redis 세션 저장소 사용
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, raw, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid %s=%q, using default %v", key, raw, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid %s=%q, using default %v", key, raw, defaultValue)
	}
	return defaultValue
}
