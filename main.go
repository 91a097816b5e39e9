package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tet-photo-server/modules/common/config"
	"tet-photo-server/modules/common/gemini"
	"tet-photo-server/modules/common/redis"
	"tet-photo-server/modules/studio"
	"tet-photo-server/modules/tet"
)

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "tet-photo-server",
	})
}

// 서버 메트릭 조회 엔드포인트
func metricsHandler(hub *studio.Hub, store string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := hub.Metrics()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"uptime":       time.Since(m.StartTime).String(),
			"sessionStore": store,
			"websocket":    m,
		})
	}
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Gemini 클라이언트
	genaiClient, err := gemini.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create Gemini client: %v", err)
	}
	tetService := tet.NewService(genaiClient.Models, cfg.GeminiModel)

	hub := studio.NewHub()

	// 세션 저장소 (REDIS_HOST 가 있으면 Redis, 없으면 메모리)
	var store studio.Store
	storeName := "memory"
	if cfg.RedisEnabled() {
		rdb, err := redis.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		store = studio.NewRedisStore(rdb, cfg.SessionTTL)
		storeName = "redis"
	} else {
		memory := studio.NewMemoryStore(cfg.SessionTTL)
		memory.StartCleanupRoutine(ctx, 5*time.Minute, hub.CloseSession)
		store = memory
	}

	studioService := studio.NewService(store, tetService, hub, cfg.MaxUploadImages)
	studioHandler := studio.NewHandler(studioService, hub, studio.HandlerConfig{
		MaxUploadImages:   cfg.MaxUploadImages,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		MaxImageDimension: cfg.MaxImageDimension,
		WebPQuality:       cfg.WebPQuality,
	})

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 라우트 설정
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/metrics", metricsHandler(hub, storeName)).Methods("GET")
	tet.NewHandler(tetService).RegisterRoutes(r)
	studioHandler.RegisterRoutes(r)

	log.Printf("🚀 Tết Photo Magic server starting on port %s", cfg.Port)
	log.Printf("🧧 Transform API: http://localhost:%s/api/tet/transform", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws?session=<id>", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)

	// 서버 시작
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
