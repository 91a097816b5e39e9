package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"tet-photo-server/modules/common/config"
)

// NewClient - 설정된 backend (Gemini API / Vertex AI) 에 맞는 genai 클라이언트 생성
func NewClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{}

	switch cfg.GeminiBackend {
	case config.BackendVertexAI:
		// Vertex AI 는 Application Default Credentials 사용
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = cfg.VertexProject
		clientCfg.Location = cfg.VertexLocation
		log.Printf("✅ [Gemini] Using Vertex AI backend: project=%s, location=%s", cfg.VertexProject, cfg.VertexLocation)
	default:
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = cfg.GeminiAPIKey
		log.Printf("✅ [Gemini] Using Gemini API backend")
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

// IsQuotaError - 429 / Rate Limit / Quota 에러인지 확인 (로그 분류 전용, 재시도 없음)
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "resource_exhausted")
}

// IsAuthError - API Key 문제로 보이는 에러인지 확인
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "api key") ||
		strings.Contains(errStr, "api_key_invalid") ||
		strings.Contains(errStr, "permission_denied") ||
		strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403")
}

// DescribeError - 로그용 에러 분류 태그
func DescribeError(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsQuotaError(err):
		return "quota"
	case IsAuthError(err):
		return "auth"
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}
