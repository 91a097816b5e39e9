package tet

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

type generateCall struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// mockGenerator - 호출을 기록하고 미리 정한 응답을 돌려주는 ContentGenerator
type mockGenerator struct {
	mu       sync.Mutex
	calls    []generateCall
	response *genai.GenerateContentResponse
	err      error
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, generateCall{Model: model, Contents: contents, Config: config})
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func imageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				genai.NewPartFromText("here you go"),
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			}},
		}},
	}
}

func textOnlyResponse() *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText("sorry")}},
		}},
	}
}

func newTestService(gen ContentGenerator) *Service {
	s := NewService(gen, "test-model")
	s.pick = func(int) int { return 2 }
	return s
}
