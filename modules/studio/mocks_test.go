package studio

import (
	"context"
	"sync"

	"tet-photo-server/modules/common/utils"
	"tet-photo-server/modules/tet"
)

type transformCall struct {
	Images  []utils.EncodedImage
	Flower  tet.FlowerType
	Subject tet.SubjectType
	Options tet.AdvancedOptions
}

// mockTransformer - 호출을 기록하고 respond 결과를 돌려주는 Transformer
type mockTransformer struct {
	mu      sync.Mutex
	calls   []transformCall
	respond func(call int, images []utils.EncodedImage) (string, error)
}

func (m *mockTransformer) Transform(ctx context.Context, images []utils.EncodedImage, flower tet.FlowerType, subject tet.SubjectType, opts tet.AdvancedOptions) (string, error) {
	m.mu.Lock()
	n := len(m.calls)
	m.calls = append(m.calls, transformCall{Images: images, Flower: flower, Subject: subject, Options: opts})
	respond := m.respond
	m.mu.Unlock()

	if respond == nil {
		return utils.EncodeDataURI("image/png", []byte("result")), nil
	}
	return respond(n, images)
}

func (m *mockTransformer) Calls() []transformCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transformCall(nil), m.calls...)
}

// mockNotifier - 발행된 이벤트 기록
type mockNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockNotifier) Publish(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockNotifier) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}

func photo(name string) utils.EncodedImage {
	return utils.EncodedImage{MIMEType: "image/jpeg", Data: []byte(name)}
}
