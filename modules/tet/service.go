package tet

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"

	"google.golang.org/genai"

	"tet-photo-server/modules/common/gemini"
	"tet-photo-server/modules/common/utils"
)

// ContentGenerator - genai.Client.Models 가 만족하는 최소 인터페이스 (테스트에서 mock 주입)
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Service struct {
	generator ContentGenerator
	model     string
	pick      func(n int) int // AmbientVariations 인덱스 선택
}

func NewService(generator ContentGenerator, model string) *Service {
	log.Printf("✅ [Tet] Service initialized (model: %s)", model)
	return &Service{
		generator: generator,
		model:     model,
		pick:      rand.IntN,
	}
}

// Transform - 이미지(들)를 Tết 스타일 초상화로 변환
// 결과 이미지가 없으면 "" 반환, Gemini 에러는 그대로 반환 (재시도 없음)
func (s *Service) Transform(ctx context.Context, images []utils.EncodedImage, flower FlowerType, subject SubjectType, opts AdvancedOptions) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}
	if flower == "" {
		flower = FlowerPeach
	}
	if subject == "" {
		subject = SubjectSingle
	}

	ambient := AmbientVariations[s.pick(len(AmbientVariations))]
	prompt := BuildTetPrompt(flower, subject, opts, ambient, len(images))
	aspectRatio := AspectRatioFor(opts.Framing)

	log.Printf("🎨 [Tet] Generating - model: %s, ratio: %s, images: %d, flower: %s, subject: %s, ambient: %s",
		s.model, aspectRatio, len(images), flower, subject, ambient)

	// Parts: 입력 이미지 순서대로, 마지막에 텍스트 프롬프트
	parts := make([]*genai.Part, 0, len(images)+1)
	for i, img := range images {
		log.Printf("📷 [Tet] Adding input image %d: %s, %d bytes", i+1, img.MIMEType, len(img.Data))
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	result, err := s.generator.GenerateContent(
		ctx,
		s.model,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: aspectRatio,
			},
		},
	)
	if err != nil {
		log.Printf("❌ [Tet] Gemini API error (%s): %v", gemini.DescribeError(err), err)
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		log.Printf("⚠️  [Tet] No candidates in response")
		return "", nil
	}

	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			log.Printf("✅ [Tet] Image generated: %s, %d bytes", part.InlineData.MIMEType, len(part.InlineData.Data))
			return utils.EncodeDataURI(part.InlineData.MIMEType, part.InlineData.Data), nil
		}
	}

	log.Printf("⚠️  [Tet] No inline image in response")
	return "", nil
}

// TransformDataURIs - data URI 목록을 파싱한 뒤 Transform 호출
func (s *Service) TransformDataURIs(ctx context.Context, uris []string, flower FlowerType, subject SubjectType, opts AdvancedOptions) (string, error) {
	images := make([]utils.EncodedImage, 0, len(uris))
	for i, uri := range uris {
		img, err := utils.ParseDataURI(uri)
		if err != nil {
			return "", fmt.Errorf("image %d: %w", i+1, err)
		}
		images = append(images, img)
	}
	return s.Transform(ctx, images, flower, subject, opts)
}
