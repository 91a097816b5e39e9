package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF 디코더 등록
	"image/jpeg"
	_ "image/png" // PNG 디코더 등록
	"log"
	"net/http"
	"strings"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/nfnt/resize"
)

var (
	ErrInvalidDataURI  = errors.New("invalid data URI")
	ErrUnsupportedMIME = errors.New("unsupported image MIME type")
	ErrEmptyImage      = errors.New("image data is empty")
)

// SupportedMIMETypes - 업로드 허용 이미지 타입
var SupportedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// EncodedImage - 이미지 바이너리 + 선언된 MIME 타입
type EncodedImage struct {
	MIMEType string
	Data     []byte
}

// DataURI - data:<mime>;base64,<payload> 형태로 인코딩
func (img EncodedImage) DataURI() string {
	return EncodeDataURI(img.MIMEType, img.Data)
}

// EncodeDataURI - 바이너리를 data URI 로 변환 (MIME 이 없으면 image/png)
func EncodeDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI - data URI 를 MIME 타입과 디코딩된 바이너리로 분리
func ParseDataURI(uri string) (EncodedImage, error) {
	header, payload, found := strings.Cut(uri, ",")
	if !found || !strings.HasPrefix(header, "data:") {
		return EncodedImage{}, fmt.Errorf("%w: missing data: header", ErrInvalidDataURI)
	}

	meta := strings.TrimPrefix(header, "data:")
	mimeType, params, _ := strings.Cut(meta, ";")
	if mimeType == "" {
		return EncodedImage{}, fmt.Errorf("%w: missing media type", ErrInvalidDataURI)
	}
	if !strings.Contains(params, "base64") {
		return EncodedImage{}, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return EncodedImage{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return EncodedImage{}, ErrEmptyImage
	}

	return EncodedImage{MIMEType: strings.ToLower(mimeType), Data: data}, nil
}

// DetectImage - 업로드 바이너리의 MIME 타입 판별 및 검증
func DetectImage(data []byte) (EncodedImage, error) {
	if len(data) == 0 {
		return EncodedImage{}, ErrEmptyImage
	}

	mimeType := http.DetectContentType(data)
	if !SupportedMIMETypes[mimeType] {
		return EncodedImage{}, fmt.Errorf("%w: %s", ErrUnsupportedMIME, mimeType)
	}
	return EncodedImage{MIMEType: mimeType, Data: data}, nil
}

// DecodeImage - WebP, PNG, JPEG, GIF 디코딩
func DecodeImage(img EncodedImage) (image.Image, error) {
	if img.MIMEType == "image/webp" {
		decoded, err := webp.Decode(bytes.NewReader(img.Data), &decoder.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to decode WebP: %w", err)
		}
		return decoded, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return decoded, nil
}

// Downscale - 긴 변이 maxDimension 을 넘으면 비율 유지하며 축소 후 JPEG 재인코딩
// maxDimension <= 0 이면 원본 그대로 반환
func Downscale(img EncodedImage, maxDimension int) (EncodedImage, error) {
	if maxDimension <= 0 {
		return img, nil
	}

	decoded, err := DecodeImage(img)
	if err != nil {
		return EncodedImage{}, err
	}

	bounds := decoded.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return img, nil
	}

	resized := resize.Thumbnail(uint(maxDimension), uint(maxDimension), decoded, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return EncodedImage{}, fmt.Errorf("failed to encode resized image: %w", err)
	}

	log.Printf("🔄 Image downscaled: %dx%d → %dx%d (%d bytes → %d bytes)",
		bounds.Dx(), bounds.Dy(), resized.Bounds().Dx(), resized.Bounds().Dy(), len(img.Data), buf.Len())

	return EncodedImage{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// ConvertToWebP - PNG/JPEG 바이너리를 WebP로 변환
func ConvertToWebP(src EncodedImage, quality float32) ([]byte, error) {
	log.Printf("🔄 Converting %s to WebP (quality: %.1f)", src.MIMEType, quality)

	img, err := DecodeImage(src)
	if err != nil {
		return nil, err
	}

	// WebP 인코딩
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ Image converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		len(src.Data), len(webpData),
		float64(len(src.Data)-len(webpData))/float64(len(src.Data))*100)

	return webpData, nil
}

// ExtensionFromMIME - 다운로드 파일 확장자
func ExtensionFromMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
