package tet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOption = errors.New("invalid option")
	ErrNoImages      = errors.New("at least one image is required")
)

// 사용자에게 보여주는 고정 에러 메시지
const (
	MsgEmptyResult     = "Không thể tạo ảnh. Vui lòng thử lại."
	MsgTransformFailed = "Đã xảy ra lỗi trong quá trình xử lý ảnh. Hãy chắc chắn rằng bạn đang sử dụng API Key hợp lệ."
)

type FlowerType string

const (
	FlowerPeach   FlowerType = "peach"   // hoa đào (miền Bắc)
	FlowerApricot FlowerType = "apricot" // hoa mai (miền Nam)
)

type SubjectType string

const (
	SubjectSingle SubjectType = "single"
	SubjectGroup  SubjectType = "group"
)

type Framing string

const (
	FramingFullBody Framing = "full-body"
	FramingPortrait Framing = "portrait"
	FramingCloseUp  Framing = "close-up"
)

type Lighting string

const (
	LightingNatural      Lighting = "natural"
	LightingStudio       Lighting = "studio"
	LightingGoldenHour   Lighting = "golden-hour"
	LightingLanternNight Lighting = "lantern-night"
)

type Companion string

const (
	CompanionNone   Companion = "none"
	CompanionMale   Companion = "male"
	CompanionFemale Companion = "female"
)

// AdvancedOptions - 설정 패널의 스타일 옵션 (flat record)
type AdvancedOptions struct {
	ShirtColor  string    `json:"shirtColor"`
	Style       string    `json:"style"`
	SkinColor   string    `json:"skinColor"`
	HairColor   string    `json:"hairColor"`
	CameraModel string    `json:"cameraModel"`
	FocalLength string    `json:"focalLength"`
	Aperture    string    `json:"aperture"`
	Emotion     string    `json:"emotion"`
	Framing     Framing   `json:"framing"`
	Lighting    Lighting  `json:"lighting"`
	Companion   Companion `json:"companion"`
}

// DefaultOptions - 설정 패널 초기값
func DefaultOptions() AdvancedOptions {
	return AdvancedOptions{
		ShirtColor:  "Màu đỏ (truyền thống)",
		Style:       "Áo dài truyền thống",
		SkinColor:   "Trắng sáng hồng hào",
		HairColor:   "Đen tự nhiên",
		CameraModel: "Sony A7R V",
		FocalLength: "85mm",
		Aperture:    "f/1.4",
		Emotion:     "Vui tươi, rạng rỡ",
		Framing:     FramingPortrait,
		Lighting:    LightingNatural,
		Companion:   CompanionNone,
	}
}

// Validate - enum 값과 빈 문자열 검사
// 문자열 옵션은 카탈로그 밖의 값도 허용 (기본값 자체가 카탈로그에 없는 경우가 있음)
func (o AdvancedOptions) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"shirtColor", o.ShirtColor},
		{"style", o.Style},
		{"skinColor", o.SkinColor},
		{"hairColor", o.HairColor},
		{"cameraModel", o.CameraModel},
		{"focalLength", o.FocalLength},
		{"aperture", o.Aperture},
		{"emotion", o.Emotion},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s must not be blank", ErrInvalidOption, r.field)
		}
	}

	switch o.Framing {
	case FramingFullBody, FramingPortrait, FramingCloseUp:
	default:
		return fmt.Errorf("%w: framing %q", ErrInvalidOption, o.Framing)
	}
	switch o.Lighting {
	case LightingNatural, LightingStudio, LightingGoldenHour, LightingLanternNight:
	default:
		return fmt.Errorf("%w: lighting %q", ErrInvalidOption, o.Lighting)
	}
	switch o.Companion {
	case CompanionNone, CompanionMale, CompanionFemale:
	default:
		return fmt.Errorf("%w: companion %q", ErrInvalidOption, o.Companion)
	}
	return nil
}

// ValidateChoices - 꽃 종류 / 인물 구성 검사
func ValidateChoices(flower FlowerType, subject SubjectType) error {
	if flower != FlowerPeach && flower != FlowerApricot {
		return fmt.Errorf("%w: flowerType %q", ErrInvalidOption, flower)
	}
	if subject != SubjectSingle && subject != SubjectGroup {
		return fmt.Errorf("%w: subjectType %q", ErrInvalidOption, subject)
	}
	return nil
}

// AspectRatioFor - 전신은 세로로 긴 9:16, 나머지는 3:4
func AspectRatioFor(framing Framing) string {
	if framing == FramingFullBody {
		return "9:16"
	}
	return "3:4"
}

// Choice - enum 선택지 (값 + 화면 표시용 라벨)
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionCatalog - GET /api/tet/options 응답
type OptionCatalog struct {
	FlowerTypes  []Choice `json:"flowerTypes"`
	SubjectTypes []Choice `json:"subjectTypes"`
	Framings     []Choice `json:"framings"`
	Lightings    []Choice `json:"lightings"`
	Companions   []Choice `json:"companions"`

	ShirtColors  []string `json:"shirtColors"`
	Styles       []string `json:"styles"`
	SkinColors   []string `json:"skinColors"`
	HairColors   []string `json:"hairColors"`
	CameraModels []string `json:"cameraModels"`
	FocalLengths []string `json:"focalLengths"`
	Apertures    []string `json:"apertures"`
	Emotions     []string `json:"emotions"`

	Defaults         AdvancedOptions `json:"defaults"`
	DefaultFlower    FlowerType      `json:"defaultFlowerType"`
	DefaultSubject   SubjectType     `json:"defaultSubjectType"`
	DefaultMergeMode bool            `json:"defaultMergeMode"`
}

// Catalog - 설정 패널 선택지 전체
func Catalog() OptionCatalog {
	return OptionCatalog{
		FlowerTypes: []Choice{
			{Value: string(FlowerPeach), Label: "Hoa đào"},
			{Value: string(FlowerApricot), Label: "Hoa mai"},
		},
		SubjectTypes: []Choice{
			{Value: string(SubjectSingle), Label: "Một người"},
			{Value: string(SubjectGroup), Label: "Gia đình / Nhóm"},
		},
		Framings: []Choice{
			{Value: string(FramingFullBody), Label: "Toàn thân"},
			{Value: string(FramingPortrait), Label: "Chân dung"},
			{Value: string(FramingCloseUp), Label: "Cận mặt"},
		},
		Lightings: []Choice{
			{Value: string(LightingNatural), Label: "Tự nhiên"},
			{Value: string(LightingStudio), Label: "Studio"},
			{Value: string(LightingGoldenHour), Label: "Giờ vàng"},
			{Value: string(LightingLanternNight), Label: "Đèn lồng đêm"},
		},
		Companions: []Choice{
			{Value: string(CompanionNone), Label: "Không thêm"},
			{Value: string(CompanionMale), Label: "Thêm một bạn nam"},
			{Value: string(CompanionFemale), Label: "Thêm một bạn nữ"},
		},

		ShirtColors:  []string{"Màu đỏ (truyền thống)", "Áo dài đỏ truyền thống", "Áo dài vàng hoàng kim", "Áo dài xanh ngọc", "Trang phục hiện đại"},
		Styles:       []string{"Áo dài truyền thống", "Áo dài cách tân", "Trang phục hiện đại"},
		SkinColors:   []string{"Trắng sáng hồng hào", "Tự nhiên", "Rám nắng khỏe khoắn", "Giữ nguyên ảnh gốc"},
		HairColors:   []string{"Đen tự nhiên", "Nâu hạt dẻ", "Nâu tây", "Bạch kim", "Giữ nguyên ảnh gốc"},
		CameraModels: []string{"Sony A7R V", "Canon EOS R5", "Fujifilm GFX100"},
		FocalLengths: []string{"85mm", "85mm (Chân dung)", "50mm (Tự nhiên)", "135mm (Nén phông)"},
		Apertures:    []string{"f/1.4", "f/1.2 (Siêu xóa phông)", "f/1.4 (Chuyên nghiệp)", "f/2.8 (Vừa phải)"},
		Emotions:     []string{"Vui tươi, rạng rỡ", "Rạng rỡ, hạnh phúc", "Dịu dàng, đằm thắm", "Cá tính, sắc sảo"},

		Defaults:         DefaultOptions(),
		DefaultFlower:    FlowerPeach,
		DefaultSubject:   SubjectSingle,
		DefaultMergeMode: false,
	}
}

// TransformRequest - POST /api/tet/transform
type TransformRequest struct {
	Images      []string         `json:"images"` // data URI 목록
	FlowerType  FlowerType       `json:"flowerType"`
	SubjectType SubjectType      `json:"subjectType"`
	Options     *AdvancedOptions `json:"options,omitempty"`
}

// TransformResponse - POST /api/tet/transform 응답
type TransformResponse struct {
	Success      bool   `json:"success"`
	Image        string `json:"image,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
