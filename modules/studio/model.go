package studio

import (
	"errors"
	"time"

	"tet-photo-server/modules/tet"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrTooManyImages   = errors.New("too many images")
	ErrNoImages        = errors.New("no images")
	ErrImageTooLarge   = errors.New("image file too large")
	ErrNoResult        = errors.New("no transformed image")
	ErrSessionBusy     = errors.New("session is already processing")

	errStaleResult = errors.New("session changed during the call")
)

// Item - 업로드된 이미지 1장의 상태
type Item struct {
	ID          string  `json:"id"`
	Original    string  `json:"original"`    // data URI
	Transformed *string `json:"transformed"` // data URI, 아직 없으면 null
	IsLoading   bool    `json:"isLoading"`
	Error       *string `json:"error"`
}

// Settings - 세션 단위 설정 (꽃 / 인물 구성 / 합성 모드 + 스타일 옵션)
type Settings struct {
	FlowerType  tet.FlowerType      `json:"flowerType"`
	SubjectType tet.SubjectType     `json:"subjectType"`
	MergeMode   bool                `json:"mergeMode"`
	Options     tet.AdvancedOptions `json:"options"`
}

func DefaultSettings() Settings {
	return Settings{
		FlowerType:  tet.FlowerPeach,
		SubjectType: tet.SubjectSingle,
		MergeMode:   false,
		Options:     tet.DefaultOptions(),
	}
}

func (s Settings) Validate() error {
	if err := tet.ValidateChoices(s.FlowerType, s.SubjectType); err != nil {
		return err
	}
	return s.Options.Validate()
}

// SettingsPatch - PUT settings 요청. nil 필드는 기존 값 유지
type SettingsPatch struct {
	FlowerType  *tet.FlowerType  `json:"flowerType,omitempty"`
	SubjectType *tet.SubjectType `json:"subjectType,omitempty"`
	MergeMode   *bool            `json:"mergeMode,omitempty"`
	Options     *OptionsPatch    `json:"options,omitempty"`
}

type OptionsPatch struct {
	ShirtColor  *string        `json:"shirtColor,omitempty"`
	Style       *string        `json:"style,omitempty"`
	SkinColor   *string        `json:"skinColor,omitempty"`
	HairColor   *string        `json:"hairColor,omitempty"`
	CameraModel *string        `json:"cameraModel,omitempty"`
	FocalLength *string        `json:"focalLength,omitempty"`
	Aperture    *string        `json:"aperture,omitempty"`
	Emotion     *string        `json:"emotion,omitempty"`
	Framing     *tet.Framing   `json:"framing,omitempty"`
	Lighting    *tet.Lighting  `json:"lighting,omitempty"`
	Companion   *tet.Companion `json:"companion,omitempty"`
}

// Apply - patch 를 적용한 새 Settings 반환 (검증은 호출자가 수행)
func (p SettingsPatch) Apply(s Settings) Settings {
	setIf(&s.FlowerType, p.FlowerType)
	setIf(&s.SubjectType, p.SubjectType)
	setIf(&s.MergeMode, p.MergeMode)

	if o := p.Options; o != nil {
		setIf(&s.Options.ShirtColor, o.ShirtColor)
		setIf(&s.Options.Style, o.Style)
		setIf(&s.Options.SkinColor, o.SkinColor)
		setIf(&s.Options.HairColor, o.HairColor)
		setIf(&s.Options.CameraModel, o.CameraModel)
		setIf(&s.Options.FocalLength, o.FocalLength)
		setIf(&s.Options.Aperture, o.Aperture)
		setIf(&s.Options.Emotion, o.Emotion)
		setIf(&s.Options.Framing, o.Framing)
		setIf(&s.Options.Lighting, o.Lighting)
		setIf(&s.Options.Companion, o.Companion)
	}
	return s
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Session - 스튜디오 세션 (메모리 또는 Redis 에 TTL 로 보관)
type Session struct {
	ID            string    `json:"id"`
	Items         []*Item   `json:"items"`
	Settings      Settings  `json:"settings"`
	MergedResult  *string   `json:"mergedResult"`
	MergedError   *string   `json:"mergedError"`
	MergedLoading bool      `json:"mergedLoading"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// MergeGeneration - Reset / Upload 마다 증가. 진행 중이던 합성 결과의 폐기 판단용
	MergeGeneration int64 `json:"mergeGeneration"`
}

// clearMerged - 합성 결과 초기화 + 진행 중인 합성 호출 무효화
func (s *Session) clearMerged() {
	s.MergedResult = nil
	s.MergedError = nil
	s.MergedLoading = false
	s.MergeGeneration++
}

func (s *Session) findItem(itemID string) *Item {
	for _, item := range s.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// Clone - 저장소 밖으로 내보낼 때 사용하는 깊은 복사
func (s *Session) Clone() *Session {
	c := *s
	c.Items = make([]*Item, len(s.Items))
	for i, item := range s.Items {
		c.Items[i] = item.clone()
	}
	c.MergedResult = cloneString(s.MergedResult)
	c.MergedError = cloneString(s.MergedError)
	return &c
}

func (i *Item) clone() *Item {
	c := *i
	c.Transformed = cloneString(i.Transformed)
	c.Error = cloneString(i.Error)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// WebSocket 이벤트 타입
const (
	EventItemUpdate     = "item_update"
	EventMergedUpdate   = "merged_update"
	EventSettingsUpdate = "settings_update"
	EventItemRemoved    = "item_removed"
	EventSessionReset   = "session_reset"
	EventSessionDeleted = "session_deleted"
)

// Event - 세션 구독자에게 전달되는 상태 변경 메시지
type Event struct {
	Type      string   `json:"type"`
	SessionID string   `json:"sessionId"`
	Item      *Item    `json:"item,omitempty"`
	ItemID    string   `json:"itemId,omitempty"`
	Session   *Session `json:"session,omitempty"`
}
