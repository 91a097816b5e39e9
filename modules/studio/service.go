package studio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tet-photo-server/modules/common/gemini"
	"tet-photo-server/modules/common/utils"
	"tet-photo-server/modules/tet"
)

// Transformer - tet.Service 가 만족하는 변환 인터페이스
type Transformer interface {
	Transform(ctx context.Context, images []utils.EncodedImage, flower tet.FlowerType, subject tet.SubjectType, opts tet.AdvancedOptions) (string, error)
}

// sessionLock - state 는 load-modify-save 구간, call 은 외부 호출 1건 제한
// refs 가 0 이 되면 맵에서 제거 (만료된 세션의 잠금이 남지 않도록)
type sessionLock struct {
	state sync.Mutex
	call  sync.Mutex
	refs  int
}

type Service struct {
	store       Store
	transformer Transformer
	notifier    Notifier
	maxImages   int

	locks map[string]*sessionLock
	mutex sync.Mutex
}

func NewService(store Store, transformer Transformer, notifier Notifier, maxImages int) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		store:       store,
		transformer: transformer,
		notifier:    notifier,
		maxImages:   maxImages,
		locks:       make(map[string]*sessionLock),
	}
}

// acquire - 세션 잠금 참조 획득. 사용 후 반드시 release
func (s *Service) acquire(id string) *sessionLock {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	l, exists := s.locks[id]
	if !exists {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *Service) release(id string, l *sessionLock) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

// lockCount - 현재 잡혀 있는 세션 잠금 수
func (s *Service) lockCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.locks)
}

// update - 세션을 잠그고 읽기 → fn 적용 → 저장
// Updater 를 구현한 저장소(Redis)는 인스턴스 간 낙관적 잠금까지 저장소가 처리. fn 은 재실행될 수 있음
func (s *Service) update(ctx context.Context, id string, fn func(session *Session) error) (*Session, error) {
	l := s.acquire(id)
	defer s.release(id, l)
	l.state.Lock()
	defer l.state.Unlock()

	apply := func(session *Session) error {
		if err := fn(session); err != nil {
			return err
		}
		session.UpdatedAt = time.Now()
		return nil
	}

	if updater, ok := s.store.(Updater); ok {
		return updater.Update(ctx, id, apply)
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(session); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CreateSession - 기본 설정으로 새 세션 생성
func (s *Service) CreateSession(ctx context.Context) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		Items:     []*Item{},
		Settings:  DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("✅ [Studio] Created new session: %s", session.ID)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	l := s.acquire(id)
	defer s.release(id, l)
	l.state.Lock()
	defer l.state.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("🗑️  [Studio] Deleted session: %s", id)
	s.notifier.Publish(Event{Type: EventSessionDeleted, SessionID: id})
	return nil
}

// Upload - 이미지마다 새 Item 추가 (transformed = null). 합성 결과는 초기화
func (s *Service) Upload(ctx context.Context, id string, images []utils.EncodedImage) ([]*Item, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	var added []*Item
	_, err := s.update(ctx, id, func(session *Session) error {
		added = nil
		if len(session.Items)+len(images) > s.maxImages {
			return fmt.Errorf("%w: %d already uploaded, %d more exceeds the limit of %d",
				ErrTooManyImages, len(session.Items), len(images), s.maxImages)
		}
		for _, img := range images {
			item := &Item{ID: uuid.NewString(), Original: img.DataURI()}
			session.Items = append(session.Items, item)
			added = append(added, item.clone())
		}
		session.clearMerged()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📷 [Studio] Session %s: %d images uploaded", id, len(added))
	for _, item := range added {
		s.notifier.Publish(Event{Type: EventItemUpdate, SessionID: id, Item: item})
	}
	return added, nil
}

// UpdateSettings - patch 적용 후 검증, 통과하면 저장
func (s *Service) UpdateSettings(ctx context.Context, id string, patch SettingsPatch) (*Session, error) {
	session, err := s.update(ctx, id, func(session *Session) error {
		next := patch.Apply(session.Settings)
		if err := next.Validate(); err != nil {
			return err
		}
		session.Settings = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(Event{Type: EventSettingsUpdate, SessionID: id, Session: session.Clone()})
	return session, nil
}

// RemoveItem - Item 1개 삭제
func (s *Service) RemoveItem(ctx context.Context, id, itemID string) error {
	_, err := s.update(ctx, id, func(session *Session) error {
		for i, item := range session.Items {
			if item.ID == itemID {
				session.Items = append(session.Items[:i], session.Items[i+1:]...)
				return nil
			}
		}
		return ErrItemNotFound
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(Event{Type: EventItemRemoved, SessionID: id, ItemID: itemID})
	return nil
}

// Reset - 모든 Item 과 합성 결과 삭제 (설정은 유지)
func (s *Service) Reset(ctx context.Context, id string) (*Session, error) {
	session, err := s.update(ctx, id, func(session *Session) error {
		session.Items = []*Item{}
		session.clearMerged()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔄 [Studio] Session %s reset", id)
	s.notifier.Publish(Event{Type: EventSessionReset, SessionID: id, Session: session.Clone()})
	return session, nil
}

// TransformItem - Item 1개 변환
func (s *Service) TransformItem(ctx context.Context, id, itemID string) (*Item, error) {
	l := s.acquire(id)
	defer s.release(id, l)
	if !l.call.TryLock() {
		return nil, ErrSessionBusy
	}
	defer l.call.Unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.findItem(itemID) == nil {
		return nil, ErrItemNotFound
	}

	return s.runItem(ctx, id, itemID)
}

// TransformAll - 합성 모드면 전체 이미지로 1회 호출, 아니면 미변환 Item 을 순서대로 1건씩
// Item 실패는 루프를 멈추지 않음
func (s *Service) TransformAll(ctx context.Context, id string) (*Session, error) {
	l := s.acquire(id)
	defer s.release(id, l)
	if !l.call.TryLock() {
		return nil, ErrSessionBusy
	}
	defer l.call.Unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(session.Items) == 0 {
		return nil, ErrNoImages
	}

	if session.Settings.MergeMode {
		if err := s.runMerged(ctx, id); err != nil {
			return nil, err
		}
		return s.store.Get(ctx, id)
	}

	var pending []string
	for _, item := range session.Items {
		if item.Transformed == nil {
			pending = append(pending, item.ID)
		}
	}

	log.Printf("🚀 [Studio] Session %s: sequential batch of %d items", id, len(pending))
	for i, itemID := range pending {
		if err := ctx.Err(); err != nil {
			log.Printf("⚠️  [Studio] Session %s: batch stopped at %d/%d: %v", id, i, len(pending), err)
			return nil, err
		}
		if _, err := s.runItem(ctx, id, itemID); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				continue // 처리 중 삭제됨
			}
			return nil, err
		}
	}
	return s.store.Get(ctx, id)
}

// runItem - loading 표시 → 외부 호출 → 결과 반영. call 잠금을 잡은 상태에서 호출
func (s *Service) runItem(ctx context.Context, id, itemID string) (*Item, error) {
	var original string
	var settings Settings
	var snapshot *Item

	_, err := s.update(ctx, id, func(session *Session) error {
		item := session.findItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}
		item.IsLoading = true
		item.Error = nil
		original = item.Original
		settings = session.Settings
		snapshot = item.clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(Event{Type: EventItemUpdate, SessionID: id, Item: snapshot})

	result, callErr := s.callTransformer(ctx, settings, original)

	var final *Item
	_, err = s.update(context.WithoutCancel(ctx), id, func(session *Session) error {
		item := session.findItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}
		applyOutcome(&item.Transformed, &item.Error, result, callErr)
		item.IsLoading = false
		final = item.clone()
		return nil
	})
	if err != nil {
		log.Printf("⚠️  [Studio] Session %s: result for item %s dropped: %v", id, itemID, err)
		return nil, err
	}

	s.notifier.Publish(Event{Type: EventItemUpdate, SessionID: id, Item: final})
	return final, nil
}

// runMerged - 모든 Item 이미지를 한 번의 호출로 합성해 mergedResult 에 저장
func (s *Service) runMerged(ctx context.Context, id string) error {
	var originals []string
	var settings Settings
	var generation int64

	session, err := s.update(ctx, id, func(session *Session) error {
		originals = nil
		for _, item := range session.Items {
			originals = append(originals, item.Original)
		}
		settings = session.Settings
		generation = session.MergeGeneration
		session.MergedLoading = true
		session.MergedError = nil
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Publish(Event{Type: EventMergedUpdate, SessionID: id, Session: session.Clone()})

	log.Printf("🚀 [Studio] Session %s: merged transform of %d images", id, len(originals))
	result, callErr := s.callTransformer(ctx, settings, originals...)

	session, err = s.update(context.WithoutCancel(ctx), id, func(session *Session) error {
		// 호출 중 Reset / Upload 가 있었으면 결과 폐기
		if session.MergeGeneration != generation {
			return errStaleResult
		}
		applyOutcome(&session.MergedResult, &session.MergedError, result, callErr)
		session.MergedLoading = false
		return nil
	})
	if errors.Is(err, errStaleResult) {
		log.Printf("⚠️  [Studio] Session %s: merged result dropped, session changed during the call", id)
		return nil
	}
	if err != nil {
		return err
	}

	s.notifier.Publish(Event{Type: EventMergedUpdate, SessionID: id, Session: session.Clone()})
	return nil
}

func (s *Service) callTransformer(ctx context.Context, settings Settings, originals ...string) (string, error) {
	images := make([]utils.EncodedImage, 0, len(originals))
	for _, uri := range originals {
		img, err := utils.ParseDataURI(uri)
		if err != nil {
			return "", err
		}
		images = append(images, img)
	}

	result, err := s.transformer.Transform(ctx, images, settings.FlowerType, settings.SubjectType, settings.Options)
	if err != nil {
		log.Printf("❌ [Studio] Transform failed (%s): %v", gemini.DescribeError(err), err)
	}
	return result, err
}

// applyOutcome - 성공이면 결과 저장, 빈 결과/에러면 이전 결과를 지우고 고정 메시지 저장
func applyOutcome(result, errMsg **string, image string, err error) {
	switch {
	case err != nil:
		msg := tet.MsgTransformFailed
		*result = nil
		*errMsg = &msg
	case image == "":
		msg := tet.MsgEmptyResult
		*result = nil
		*errMsg = &msg
	default:
		*result = &image
		*errMsg = nil
	}
}
