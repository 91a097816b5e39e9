package tet

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"tet-photo-server/modules/common/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - /api/tet 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/tet/options", h.HandleOptions).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/tet/transform", h.HandleTransform).Methods("POST", "OPTIONS")
}

// HandleOptions - GET /api/tet/options
// 설정 패널 선택지 + 기본값
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Catalog())
}

// HandleTransform - POST /api/tet/transform
// 세션 없이 data URI 를 바로 변환 (단일 페이지 흐름)
func (h *Handler) HandleTransform(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.service == nil {
		log.Println("❌ [Tet] Service not initialized")
		writeTransformResponse(w, http.StatusServiceUnavailable, TransformResponse{ErrorMessage: "Service unavailable"})
		return
	}

	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Tet] Invalid request: %v", err)
		writeTransformResponse(w, http.StatusBadRequest, TransformResponse{ErrorMessage: "Invalid request format"})
		return
	}

	opts := DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	if req.FlowerType == "" {
		req.FlowerType = FlowerPeach
	}
	if req.SubjectType == "" {
		req.SubjectType = SubjectSingle
	}

	if err := opts.Validate(); err != nil {
		writeTransformResponse(w, http.StatusBadRequest, TransformResponse{ErrorMessage: err.Error()})
		return
	}
	if err := ValidateChoices(req.FlowerType, req.SubjectType); err != nil {
		writeTransformResponse(w, http.StatusBadRequest, TransformResponse{ErrorMessage: err.Error()})
		return
	}

	log.Printf("🎨 [Tet] Processing transform request: images=%d, framing=%s", len(req.Images), opts.Framing)

	image, err := h.service.TransformDataURIs(r.Context(), req.Images, req.FlowerType, req.SubjectType, opts)
	switch {
	case errors.Is(err, ErrNoImages), errors.Is(err, utils.ErrInvalidDataURI), errors.Is(err, utils.ErrEmptyImage):
		writeTransformResponse(w, http.StatusBadRequest, TransformResponse{ErrorMessage: err.Error()})
		return
	case err != nil:
		log.Printf("❌ [Tet] Transform failed: %v", err)
		writeTransformResponse(w, http.StatusInternalServerError, TransformResponse{ErrorMessage: MsgTransformFailed})
		return
	case image == "":
		writeTransformResponse(w, http.StatusOK, TransformResponse{ErrorMessage: MsgEmptyResult})
		return
	}

	log.Printf("✅ [Tet] Response sent: %d chars", len(image))
	writeTransformResponse(w, http.StatusOK, TransformResponse{Success: true, Image: image})
}

func writeTransformResponse(w http.ResponseWriter, status int, resp TransformResponse) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
