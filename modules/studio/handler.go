package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"tet-photo-server/modules/common/utils"
	"tet-photo-server/modules/tet"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 모든 origin 허용 (CORS * 와 동일)
		return true
	},
}

// HandlerConfig - 업로드 / 다운로드 제한값
type HandlerConfig struct {
	MaxUploadImages   int
	MaxUploadBytes    int64
	MaxImageDimension int
	WebPQuality       float32
}

type Handler struct {
	service *Service
	hub     *Hub
	cfg     HandlerConfig
	now     func() time.Time
}

func NewHandler(service *Service, hub *Hub, cfg HandlerConfig) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SessionResponse - 스튜디오 API 공통 응답
type SessionResponse struct {
	Success      bool     `json:"success"`
	Session      *Session `json:"session,omitempty"`
	Item         *Item    `json:"item,omitempty"`
	Items        []*Item  `json:"items,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// RegisterRoutes - /api/studio, /ws 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/studio/sessions").Subrouter()
	api.HandleFunc("", h.HandleCreateSession).Methods("POST", "OPTIONS")
	api.HandleFunc("/{id}", h.HandleGetSession).Methods("GET", "OPTIONS")
	api.HandleFunc("/{id}", h.HandleDeleteSession).Methods("DELETE")
	api.HandleFunc("/{id}/images", h.HandleUpload).Methods("POST", "OPTIONS")
	api.HandleFunc("/{id}/settings", h.HandleUpdateSettings).Methods("PUT", "OPTIONS")
	api.HandleFunc("/{id}/transform", h.HandleTransformAll).Methods("POST", "OPTIONS")
	api.HandleFunc("/{id}/reset", h.HandleReset).Methods("POST", "OPTIONS")
	api.HandleFunc("/{id}/items/{itemId}", h.HandleRemoveItem).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/{id}/items/{itemId}/transform", h.HandleTransformItem).Methods("POST", "OPTIONS")
	api.HandleFunc("/{id}/items/{itemId}/download", h.HandleDownloadItem).Methods("GET", "OPTIONS")
	api.HandleFunc("/{id}/merged/download", h.HandleDownloadMerged).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", h.HandleWebSocket)
}

// statusFor - sentinel 에러 → HTTP 상태 코드
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrItemNotFound), errors.Is(err, ErrNoResult):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManyImages), errors.Is(err, ErrNoImages), errors.Is(err, ErrImageTooLarge),
		errors.Is(err, utils.ErrInvalidDataURI), errors.Is(err, utils.ErrUnsupportedMIME), errors.Is(err, utils.ErrEmptyImage),
		errors.Is(err, tet.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, resp SessionResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ [Studio] Internal error: %v", err)
		writeJSON(w, status, SessionResponse{ErrorMessage: "Internal server error"})
		return
	}
	writeJSON(w, status, SessionResponse{ErrorMessage: err.Error()})
}

// HandleCreateSession - POST /api/studio/sessions
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CreateSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Success: true, Session: session})
}

// HandleGetSession - GET /api/studio/sessions/{id}
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, Session: session})
}

// HandleDeleteSession - DELETE /api/studio/sessions/{id}
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

// HandleUpload - POST /api/studio/sessions/{id}/images (multipart, field "images")
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	maxBody := int64(h.cfg.MaxUploadImages)*h.cfg.MaxUploadBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Printf("❌ [Studio] Invalid multipart upload: %v", err)
		writeJSON(w, http.StatusBadRequest, SessionResponse{ErrorMessage: "Invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, ErrNoImages)
		return
	}
	if len(files) > h.cfg.MaxUploadImages {
		writeError(w, fmt.Errorf("%w: at most %d images", ErrTooManyImages, h.cfg.MaxUploadImages))
		return
	}

	images := make([]utils.EncodedImage, 0, len(files))
	for _, header := range files {
		if header.Size > h.cfg.MaxUploadBytes {
			writeError(w, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrImageTooLarge, header.Filename, header.Size, h.cfg.MaxUploadBytes))
			return
		}

		file, err := header.Open()
		if err != nil {
			writeError(w, fmt.Errorf("failed to open %s: %w", header.Filename, err))
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, fmt.Errorf("failed to read %s: %w", header.Filename, err))
			return
		}

		img, err := utils.DetectImage(data)
		if err != nil {
			writeError(w, fmt.Errorf("%s: %w", header.Filename, err))
			return
		}
		img, err = utils.Downscale(img, h.cfg.MaxImageDimension)
		if err != nil {
			writeError(w, fmt.Errorf("%s: %w: %v", header.Filename, utils.ErrUnsupportedMIME, err))
			return
		}
		images = append(images, img)
	}

	items, err := h.service.Upload(r.Context(), id, images)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Success: true, Items: items})
}

// HandleUpdateSettings - PUT /api/studio/sessions/{id}/settings (부분 업데이트)
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, SessionResponse{ErrorMessage: "Invalid request format"})
		return
	}

	session, err := h.service.UpdateSettings(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, Session: session})
}

// HandleTransformItem - POST /api/studio/sessions/{id}/items/{itemId}/transform
func (h *Handler) HandleTransformItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item, err := h.service.TransformItem(r.Context(), vars["id"], vars["itemId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: item.Error == nil, Item: item, ErrorMessage: derefString(item.Error)})
}

// HandleTransformAll - POST /api/studio/sessions/{id}/transform
func (h *Handler) HandleTransformAll(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.TransformAll(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, Session: session})
}

// HandleReset - POST /api/studio/sessions/{id}/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Reset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, Session: session})
}

// HandleRemoveItem - DELETE /api/studio/sessions/{id}/items/{itemId}
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.RemoveItem(r.Context(), vars["id"], vars["itemId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

// HandleDownloadItem - GET /api/studio/sessions/{id}/items/{itemId}/download[?format=webp]
func (h *Handler) HandleDownloadItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	session, err := h.service.GetSession(r.Context(), vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	item := session.findItem(vars["itemId"])
	if item == nil {
		writeError(w, ErrItemNotFound)
		return
	}
	h.serveImage(w, r, item.Transformed)
}

// HandleDownloadMerged - GET /api/studio/sessions/{id}/merged/download[?format=webp]
func (h *Handler) HandleDownloadMerged(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	h.serveImage(w, r, session.MergedResult)
}

// serveImage - data URI 를 첨부파일 anh-tet-<unix millis>.<ext> 로 응답
func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request, dataURI *string) {
	if dataURI == nil {
		writeError(w, ErrNoResult)
		return
	}
	img, err := utils.ParseDataURI(*dataURI)
	if err != nil {
		writeError(w, fmt.Errorf("stored result is corrupt: %v", err))
		return
	}

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "png":
	case "webp":
		webpData, err := utils.ConvertToWebP(img, h.cfg.WebPQuality)
		if err != nil {
			writeError(w, fmt.Errorf("webp conversion failed: %w", err))
			return
		}
		img = utils.EncodedImage{MIMEType: "image/webp", Data: webpData}
	default:
		writeJSON(w, http.StatusBadRequest, SessionResponse{ErrorMessage: fmt.Sprintf("unsupported format: %s", format)})
		return
	}

	filename := fmt.Sprintf("anh-tet-%d.%s", h.now().UnixMilli(), utils.ExtensionFromMIME(img.MIMEType))
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// HandleWebSocket - GET /ws?session=<id>
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "Missing session parameter", http.StatusBadRequest)
		return
	}
	if _, err := h.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Studio] WebSocket upgrade failed: %v", err)
		return
	}

	log.Printf("🔍 [Studio] New WebSocket connection - Session: %s", sessionID)
	h.hub.Serve(conn, sessionID)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
