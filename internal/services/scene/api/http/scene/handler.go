// Package scene serves scene and roster operations over a JSON HTTP API.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "github.com/louisbranch/courtroom.space/internal/platform/errors"
	"github.com/louisbranch/courtroom.space/internal/platform/httpx"
	"github.com/louisbranch/courtroom.space/internal/platform/pagination"
	"github.com/louisbranch/courtroom.space/internal/platform/requestctx"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/authz"
	"github.com/louisbranch/courtroom.space/internal/services/scene/service"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
)

// MaxBodyBytes caps scene request bodies.
const MaxBodyBytes = 4 << 20

// Handler routes scene API requests.
type Handler struct {
	svc    *service.Service
	grants authz.WriterGrantConfig
	mux    *http.ServeMux
}

// NewHandler builds the API routes. Writes require a writer grant when grants
// is enabled.
func NewHandler(svc *service.Service, grants authz.WriterGrantConfig) *Handler {
	h := &Handler{svc: svc, grants: grants, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /v1/characters", h.handleListCharacters)
	h.mux.HandleFunc("GET /v1/characters/{id}", h.handleGetCharacter)
	h.mux.HandleFunc("GET /v1/scenes", h.handleListScenes)
	h.mux.Handle("POST /v1/scenes", h.requireWriter(http.HandlerFunc(h.handleCreateScene)))
	h.mux.HandleFunc("POST /v1/scenes:validate", h.handleValidateScene)
	h.mux.HandleFunc("GET /v1/scenes/{id}", h.handleGetScene)
	h.mux.Handle("PUT /v1/scenes/{id}", h.requireWriter(http.HandlerFunc(h.handleUpdateScene)))
	h.mux.Handle("DELETE /v1/scenes/{id}", h.requireWriter(http.HandlerFunc(h.handleDeleteScene)))
	h.mux.HandleFunc("GET /v1/scenes/{id}/transcript", h.handleTranscript)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Routes wraps the handler with the standard middleware stack.
func (h *Handler) Routes() http.Handler {
	return httpx.Chain(h,
		httpx.RequestID("scene"),
		httpx.RecoverPanic(),
		httpx.Trace("scene/http"),
		httpx.AccessLog(),
	)
}

// SceneSummary is the listing view of a stored scene.
type SceneSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FrameCount int       `json:"frame_count"`
	GroupCount int       `json:"group_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SceneResponse is a stored scene with its document.
type SceneResponse struct {
	SceneSummary
	Scene json.RawMessage `json:"scene"`
}

// ListScenesResponse is one page of scene summaries.
type ListScenesResponse struct {
	Scenes        []SceneSummary `json:"scenes"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// ValidateResponse reports the outcome of a dry-run validation.
type ValidateResponse struct {
	Valid  bool             `json:"valid"`
	Issues []attorney.Issue `json:"issues"`
}

func summaryOf(record storage.SceneRecord) SceneSummary {
	return SceneSummary{
		ID:         record.ID,
		Name:       record.Name,
		FrameCount: record.FrameCount,
		GroupCount: record.GroupCount,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func responseOf(record storage.SceneRecord) (SceneResponse, error) {
	payload, err := attorney.EncodeScene(record.Scene)
	if err != nil {
		return SceneResponse{}, err
	}
	return SceneResponse{SceneSummary: summaryOf(record), Scene: payload}, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListCharacters(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"characters": h.svc.ListCharacters()})
}

func (h *Handler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	characterID, err := service.ParseCharacterID(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	character, err := h.svc.GetCharacter(characterID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, character)
}

func (h *Handler) handleListScenes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageSize, err := pagination.ParsePageSize(query.Get("page_size"))
	if err != nil {
		httpx.WriteError(w, r, apperrors.WrapWithMetadata(
			apperrors.CodePageSizeInvalid,
			err.Error(),
			map[string]string{"Max": fmt.Sprint(service.MaxPageSize)},
			err,
		))
		return
	}
	page, err := h.svc.ListScenes(r.Context(), service.ListRequest{
		PageSize:  pageSize,
		PageToken: query.Get("page_token"),
		Filter:    query.Get("filter"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	resp := ListScenesResponse{Scenes: make([]SceneSummary, 0, len(page.Scenes)), NextPageToken: page.NextPageToken}
	for _, record := range page.Scenes {
		resp.Scenes = append(resp.Scenes, summaryOf(record))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetScene(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.GetScene(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.writeScene(w, r, http.StatusOK, record)
}

func (h *Handler) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	name, scene, err := h.readSceneRequest(w, r)
	if err != nil {
		h.writeSceneError(w, r, err)
		return
	}
	record, err := h.svc.CreateScene(r.Context(), name, scene)
	if err != nil {
		h.writeSceneError(w, r, err)
		return
	}
	auditWrite(r, "created", record.ID)
	w.Header().Set("Location", "/v1/scenes/"+record.ID)
	h.writeScene(w, r, http.StatusCreated, record)
}

func (h *Handler) handleUpdateScene(w http.ResponseWriter, r *http.Request) {
	name, scene, err := h.readSceneRequest(w, r)
	if err != nil {
		h.writeSceneError(w, r, err)
		return
	}
	record, err := h.svc.UpdateScene(r.Context(), r.PathValue("id"), name, scene)
	if err != nil {
		h.writeSceneError(w, r, err)
		return
	}
	auditWrite(r, "updated", record.ID)
	h.writeScene(w, r, http.StatusOK, record)
}

func (h *Handler) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteScene(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	auditWrite(r, "deleted", r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// auditWrite logs a completed scene write with the writer that made it.
func auditWrite(r *http.Request, action, id string) {
	writer := requestctx.WriterFromContext(r.Context())
	if writer == "" {
		writer = "anonymous"
	}
	log.Printf("scene %s id=%s writer=%s request_id=%s", action, id, writer, r.Header.Get("X-Request-ID"))
}

func (h *Handler) handleValidateScene(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	scene, err := h.svc.DecodeScene(body)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	resp := ValidateResponse{Valid: true, Issues: []attorney.Issue{}}
	if err := h.svc.ValidateScene(scene); err != nil {
		var verr *attorney.ValidationError
		if !errors.As(err, &verr) {
			httpx.WriteError(w, r, err)
			return
		}
		resp.Valid = false
		resp.Issues = verr.Issues
	}
	_ = httpx.WriteJSON(w, http.StatusOK, resp)
}

// readSceneRequest reads {"name": "...", "scene": {...}}. A body without a
// scene key is read as a bare scene document.
func (h *Handler) readSceneRequest(w http.ResponseWriter, r *http.Request) (string, attorney.Scene, error) {
	body, err := readBody(w, r)
	if err != nil {
		return "", attorney.Scene{}, err
	}
	if !gjson.ValidBytes(body) {
		return "", attorney.Scene{}, apperrors.WithMetadata(
			apperrors.CodeSceneMalformed,
			"request body is not valid json",
			map[string]string{"Reason": "invalid JSON"},
		)
	}
	name := gjson.GetBytes(body, "name").String()
	raw := body
	if doc := gjson.GetBytes(body, "scene"); doc.IsObject() {
		raw = []byte(doc.Raw)
	}
	scene, err := h.svc.DecodeScene(raw)
	if err != nil {
		return "", attorney.Scene{}, err
	}
	return name, scene, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeSceneMalformed,
			"read request body",
			map[string]string{"Reason": err.Error()},
			err,
		)
	}
	return body, nil
}

func (h *Handler) writeScene(w http.ResponseWriter, r *http.Request, status int, record storage.SceneRecord) {
	resp, err := responseOf(record)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, status, resp)
}

// writeSceneError attaches validation issues to SCENE_INVALID responses.
func (h *Handler) writeSceneError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *attorney.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteErrorDetails(w, r, err, verr.Issues)
		return
	}
	httpx.WriteError(w, r, err)
}

// requireWriter rejects requests without a valid bearer writer grant.
func (h *Handler) requireWriter(next http.Handler) http.Handler {
	if !h.grants.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grant := bearerToken(r.Header.Get("Authorization"))
		claims, err := authz.ValidateWriterGrant(grant, h.grants)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		log.Printf("writer grant accepted sub=%s jti=%s", claims.Subject, claims.JWTID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithWriter(r.Context(), claims.Subject)))
	})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
