// Package client calls the scene HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	apperrors "github.com/louisbranch/courtroom.space/internal/platform/errors"
	"github.com/louisbranch/courtroom.space/internal/platform/httpx"
	sceneapi "github.com/louisbranch/courtroom.space/internal/services/scene/api/http/scene"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
)

// DefaultTimeout bounds one API round trip.
const DefaultTimeout = 10 * time.Second

// Client is a scene API client.
type Client struct {
	baseURL string
	http    *http.Client
	grant   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithWriterGrant attaches a writer grant to mutating requests.
func WithWriterGrant(grant string) Option {
	return func(c *Client) {
		c.grant = strings.TrimSpace(grant)
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("scene api url is required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse scene api url: %w", err)
	}
	c := &Client{baseURL: baseURL, http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListCharacters returns the server roster.
func (c *Client) ListCharacters(ctx context.Context) ([]attorney.Character, error) {
	var out struct {
		Characters []attorney.Character `json:"characters"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/characters", nil, &out); err != nil {
		return nil, err
	}
	return out.Characters, nil
}

// GetCharacter returns one roster character.
func (c *Client) GetCharacter(ctx context.Context, characterID int) (attorney.Character, error) {
	var out attorney.Character
	err := c.do(ctx, http.MethodGet, "/v1/characters/"+strconv.Itoa(characterID), nil, &out)
	return out, err
}

// ListRequest selects one page of scenes.
type ListRequest struct {
	PageSize  int
	PageToken string
	Filter    string
}

// ListScenes returns one page of scene summaries.
func (c *Client) ListScenes(ctx context.Context, req ListRequest) (sceneapi.ListScenesResponse, error) {
	query := url.Values{}
	if req.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(req.PageSize))
	}
	if req.PageToken != "" {
		query.Set("page_token", req.PageToken)
	}
	if req.Filter != "" {
		query.Set("filter", req.Filter)
	}
	path := "/v1/scenes"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out sceneapi.ListScenesResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// GetScene returns a stored scene with its document.
func (c *Client) GetScene(ctx context.Context, sceneID string) (sceneapi.SceneResponse, error) {
	var out sceneapi.SceneResponse
	err := c.do(ctx, http.MethodGet, "/v1/scenes/"+url.PathEscape(sceneID), nil, &out)
	return out, err
}

// CreateScene stores a new scene. document is any raw scene document the
// server accepts.
func (c *Client) CreateScene(ctx context.Context, name string, document []byte) (sceneapi.SceneResponse, error) {
	body, err := sceneRequest(name, document)
	if err != nil {
		return sceneapi.SceneResponse{}, err
	}
	var out sceneapi.SceneResponse
	err = c.do(ctx, http.MethodPost, "/v1/scenes", body, &out)
	return out, err
}

// UpdateScene replaces a stored scene.
func (c *Client) UpdateScene(ctx context.Context, sceneID, name string, document []byte) (sceneapi.SceneResponse, error) {
	body, err := sceneRequest(name, document)
	if err != nil {
		return sceneapi.SceneResponse{}, err
	}
	var out sceneapi.SceneResponse
	err = c.do(ctx, http.MethodPut, "/v1/scenes/"+url.PathEscape(sceneID), body, &out)
	return out, err
}

// DeleteScene removes a stored scene.
func (c *Client) DeleteScene(ctx context.Context, sceneID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/scenes/"+url.PathEscape(sceneID), nil, nil)
}

// ValidateScene runs server-side validation without storing.
func (c *Client) ValidateScene(ctx context.Context, document []byte) (sceneapi.ValidateResponse, error) {
	var out sceneapi.ValidateResponse
	err := c.do(ctx, http.MethodPost, "/v1/scenes:validate", document, &out)
	return out, err
}

func sceneRequest(name string, document []byte) ([]byte, error) {
	if !json.Valid(document) {
		return nil, fmt.Errorf("scene document is not valid json")
	}
	body, err := json.Marshal(struct {
		Name  string          `json:"name"`
		Scene json.RawMessage `json:"scene"`
	}{Name: name, Scene: document})
	if err != nil {
		return nil, fmt.Errorf("marshal scene request: %w", err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	if c == nil {
		return fmt.Errorf("scene client is not configured")
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.grant != "" && method != http.MethodGet {
		req.Header.Set("Authorization", "Bearer "+c.grant)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// APIError is an error response returned by the scene API.
type APIError struct {
	Status  int
	Payload httpx.ErrorPayload
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scene api %d %s: %s", e.Status, e.Payload.Code, e.Payload.Message)
}

// Unwrap exposes the payload as a coded platform error.
func (e *APIError) Unwrap() error {
	return apperrors.New(apperrors.Code(e.Payload.Code), e.Payload.Message)
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error httpx.ErrorPayload `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Code == "" {
		body.Error = httpx.ErrorPayload{
			Code:    string(apperrors.CodeUnknown),
			Message: strings.TrimSpace(string(data)),
		}
	}
	return &APIError{Status: resp.StatusCode, Payload: body.Error}
}
