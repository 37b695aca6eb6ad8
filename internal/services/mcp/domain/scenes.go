package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	sceneapi "github.com/louisbranch/courtroom.space/internal/services/scene/api/http/scene"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	sceneclient "github.com/louisbranch/courtroom.space/internal/services/scene/client"
)

// SceneAPI is the subset of the scene client used by MCP handlers.
type SceneAPI interface {
	ListCharacters(ctx context.Context) ([]attorney.Character, error)
	GetCharacter(ctx context.Context, characterID int) (attorney.Character, error)
	ListScenes(ctx context.Context, req sceneclient.ListRequest) (sceneapi.ListScenesResponse, error)
	GetScene(ctx context.Context, sceneID string) (sceneapi.SceneResponse, error)
	ValidateScene(ctx context.Context, document []byte) (sceneapi.ValidateResponse, error)
}

var _ SceneAPI = (*sceneclient.Client)(nil)

// CharacterEntry is one roster character.
type CharacterEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Pose int    `json:"pose"`
}

// CharacterListInput is the (empty) input of character_list.
type CharacterListInput struct{}

// CharacterListResult lists the roster in file order.
type CharacterListResult struct {
	Characters []CharacterEntry `json:"characters"`
}

// CharacterGetInput selects one character.
type CharacterGetInput struct {
	ID int `json:"id" jsonschema:"character id from the roster"`
}

// SceneListInput selects one page of scenes.
type SceneListInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum scenes to return (default 25, max 100)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter over name, frame_count, group_count, created_at, updated_at"`
}

// SceneSummary is the listing view of a stored scene.
type SceneSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FrameCount int    `json:"frame_count"`
	GroupCount int    `json:"group_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// SceneListResult is one page of scenes.
type SceneListResult struct {
	Scenes        []SceneSummary `json:"scenes"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// SceneGetInput selects one stored scene.
type SceneGetInput struct {
	SceneID string `json:"scene_id" jsonschema:"scene identifier"`
}

// SceneGetResult is a stored scene with its document.
type SceneGetResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FrameCount int    `json:"frame_count"`
	GroupCount int    `json:"group_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	Scene      any    `json:"scene"`
}

// SceneValidateInput carries a scene document to check.
type SceneValidateInput struct {
	Scene any `json:"scene" jsonschema:"scene document to validate"`
}

// SceneIssue is one validation problem.
type SceneIssue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SceneValidateResult reports the outcome of validation.
type SceneValidateResult struct {
	Valid  bool         `json:"valid"`
	Issues []SceneIssue `json:"issues"`
}

// CharacterListTool defines the character_list tool.
func CharacterListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_list",
		Description: "Lists the characters of the scene roster",
	}
}

// CharacterGetTool defines the character_get tool.
func CharacterGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_get",
		Description: "Returns one roster character by id",
	}
}

// SceneListTool defines the scene_list tool.
func SceneListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_list",
		Description: "Lists stored scenes with optional filter and pagination",
	}
}

// SceneGetTool defines the scene_get tool.
func SceneGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_get",
		Description: "Returns a stored scene and its document",
	}
}

// SceneValidateTool defines the scene_validate tool.
func SceneValidateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_validate",
		Description: "Checks a scene document against the roster without storing it",
	}
}

// CharacterListHandler lists the roster.
func CharacterListHandler(api SceneAPI) mcp.ToolHandlerFor[CharacterListInput, CharacterListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CharacterListInput) (*mcp.CallToolResult, CharacterListResult, error) {
		if api == nil {
			return nil, CharacterListResult{}, fmt.Errorf("scene api is not configured")
		}
		characters, err := api.ListCharacters(ctx)
		if err != nil {
			return nil, CharacterListResult{}, fmt.Errorf("character list failed: %w", err)
		}
		result := CharacterListResult{Characters: make([]CharacterEntry, 0, len(characters))}
		for _, character := range characters {
			result.Characters = append(result.Characters, characterEntry(character))
		}
		return nil, result, nil
	}
}

// CharacterGetHandler returns one character.
func CharacterGetHandler(api SceneAPI) mcp.ToolHandlerFor[CharacterGetInput, CharacterEntry] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterGetInput) (*mcp.CallToolResult, CharacterEntry, error) {
		if api == nil {
			return nil, CharacterEntry{}, fmt.Errorf("scene api is not configured")
		}
		if input.ID <= 0 {
			return nil, CharacterEntry{}, fmt.Errorf("id must be a positive character id")
		}
		character, err := api.GetCharacter(ctx, input.ID)
		if err != nil {
			return nil, CharacterEntry{}, fmt.Errorf("character get failed: %w", err)
		}
		return nil, characterEntry(character), nil
	}
}

// SceneListHandler lists stored scenes.
func SceneListHandler(api SceneAPI) mcp.ToolHandlerFor[SceneListInput, SceneListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SceneListInput) (*mcp.CallToolResult, SceneListResult, error) {
		if api == nil {
			return nil, SceneListResult{}, fmt.Errorf("scene api is not configured")
		}
		if input.PageSize < 0 {
			return nil, SceneListResult{}, fmt.Errorf("page_size must not be negative")
		}
		page, err := api.ListScenes(ctx, sceneclient.ListRequest{
			PageSize:  input.PageSize,
			PageToken: strings.TrimSpace(input.PageToken),
			Filter:    strings.TrimSpace(input.Filter),
		})
		if err != nil {
			return nil, SceneListResult{}, fmt.Errorf("scene list failed: %w", err)
		}
		result := SceneListResult{Scenes: make([]SceneSummary, 0, len(page.Scenes)), NextPageToken: page.NextPageToken}
		for _, scene := range page.Scenes {
			result.Scenes = append(result.Scenes, sceneSummary(scene))
		}
		return nil, result, nil
	}
}

// SceneGetHandler returns one stored scene.
func SceneGetHandler(api SceneAPI) mcp.ToolHandlerFor[SceneGetInput, SceneGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SceneGetInput) (*mcp.CallToolResult, SceneGetResult, error) {
		if api == nil {
			return nil, SceneGetResult{}, fmt.Errorf("scene api is not configured")
		}
		sceneID := strings.TrimSpace(input.SceneID)
		if sceneID == "" {
			return nil, SceneGetResult{}, fmt.Errorf("scene_id is required")
		}
		resp, err := api.GetScene(ctx, sceneID)
		if err != nil {
			return nil, SceneGetResult{}, fmt.Errorf("scene get failed: %w", err)
		}
		result, err := sceneGetResult(resp)
		if err != nil {
			return nil, SceneGetResult{}, err
		}
		return nil, result, nil
	}
}

// SceneValidateHandler validates a scene document.
func SceneValidateHandler(api SceneAPI) mcp.ToolHandlerFor[SceneValidateInput, SceneValidateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SceneValidateInput) (*mcp.CallToolResult, SceneValidateResult, error) {
		if api == nil {
			return nil, SceneValidateResult{}, fmt.Errorf("scene api is not configured")
		}
		if input.Scene == nil {
			return nil, SceneValidateResult{}, fmt.Errorf("scene is required")
		}
		document, err := json.Marshal(input.Scene)
		if err != nil {
			return nil, SceneValidateResult{}, fmt.Errorf("encode scene: %w", err)
		}
		resp, err := api.ValidateScene(ctx, document)
		if err != nil {
			return nil, SceneValidateResult{}, fmt.Errorf("scene validate failed: %w", err)
		}
		result := SceneValidateResult{Valid: resp.Valid, Issues: make([]SceneIssue, 0, len(resp.Issues))}
		for _, issue := range resp.Issues {
			result.Issues = append(result.Issues, SceneIssue{Path: issue.Path, Code: string(issue.Code), Message: issue.Message})
		}
		return nil, result, nil
	}
}

func characterEntry(character attorney.Character) CharacterEntry {
	return CharacterEntry{ID: character.ID, Name: character.Name, Pose: character.Pose}
}

func sceneSummary(scene sceneapi.SceneSummary) SceneSummary {
	return SceneSummary{
		ID:         scene.ID,
		Name:       scene.Name,
		FrameCount: scene.FrameCount,
		GroupCount: scene.GroupCount,
		CreatedAt:  formatTimestamp(scene.CreatedAt),
		UpdatedAt:  formatTimestamp(scene.UpdatedAt),
	}
}

func sceneGetResult(resp sceneapi.SceneResponse) (SceneGetResult, error) {
	var document any
	if len(resp.Scene) > 0 {
		if err := json.Unmarshal(resp.Scene, &document); err != nil {
			return SceneGetResult{}, fmt.Errorf("decode scene document: %w", err)
		}
	}
	summary := sceneSummary(resp.SceneSummary)
	return SceneGetResult{
		ID:         summary.ID,
		Name:       summary.Name,
		FrameCount: summary.FrameCount,
		GroupCount: summary.GroupCount,
		CreatedAt:  summary.CreatedAt,
		UpdatedAt:  summary.UpdatedAt,
		Scene:      document,
	}, nil
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
