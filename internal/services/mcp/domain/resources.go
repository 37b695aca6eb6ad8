package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/louisbranch/courtroom.space/internal/platform/errors"
)

const (
	rosterURI         = "roster://characters"
	sceneURIPrefix    = "scene://"
	sceneURITemplate  = "scene://{id}"
	resourceMIMEType  = "application/json"
	resourceIndentTab = "  "
)

// RosterResource defines the roster resource.
func RosterResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "roster",
		Title:       "Character roster",
		Description: "Characters that scenes may reference",
		MIMEType:    resourceMIMEType,
		URI:         rosterURI,
	}
}

// SceneResourceTemplate defines the stored scene resource template.
func SceneResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "scene",
		Title:       "Scene",
		Description: "A stored scene with its document. URI format: scene://{id}",
		MIMEType:    resourceMIMEType,
		URITemplate: sceneURITemplate,
	}
}

// RosterResourceHandler reads the roster.
func RosterResourceHandler(api SceneAPI) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if api == nil {
			return nil, fmt.Errorf("scene api is not configured")
		}
		characters, err := api.ListCharacters(ctx)
		if err != nil {
			return nil, fmt.Errorf("list characters: %w", err)
		}
		payload := CharacterListResult{Characters: make([]CharacterEntry, 0, len(characters))}
		for _, character := range characters {
			payload.Characters = append(payload.Characters, characterEntry(character))
		}
		return jsonResource(rosterURI, payload)
	}
}

// SceneResourceHandler reads one stored scene.
func SceneResourceHandler(api SceneAPI) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if api == nil {
			return nil, fmt.Errorf("scene api is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("scene id is required; use URI format %s", sceneURITemplate)
		}
		uri := req.Params.URI
		sceneID, err := parseSceneIDFromURI(uri)
		if err != nil {
			return nil, err
		}
		resp, err := api.GetScene(ctx, sceneID)
		if err != nil {
			if apperrors.GetCode(err) == apperrors.CodeNotFound {
				return nil, mcp.ResourceNotFoundError(uri)
			}
			return nil, fmt.Errorf("get scene: %w", err)
		}
		payload, err := sceneGetResult(resp)
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, payload)
	}
}

func parseSceneIDFromURI(uri string) (string, error) {
	sceneID, ok := strings.CutPrefix(strings.TrimSpace(uri), sceneURIPrefix)
	sceneID = strings.TrimSpace(sceneID)
	if !ok || sceneID == "" || strings.Contains(sceneID, "/") {
		return "", fmt.Errorf("invalid scene URI %q: expected %s", uri, sceneURITemplate)
	}
	return sceneID, nil
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", resourceIndentTab)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: resourceMIMEType,
				Text:     string(data),
			},
		},
	}, nil
}
