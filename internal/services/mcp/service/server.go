package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/courtroom.space/internal/platform/branding"
	"github.com/louisbranch/courtroom.space/internal/services/mcp/domain"
)

// serverName identifies this MCP server to clients.
const serverName = branding.AppName + " MCP"

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

const (
	mcpCharacterToolsModuleName = "character-tools"
	mcpSceneToolsModuleName     = "scene-tools"
	mcpRosterResourceModuleName = "roster-resources"
	mcpSceneResourceModuleName  = "scene-resources"
)

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(*mcp.Server) error
}

func newMCPRegistrationModules(api domain.SceneAPI) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpCharacterToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(server *mcp.Server) error {
				mcp.AddTool(server, domain.CharacterListTool(), domain.CharacterListHandler(api))
				mcp.AddTool(server, domain.CharacterGetTool(), domain.CharacterGetHandler(api))
				return nil
			},
		},
		{
			name: mcpSceneToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(server *mcp.Server) error {
				mcp.AddTool(server, domain.SceneListTool(), domain.SceneListHandler(api))
				mcp.AddTool(server, domain.SceneGetTool(), domain.SceneGetHandler(api))
				mcp.AddTool(server, domain.SceneValidateTool(), domain.SceneValidateHandler(api))
				return nil
			},
		},
		{
			name: mcpRosterResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(server *mcp.Server) error {
				server.AddResource(domain.RosterResource(), domain.RosterResourceHandler(api))
				return nil
			},
		},
		{
			name: mcpSceneResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(server *mcp.Server) error {
				server.AddResourceTemplate(domain.SceneResourceTemplate(), domain.SceneResourceHandler(api))
				return nil
			},
		},
	}
}

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	// SceneAddr is the scene HTTP API base address.
	SceneAddr string
	Transport TransportKind
	// HTTPAddr defaults to localhost:8091 for the HTTP transport.
	HTTPAddr string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New registers every tool and resource backed by api.
func New(api domain.SceneAPI) (*Server, error) {
	if api == nil {
		return nil, fmt.Errorf("scene api is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler: completionHandler,
	})
	for _, module := range newMCPRegistrationModules(api) {
		if err := module.register(mcpServer); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return &Server{mcpServer: mcpServer}, nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	if s == nil {
		return nil
	}
	return s.mcpServer
}
