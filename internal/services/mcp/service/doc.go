// Package service wires MCP transports to the scene domain handlers.
//
// It runs the MCP server over stdio or streamable HTTP and leaves tool and
// resource meaning to the domain package.
package service
