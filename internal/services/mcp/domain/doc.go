// Package domain maps MCP tools and resources onto the scene API.
//
// Handlers call the scene service through SceneAPI and return structured
// results that MCP clients can render.
package domain
