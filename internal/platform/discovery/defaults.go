// Package discovery centralizes internal service-discovery conventions.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceScene is the scene HTTP API identity.
	ServiceScene = "scene"
	// ServiceMCP is the MCP HTTP service identity.
	ServiceMCP = "mcp"
	// ServiceJaeger is the jaeger HTTP service identity.
	ServiceJaeger = "jaeger"
)

var httpPorts = map[string]int{
	ServiceScene:  8090,
	ServiceMCP:    8091,
	ServiceJaeger: 16686,
}

// DefaultHTTPPort returns the conventional HTTP port for a service, or 0.
func DefaultHTTPPort(service string) int {
	return httpPorts[strings.TrimSpace(service)]
}

// DefaultHTTPAddr returns the canonical in-network HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	service = strings.TrimSpace(service)
	port, ok := httpPorts[service]
	if !ok || port <= 0 {
		return ""
	}
	return service + ":" + strconv.Itoa(port)
}

// OrDefaultHTTPAddr returns value when set, otherwise the service convention.
func OrDefaultHTTPAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultHTTPAddr(service)
}

// LocalHTTPAddr returns localhost with the service's conventional port.
func LocalHTTPAddr(service string) string {
	port := DefaultHTTPPort(service)
	if port <= 0 {
		return ""
	}
	return "localhost:" + strconv.Itoa(port)
}
