package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/courtroom.space/internal/platform/otel"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("COURTROOM_SPACE_OTEL_ENDPOINT", "")
	t.Setenv("COURTROOM_SPACE_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "scene")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("COURTROOM_SPACE_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("COURTROOM_SPACE_OTEL_ENABLED", "FALSE")

	shutdown, err := otel.Setup(context.Background(), "scene")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupCreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address: nothing is exported before shutdown.
	t.Setenv("COURTROOM_SPACE_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("COURTROOM_SPACE_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "mcp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestTracerStartsSpans(t *testing.T) {
	_, span := otel.Tracer("scene/app").Start(context.Background(), "probe")
	defer span.End()
	if span == nil {
		t.Fatal("expected span")
	}
}
