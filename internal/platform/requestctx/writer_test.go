package requestctx

import (
	"context"
	"testing"
)

func TestWriterRoundTrip(t *testing.T) {
	ctx := WithWriter(context.Background(), "editor")
	if got := WriterFromContext(ctx); got != "editor" {
		t.Fatalf("WriterFromContext = %q, want editor", got)
	}
}

func TestWriterFromContextMissing(t *testing.T) {
	if got := WriterFromContext(context.Background()); got != "" {
		t.Fatalf("WriterFromContext = %q, want empty", got)
	}
	//lint:ignore SA1012 nil context is part of the contract.
	if got := WriterFromContext(nil); got != "" {
		t.Fatalf("WriterFromContext(nil) = %q, want empty", got)
	}
}

func TestWithWriterNilContext(t *testing.T) {
	//lint:ignore SA1012 nil context is part of the contract.
	ctx := WithWriter(nil, "editor")
	if got := WriterFromContext(ctx); got != "editor" {
		t.Fatalf("WriterFromContext = %q, want editor", got)
	}
}
