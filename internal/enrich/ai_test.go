package enrich

import (
	"context"
	"testing"
	"time"
)

func TestRequestContext_BoundsCall(t *testing.T) {
	g := &GeminiExtractor{timeout: 250 * time.Millisecond}

	ctx, cancel := g.requestContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("generation context carries no deadline")
	}
	if until := time.Until(deadline); until > 250*time.Millisecond {
		t.Errorf("deadline %v away, want at most the configured 250ms", until)
	}
}

func TestRequestContext_DefaultWhenUnset(t *testing.T) {
	g := &GeminiExtractor{}

	ctx, cancel := g.requestContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("generation context carries no deadline")
	}
	if until := time.Until(deadline); until > defaultGenerationTimeout {
		t.Errorf("deadline %v away, want at most the %v default", until, defaultGenerationTimeout)
	}
}
