// Package tracing provides AWS X-Ray distributed tracing integration.
package tracing

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestInitializeDisabled tests that disabled tracing is a no-op
func TestInitializeDisabled(t *testing.T) {
	err := Initialize(Config{Enabled: false}, quietLogger())
	if err != nil {
		t.Fatalf("expected no error for disabled tracing, got %v", err)
	}
}

// TestInitializeEnabled tests daemon and sampling configuration
func TestInitializeEnabled(t *testing.T) {
	cfg := Config{
		ServiceName:    "courtside",
		ServiceVersion: "test",
		Enabled:        true,
		SamplingRate:   0.05,
		DaemonAddr:     "127.0.0.1:2000",
	}

	err := Initialize(cfg, quietLogger())
	if err != nil {
		t.Fatalf("expected no error initializing tracing, got %v", err)
	}
}

// TestSegmentRoundTrip tests segment creation and enrichment
func TestSegmentRoundTrip(t *testing.T) {
	ctx, seg := StartSegment(context.Background(), "nightly-update")
	if seg == nil {
		t.Fatal("expected non-nil segment")
	}

	AddAnnotation(ctx, "game_date", "2024-01-15")
	AddMetadata(ctx, "games_processed", 5)
	AddError(ctx, errors.New("feed unavailable"))

	_, sub := StartSubsegment(ctx, "archive-write")
	if sub == nil {
		t.Fatal("expected non-nil subsegment")
	}
	sub.Close(nil)

	seg.Close(nil)
}

// TestHelpersTolerateBareContext tests that enrichment without a segment is safe
func TestHelpersTolerateBareContext(t *testing.T) {
	ctx := context.Background()

	AddAnnotation(ctx, "game_date", "2024-01-15")
	AddMetadata(ctx, "games_processed", 0)
	AddError(ctx, errors.New("no segment"))
}
