package xtail

import (
	"context"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

func TestHeadSampler(t *testing.T) {
	t.Run("always samples", func(t *testing.T) {
		head, err := NewHeadSampler(xsampling.Always())
		if err != nil {
			t.Fatal(err)
		}

		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(head),
			sdktrace.WithSpanProcessor(recorder))
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		span.End()

		if got := len(recorder.Ended()); got != 1 {
			t.Errorf("ended = %d, want 1", got)
		}
	})

	t.Run("never drops before recording", func(t *testing.T) {
		head, err := NewHeadSampler(xsampling.Never())
		if err != nil {
			t.Fatal(err)
		}

		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(head),
			sdktrace.WithSpanProcessor(recorder))
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		span.End()

		// 头部丢弃的 Span 根本不进处理器
		if got := len(recorder.Started()); got != 0 {
			t.Errorf("started = %d, want 0", got)
		}
	})
}

func TestHeadSampler_Validation(t *testing.T) {
	if _, err := NewHeadSampler(nil); !errors.Is(err, ErrNilSampler) {
		t.Errorf("nil sampler should return ErrNilSampler, got %v", err)
	}

	tail, err := xsampling.NewAdaptiveSampler(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewHeadSampler(tail); !errors.Is(err, ErrTailSampler) {
		t.Errorf("tail sampler should return ErrTailSampler, got %v", err)
	}
}

func TestHeadSampler_Description(t *testing.T) {
	head, err := NewHeadSampler(xsampling.Always())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(head.Description(), "HeadSampler{") {
		t.Errorf("Description = %q", head.Description())
	}
}
