package xtracectx

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestRegistry_Dispatch(t *testing.T) {
	r := Default()

	t.Run("w3c wins first", func(t *testing.T) {
		sc, ok := r.Extract(map[string]string{
			"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
			"b3":          "80f198ee56343ba864fe8b2a57d3eff7-e457b5a2e4d86bd1-1",
		})
		if !ok {
			t.Fatal("should parse")
		}
		if sc.TraceID().String() != "0af7651916cd43dd8448eb211c80319c" {
			t.Error("registry should prefer W3C over B3")
		}
	})

	t.Run("falls through to later formats", func(t *testing.T) {
		sc, ok := r.Extract(map[string]string{
			"x-datadog-trace-id":  "42",
			"x-datadog-parent-id": "43",
		})
		if !ok {
			t.Fatal("datadog headers should be picked up")
		}
		if sc.SpanID().String() != "000000000000002b" {
			t.Errorf("SpanID = %s", sc.SpanID())
		}
	})

	t.Run("no headers", func(t *testing.T) {
		if _, ok := r.Extract(nil); ok {
			t.Error("nil headers should yield no context")
		}
		if _, ok := r.Extract(map[string]string{"unrelated": "x"}); ok {
			t.Error("unrelated headers should yield no context")
		}
	})
}

func TestRegistry_CaseInsensitiveKeys(t *testing.T) {
	r := Default()

	// Kafka/HTTP 等传输层的 header key 大小写不可控
	sc, ok := r.Extract(map[string]string{
		"Traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
	})
	if !ok {
		t.Fatal("capitalized header key should be matched")
	}
	if !sc.IsSampled() {
		t.Error("flags should carry over")
	}

	if _, ok := r.Extract(map[string]string{
		"X-B3-TraceId": "80f198ee56343ba864fe8b2a57d3eff7",
		"X-B3-SpanId":  "e457b5a2e4d86bd1",
	}); !ok {
		t.Error("mixed-case b3 multi keys should be matched")
	}
}

type fakeExtractor struct {
	name string
	sc   trace.SpanContext
	ok   bool
}

func (f fakeExtractor) Name() string { return f.name }
func (f fakeExtractor) Extract(map[string]string) (trace.SpanContext, bool) {
	return f.sc, f.ok
}

func TestRegistry_Register(t *testing.T) {
	r, err := NewRegistry(W3C{})
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	custom := fakeExtractor{name: "custom", ok: true, sc: trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
		Remote:  true,
	})}
	if err := r.Register(custom); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// 未知格式的头落到自定义解析器
	if _, ok := r.Extract(map[string]string{"x-custom": "1"}); !ok {
		t.Error("registered extractor should participate in dispatch")
	}
	if len(r.Extractors()) != 2 {
		t.Errorf("Extractors() len = %d, want 2", len(r.Extractors()))
	}

	if err := r.Register(nil); !errors.Is(err, ErrNilExtractor) {
		t.Errorf("Register(nil) should return ErrNilExtractor, got %v", err)
	}
}

func TestRegistry_Validation(t *testing.T) {
	if _, err := NewRegistry(); !errors.Is(err, ErrNoExtractors) {
		t.Errorf("empty registry should return ErrNoExtractors, got %v", err)
	}
	if _, err := NewRegistry(W3C{}, nil); !errors.Is(err, ErrNilExtractor) {
		t.Errorf("nil extractor should return ErrNilExtractor, got %v", err)
	}
}

func TestExtractorNames(t *testing.T) {
	want := map[Extractor]string{
		W3C{}:      "w3c",
		B3Single{}: "b3",
		B3Multi{}:  "b3multi",
		Datadog{}:  "datadog",
		XRay{}:     "xray",
	}
	for e, name := range want {
		if e.Name() != name {
			t.Errorf("Name() = %s, want %s", e.Name(), name)
		}
	}
}
