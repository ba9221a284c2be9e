package xtracectx

import (
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestW3C_Extract(t *testing.T) {
	e := W3C{}

	t.Run("valid traceparent", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
		})
		if !ok {
			t.Fatal("valid traceparent should parse")
		}
		if got := sc.TraceID().String(); got != "0af7651916cd43dd8448eb211c80319c" {
			t.Errorf("TraceID = %s", got)
		}
		if got := sc.SpanID().String(); got != "b7ad6b7169203331" {
			t.Errorf("SpanID = %s", got)
		}
		if !sc.IsSampled() {
			t.Error("flags 01 should be sampled")
		}
		if !sc.IsRemote() {
			t.Error("extracted context should be remote")
		}
	})

	t.Run("tracestate attached", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
			"tracestate":  "vendor=opaque,other=value",
		})
		if !ok {
			t.Fatal("valid traceparent should parse")
		}
		if sc.TraceState().Get("vendor") != "opaque" {
			t.Error("tracestate should be attached")
		}
	})

	t.Run("invalid tracestate discarded", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
			"tracestate":  "====",
		})
		if !ok {
			t.Fatal("invalid tracestate must not reject the traceparent")
		}
		if sc.TraceState().Len() != 0 {
			t.Error("invalid tracestate should be discarded")
		}
	})

	invalid := map[string]string{
		"version ff":          "ff-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
		"version FF":          "FF-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
		"all-zero trace id":   "00-00000000000000000000000000000000-b7ad6b7169203331-01",
		"all-zero span id":    "00-0af7651916cd43dd8448eb211c80319c-0000000000000000-01",
		"truncated":           "00-0af7651916cd43dd8448eb211c80319c-b7ad6b71692033",
		"v00 with extras":     "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01-extra",
		"non-hex trace id":    "00-0af7651916cd43dd8448eb211c80319g-b7ad6b7169203331-01",
		"bad separators":      "00_0af7651916cd43dd8448eb211c80319c_b7ad6b7169203331_01",
		"empty":               "",
		"non-hex flags":       "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-zz",
		"unknown ver bad sep": "01-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01x",
	}
	for name, tp := range invalid {
		t.Run("rejects "+name, func(t *testing.T) {
			if _, ok := e.Extract(map[string]string{"traceparent": tp}); ok {
				t.Errorf("traceparent %q should be rejected", tp)
			}
		})
	}

	t.Run("unknown version parsed as v00", func(t *testing.T) {
		// W3C 前向兼容：未知版本按 v00 解析前 4 个字段，扩展字段忽略
		sc, ok := e.Extract(map[string]string{
			"traceparent": "01-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01-future",
		})
		if !ok {
			t.Fatal("unknown version with valid extension should parse")
		}
		if !sc.IsSampled() {
			t.Error("flags should carry over")
		}
	})

	t.Run("uppercase ids accepted", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"traceparent": "00-0AF7651916CD43DD8448EB211C80319C-B7AD6B7169203331-01",
		})
		if !ok {
			t.Fatal("uppercase hex should be accepted on the parse side")
		}
		if sc.TraceID().String() != "0af7651916cd43dd8448eb211c80319c" {
			t.Error("trace id should normalize to lowercase")
		}
	})

	t.Run("unsampled flags", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-00",
		})
		if !ok {
			t.Fatal("valid traceparent should parse")
		}
		if sc.TraceFlags() != trace.TraceFlags(0) {
			t.Error("flags 00 should not be sampled")
		}
	})
}
