package xtracectx

import "testing"

func TestB3Single_Extract(t *testing.T) {
	e := B3Single{}

	t.Run("deny value", func(t *testing.T) {
		if _, ok := e.Extract(map[string]string{"b3": "0"}); ok {
			t.Error(`b3 "0" is the deny value and carries no context`)
		}
	})

	t.Run("sampled", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"b3": "80f198ee56343ba864fe8b2a57d3eff7-e457b5a2e4d86bd1-1",
		})
		if !ok {
			t.Fatal("valid b3 single header should parse")
		}
		if sc.TraceID().String() != "80f198ee56343ba864fe8b2a57d3eff7" {
			t.Errorf("TraceID = %s", sc.TraceID())
		}
		if sc.SpanID().String() != "e457b5a2e4d86bd1" {
			t.Errorf("SpanID = %s", sc.SpanID())
		}
		if !sc.IsSampled() {
			t.Error("sampled=1 should set the sampled flag")
		}
		if !sc.IsRemote() {
			t.Error("extracted context should be remote")
		}
	})

	t.Run("not sampled", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"b3": "80f198ee56343ba864fe8b2a57d3eff7-e457b5a2e4d86bd1-0",
		})
		if !ok {
			t.Fatal("valid b3 single header should parse")
		}
		if sc.IsSampled() {
			t.Error("sampled=0 should clear the sampled flag")
		}
	})

	t.Run("debug flag", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"b3": "80f198ee56343ba864fe8b2a57d3eff7-e457b5a2e4d86bd1-d-05e3ac9a4f6e3b90",
		})
		if !ok {
			t.Fatal("b3 with parent span id should parse")
		}
		if !sc.IsSampled() {
			t.Error("d (debug) should be treated as sampled")
		}
	})

	t.Run("short trace id padded", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"b3": "64fe8b2a57d3eff7-e457b5a2e4d86bd1-1",
		})
		if !ok {
			t.Fatal("64-bit trace id should be accepted")
		}
		if sc.TraceID().String() != "000000000000000064fe8b2a57d3eff7" {
			t.Errorf("TraceID = %s, want left-padded", sc.TraceID())
		}
	})

	t.Run("rejects", func(t *testing.T) {
		for name, v := range map[string]string{
			"missing span id":   "80f198ee56343ba864fe8b2a57d3eff7",
			"bad trace id len":  "80f198ee-e457b5a2e4d86bd1-1",
			"all-zero trace id": "00000000000000000000000000000000-e457b5a2e4d86bd1-1",
			"all-zero span id":  "80f198ee56343ba864fe8b2a57d3eff7-0000000000000000-1",
			"empty":             "",
		} {
			if _, ok := e.Extract(map[string]string{"b3": v}); ok {
				t.Errorf("%s: %q should be rejected", name, v)
			}
		}
	})
}

func TestB3Multi_Extract(t *testing.T) {
	e := B3Multi{}

	t.Run("full headers", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"x-b3-traceid": "80f198ee56343ba864fe8b2a57d3eff7",
			"x-b3-spanid":  "e457b5a2e4d86bd1",
			"x-b3-sampled": "1",
		})
		if !ok {
			t.Fatal("valid b3 multi headers should parse")
		}
		if !sc.IsSampled() || !sc.IsRemote() {
			t.Error("context should be sampled and remote")
		}
	})

	t.Run("absent sampled defaults to sampled", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"x-b3-traceid": "80f198ee56343ba864fe8b2a57d3eff7",
			"x-b3-spanid":  "e457b5a2e4d86bd1",
		})
		if !ok {
			t.Fatal("headers without sampled should parse")
		}
		if !sc.IsSampled() {
			t.Error("absent x-b3-sampled should default to sampled")
		}
	})

	t.Run("sampled=0", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"x-b3-traceid": "80f198ee56343ba864fe8b2a57d3eff7",
			"x-b3-spanid":  "e457b5a2e4d86bd1",
			"x-b3-sampled": "0",
		})
		if !ok {
			t.Fatal("should parse")
		}
		if sc.IsSampled() {
			t.Error("x-b3-sampled=0 should clear the sampled flag")
		}
	})

	t.Run("debug flags override", func(t *testing.T) {
		sc, ok := e.Extract(map[string]string{
			"x-b3-traceid": "80f198ee56343ba864fe8b2a57d3eff7",
			"x-b3-spanid":  "e457b5a2e4d86bd1",
			"x-b3-sampled": "0",
			"x-b3-flags":   "1",
		})
		if !ok {
			t.Fatal("should parse")
		}
		if !sc.IsSampled() {
			t.Error("x-b3-flags=1 (debug) should force sampled")
		}
	})

	t.Run("missing ids rejected", func(t *testing.T) {
		if _, ok := e.Extract(map[string]string{"x-b3-traceid": "80f198ee56343ba864fe8b2a57d3eff7"}); ok {
			t.Error("missing span id should be rejected")
		}
		if _, ok := e.Extract(map[string]string{"x-b3-spanid": "e457b5a2e4d86bd1"}); ok {
			t.Error("missing trace id should be rejected")
		}
	})
}
