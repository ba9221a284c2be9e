package xtracectx

import (
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// B3 Header 名称（Zipkin 生态）
const (
	// HeaderB3 B3 单头格式
	HeaderB3 = "b3"
	// HeaderB3TraceID B3 多头格式的 trace ID
	HeaderB3TraceID = "x-b3-traceid"
	// HeaderB3SpanID B3 多头格式的 span ID
	HeaderB3SpanID = "x-b3-spanid"
	// HeaderB3Sampled B3 多头格式的采样标记
	HeaderB3Sampled = "x-b3-sampled"
	// HeaderB3Flags B3 多头格式的 debug 标记
	HeaderB3Flags = "x-b3-flags"
)

// B3Single 解析 B3 单头格式
//
// 格式：{traceId}-{spanId}-{sampled}[-{parentSpanId}]
// 示例：80f198ee56343ba864fe8b2a57d3eff7-e457b5a2e4d86bd1-1
//
// 特例：整个头的值为 "0" 表示显式拒绝采样且不携带上下文。
// trace ID 接受 64 位（16 字符）短格式，解析时左补零到 128 位。
type B3Single struct{}

// Name 返回格式名称
func (B3Single) Name() string { return "b3" }

// Extract 从头映射中解析 B3 单头
func (B3Single) Extract(headers map[string]string) (trace.SpanContext, bool) {
	value := strings.TrimSpace(headerValue(headers, HeaderB3))
	if value == "" || value == "0" {
		// "0" 是 B3 的整头拒绝值：无追踪上下文
		return trace.SpanContext{}, false
	}

	parts := strings.Split(value, "-")
	if len(parts) < 2 {
		return trace.SpanContext{}, false
	}

	traceID := padB3TraceID(parts[0])
	if traceID == "" {
		return trace.SpanContext{}, false
	}

	flags := trace.FlagsSampled
	if len(parts) >= 3 && !b3Sampled(parts[2]) {
		flags = 0
	}

	return remoteSpanContext(traceID, parts[1], flags)
}

// B3Multi 解析 B3 多头格式
//
// 头：x-b3-traceid、x-b3-spanid、x-b3-sampled、x-b3-flags。
// sampled 头缺失时默认视为已采样；x-b3-flags=1（debug）视为已采样。
type B3Multi struct{}

// Name 返回格式名称
func (B3Multi) Name() string { return "b3multi" }

// Extract 从头映射中解析 B3 多头
func (B3Multi) Extract(headers map[string]string) (trace.SpanContext, bool) {
	traceID := padB3TraceID(strings.TrimSpace(headerValue(headers, HeaderB3TraceID)))
	spanID := strings.TrimSpace(headerValue(headers, HeaderB3SpanID))
	if traceID == "" || spanID == "" {
		return trace.SpanContext{}, false
	}

	// 缺失 sampled 头 ⇒ 默认已采样
	flags := trace.FlagsSampled
	if sampled := strings.TrimSpace(headerValue(headers, HeaderB3Sampled)); sampled != "" {
		if !b3Sampled(sampled) {
			flags = 0
		}
	}
	// debug 标记强制采样
	if strings.TrimSpace(headerValue(headers, HeaderB3Flags)) == "1" {
		flags = trace.FlagsSampled
	}

	return remoteSpanContext(traceID, spanID, flags)
}

// b3Sampled 判断 B3 采样值是否表示已采样
//
// "1"、"true"、"d"（debug）表示已采样；其余（含 "0"、"false"）表示未采样。
func b3Sampled(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "d":
		return true
	default:
		return false
	}
}

// padB3TraceID 规范化 B3 trace ID 长度
//
// B3 允许 64 位（16 字符）trace ID，左补零到 128 位；
// 其余长度不合法，返回空字符串。
func padB3TraceID(id string) string {
	switch len(id) {
	case 32:
		return id
	case 16:
		return "0000000000000000" + id
	default:
		return ""
	}
}
