package xtracectx

import (
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// W3C Trace Context 标准 Header
const (
	// HeaderTraceparent W3C traceparent 头
	HeaderTraceparent = "traceparent"
	// HeaderTracestate W3C tracestate 头
	HeaderTracestate = "tracestate"
)

// traceparentLen W3C traceparent 固定长度：00-{32}-{16}-{2} = 55 字符
const traceparentLen = 55

// W3C 解析 W3C Trace Context 格式
//
// 格式：{version}-{trace-id}-{parent-id}-{trace-flags}
// 示例：00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01
//
// W3C 前向兼容性：
//   - 版本 "ff" 保留，始终无效（大小写不敏感）
//   - 未知版本（> "00"）按 version-00 格式解析前 4 个字段
//   - 未来版本的额外字段（用 "-" 分隔）被忽略
//
// 解析成功且 tracestate 头存在时，tracestate 会一并附加到返回的上下文。
type W3C struct{}

// Name 返回格式名称
func (W3C) Name() string { return "w3c" }

// Extract 从头映射中解析 W3C traceparent
func (W3C) Extract(headers map[string]string) (trace.SpanContext, bool) {
	traceparent := strings.TrimSpace(headerValue(headers, HeaderTraceparent))
	if traceparent == "" {
		return trace.SpanContext{}, false
	}

	traceID, spanID, flags, ok := parseTraceparent(traceparent)
	if !ok {
		return trace.SpanContext{}, false
	}

	sc, ok := remoteSpanContext(traceID, spanID, flags)
	if !ok {
		return trace.SpanContext{}, false
	}

	// tracestate 仅在 traceparent 合法时才有意义（W3C 规范）
	if raw := strings.TrimSpace(headerValue(headers, HeaderTracestate)); raw != "" {
		if ts, err := trace.ParseTraceState(raw); err == nil {
			sc = sc.WithTraceState(ts)
		}
		// 非法 tracestate 静默丢弃，不影响已解析的 traceparent
	}

	return sc, true
}

// hasTraceparentSeparators 验证 traceparent 分隔符位于正确位置。
// 调用方保证 len(s) >= 55。
func hasTraceparentSeparators(s string) bool {
	return s[2] == '-' && s[35] == '-' && s[52] == '-'
}

// validateTraceparentStructure 验证 traceparent 的结构（长度、分隔符、版本、版本长度约束）。
func validateTraceparentStructure(traceparent string) bool {
	// W3C 规范：最小长度 55 字符（{2}-{32}-{16}-{2}）
	if len(traceparent) < traceparentLen || !hasTraceparentSeparators(traceparent) {
		return false
	}
	version := traceparent[0:2]
	if !isValidTraceparentVersion(version) {
		return false
	}
	// W3C 规范：version 00 必须恰好 55 字符，不允许额外字段
	if version == "00" {
		return len(traceparent) == traceparentLen
	}
	// W3C 前向兼容：未知版本如果长度超过 55，第 56 位（索引 55）必须是 '-'
	// 这确保扩展字段使用正确的分隔符格式
	return len(traceparent) <= traceparentLen || traceparent[traceparentLen] == '-'
}

// 使用固定索引解析，避免 strings.SplitN 的堆分配。
func parseTraceparent(traceparent string) (traceID, spanID string, flags trace.TraceFlags, ok bool) {
	if !validateTraceparentStructure(traceparent) {
		return "", "", 0, false
	}

	traceID = traceparent[3:35]
	if !isValidHex(traceID) {
		return "", "", 0, false
	}

	spanID = traceparent[36:52]
	if !isValidHex(spanID) {
		return "", "", 0, false
	}

	flagsHex := traceparent[53:55]
	if !isValidHex(flagsHex) {
		return "", "", 0, false
	}

	return traceID, spanID, trace.TraceFlags(hexByte(flagsHex)), true
}

// isValidTraceparentVersion 验证 traceparent 版本格式
func isValidTraceparentVersion(version string) bool {
	// 验证版本格式（2个十六进制字符）
	if len(version) != 2 || !isValidHex(version) {
		return false
	}
	// W3C 规范：版本 "ff" 保留，始终无效（大小写不敏感）
	return !strings.EqualFold(version, "ff")
}

// isValidHex 验证字符串是否为有效的十六进制。
// 解析端容错：同时接受大写和小写，确保与不同实现的互操作性。
func isValidHex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return false
		}
	}
	return true
}

// hexByte 解析 2 位十六进制字符为字节。调用方保证输入已通过 isValidHex。
func hexByte(s string) byte {
	return hexNibble(s[0])<<4 | hexNibble(s[1])
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
