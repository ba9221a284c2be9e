package xtracectx

import (
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Datadog Header 名称
const (
	// HeaderDatadogTraceID Datadog trace ID（十进制）
	HeaderDatadogTraceID = "x-datadog-trace-id"
	// HeaderDatadogParentID Datadog parent span ID（十进制）
	HeaderDatadogParentID = "x-datadog-parent-id"
	// HeaderDatadogSamplingPriority Datadog 采样优先级
	HeaderDatadogSamplingPriority = "x-datadog-sampling-priority"
)

// Datadog 解析 Datadog 传播格式
//
// Datadog 的 ID 是十进制编码的 64 位无符号整数，
// 解析后转十六进制并左补零到 32/16 字符。
// 采样优先级 > 0 表示已采样；优先级缺失按未采样处理
// （Datadog 语义里缺失意味着由本端自行决策，而非继承上游结论）。
type Datadog struct{}

// Name 返回格式名称
func (Datadog) Name() string { return "datadog" }

// Extract 从头映射中解析 Datadog 头
func (Datadog) Extract(headers map[string]string) (trace.SpanContext, bool) {
	rawTrace := strings.TrimSpace(headerValue(headers, HeaderDatadogTraceID))
	rawParent := strings.TrimSpace(headerValue(headers, HeaderDatadogParentID))
	if rawTrace == "" || rawParent == "" {
		return trace.SpanContext{}, false
	}

	traceID, err := strconv.ParseUint(rawTrace, 10, 64)
	if err != nil {
		return trace.SpanContext{}, false
	}
	spanID, err := strconv.ParseUint(rawParent, 10, 64)
	if err != nil {
		return trace.SpanContext{}, false
	}

	var flags trace.TraceFlags
	if raw := strings.TrimSpace(headerValue(headers, HeaderDatadogSamplingPriority)); raw != "" {
		if priority, err := strconv.Atoi(raw); err == nil && priority > 0 {
			flags = trace.FlagsSampled
		}
	}

	// 64 位 trace ID 左补零到 128 位十六进制
	return remoteSpanContext(
		fmt.Sprintf("%032x", traceID),
		fmt.Sprintf("%016x", spanID),
		flags,
	)
}
