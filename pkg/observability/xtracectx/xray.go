package xtracectx

import (
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// HeaderAmznTraceID AWS X-Ray 追踪头
const HeaderAmznTraceID = "X-Amzn-Trace-Id"

// X-Ray Root 字段的固定结构：{version}-{8hex 时间戳}-{24hex 随机数}
const (
	xrayRootLen      = 35 // "1-xxxxxxxx-xxxxxxxxxxxxxxxxxxxxxxxx"
	xrayEpochStart   = 2
	xrayEpochEnd     = 10
	xrayRandomStart  = 11
	xrayParentWidth  = 16
	xrayVersionByte  = '1'
	xraySepTimestamp = 1  // '-' 位置
	xraySepRandom    = 10 // '-' 位置
)

// XRay 解析 AWS X-Ray 传播格式
//
// 格式：Root=1-{8hex}-{24hex};Parent={16hex};Sampled={0|1}
// 示例：Root=1-5759e988-bd862e3fe1be46a994272793;Parent=53995c3f42cd8ad8;Sampled=1
//
// trace ID 由时间戳段和随机段拼接而成（8+24=32 字符）。
// Root 或 Parent 缺失时无上下文；Sampled 缺失默认已采样。
type XRay struct{}

// Name 返回格式名称
func (XRay) Name() string { return "xray" }

// Extract 从头映射中解析 X-Ray 头
func (XRay) Extract(headers map[string]string) (trace.SpanContext, bool) {
	value := strings.TrimSpace(headerValue(headers, HeaderAmznTraceID))
	if value == "" {
		return trace.SpanContext{}, false
	}

	var root, parent, sampled string
	for _, part := range strings.Split(value, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "Root":
			root = val
		case "Parent":
			parent = val
		case "Sampled":
			sampled = val
		}
	}

	traceID, ok := xrayTraceID(root)
	if !ok || len(parent) != xrayParentWidth {
		return trace.SpanContext{}, false
	}

	// Sampled 缺失 ⇒ 默认已采样
	flags := trace.FlagsSampled
	if sampled == "0" {
		flags = 0
	}

	return remoteSpanContext(traceID, parent, flags)
}

// xrayTraceID 校验 Root 字段结构并拼接出 128 位 trace ID
func xrayTraceID(root string) (string, bool) {
	if len(root) != xrayRootLen ||
		root[0] != xrayVersionByte ||
		root[xraySepTimestamp] != '-' ||
		root[xraySepRandom] != '-' {
		return "", false
	}
	epoch := root[xrayEpochStart:xrayEpochEnd]
	random := root[xrayRandomStart:]
	if !isValidHex(epoch) || !isValidHex(random) {
		return "", false
	}
	return epoch + random, true
}
