package xtail

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

// HeadSampler 把头部采样器适配为 SDK 采样器
//
// 头部决策在 Span 开始时即为最终结果，适合直接挂到 TracerProvider
// 的采样器位置，不采样的 Span 根本不会创建记录。尾部采样器在
// 开始时给不出最终结果，不被此适配器接受。
type HeadSampler struct {
	sampler     xsampling.Sampler
	description string
}

var _ sdktrace.Sampler = (*HeadSampler)(nil)

// NewHeadSampler 创建头部采样适配器
//
// sampler 实现了尾部能力时返回 ErrTailSampler，尾部采样器应
// 配合 NewProcessor 使用。
func NewHeadSampler(sampler xsampling.Sampler) (*HeadSampler, error) {
	if sampler == nil {
		return nil, ErrNilSampler
	}
	if _, ok := sampler.(xsampling.TailSampler); ok {
		return nil, ErrTailSampler
	}
	return &HeadSampler{
		sampler:     sampler,
		description: fmt.Sprintf("HeadSampler{%T}", sampler),
	}, nil
}

// ShouldSample 实现 sdktrace.Sampler
func (h *HeadSampler) ShouldSample(params sdktrace.SamplingParameters) sdktrace.SamplingResult {
	sc := xsampling.SampleContext{
		Operation:    params.Name,
		InvocationID: params.TraceID.String(),
		Links:        params.Links,
	}
	if len(params.Attributes) > 0 {
		sc.Metadata = make(map[string]string, len(params.Attributes))
		for _, kv := range params.Attributes {
			sc.Metadata[string(kv.Key)] = kv.Value.Emit()
		}
	}

	decision := sdktrace.Drop
	if h.sampler.ShouldSample(params.ParentContext, sc).Sampled() {
		decision = sdktrace.RecordAndSample
	}
	return sdktrace.SamplingResult{
		Decision:   decision,
		Tracestate: trace.SpanContextFromContext(params.ParentContext).TraceState(),
	}
}

// Description 实现 sdktrace.Sampler
func (h *HeadSampler) Description() string { return h.description }
