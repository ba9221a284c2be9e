package xtracectx

import (
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Extractor 单一线格式的追踪上下文解析器
//
// Extract 是纯函数：从消息/请求头映射中解析出规范化的 SpanContext。
// 解析失败（头缺失、格式非法、全零 ID）返回 ok=false，
// 这是预期内的非异常结果，调用方应将其视为"无上下文可用"而非错误。
//
// Extract 运行在每条消息/每次请求的热路径上，实现必须是 O(1)、
// 无 I/O 的轻量操作。
type Extractor interface {
	// Name 返回格式名称，如 "w3c"、"b3"，用于日志和注册表自省
	Name() string

	// Extract 从头映射中解析追踪上下文
	//
	// 返回的 SpanContext 保证 IsValid() 且 IsRemote()。
	// ok=false 表示该格式的头不存在或不合法。
	Extract(headers map[string]string) (trace.SpanContext, bool)
}

// Registry 解析器注册表
//
// 按注册顺序逐个尝试解析，返回第一个成功的结果。
// 新格式通过 Register 注册，分发逻辑不需要任何改动。
//
// Registry 不是并发可变的：Register 应在初始化阶段完成，
// 之后的并发 Extract 调用是安全的（只读）。
type Registry struct {
	extractors []Extractor
}

// NewRegistry 创建解析器注册表
//
// extractors 至少一个（空列表返回 ErrNoExtractors），
// nil 解析器返回 ErrNilExtractor。
func NewRegistry(extractors ...Extractor) (*Registry, error) {
	if len(extractors) == 0 {
		return nil, ErrNoExtractors
	}
	for _, e := range extractors {
		if e == nil {
			return nil, ErrNilExtractor
		}
	}
	copied := make([]Extractor, len(extractors))
	copy(copied, extractors)
	return &Registry{extractors: copied}, nil
}

// Default 返回内置全部格式的注册表
//
// 尝试顺序：W3C traceparent → B3 单头 → B3 多头 → Datadog → AWS X-Ray。
// W3C 在最前，因为它是跨厂商的标准格式，也是本库注入侧使用的格式。
func Default() *Registry {
	r, err := NewRegistry(W3C{}, B3Single{}, B3Multi{}, Datadog{}, XRay{})
	if err != nil {
		// 内置列表非空且无 nil，不可能失败
		panic("xtracectx: default registry construction failed: " + err.Error())
	}
	return r
}

// Register 追加一个解析器
//
// nil 解析器返回 ErrNilExtractor。
func (r *Registry) Register(e Extractor) error {
	if e == nil {
		return ErrNilExtractor
	}
	r.extractors = append(r.extractors, e)
	return nil
}

// Extract 按注册顺序尝试解析，返回第一个成功的结果
func (r *Registry) Extract(headers map[string]string) (trace.SpanContext, bool) {
	if len(headers) == 0 {
		return trace.SpanContext{}, false
	}
	for _, e := range r.extractors {
		if sc, ok := e.Extract(headers); ok {
			return sc, true
		}
	}
	return trace.SpanContext{}, false
}

// Extractors 返回解析器列表（只读副本）
func (r *Registry) Extractors() []Extractor {
	copied := make([]Extractor, len(r.extractors))
	copy(copied, r.extractors)
	return copied
}

// headerValue 从头映射中取值，key 匹配大小写不敏感
//
// 先做精确匹配（常见路径零开销），再做 EqualFold 线性扫描。
// 头映射来自 HTTP/Kafka/Pulsar 等不同传输层，key 的大小写不可控。
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// remoteSpanContext 用解析出的 ID 构造远端 SpanContext
//
// trace.TraceIDFromHex/SpanIDFromHex 已经涵盖长度、十六进制、
// 非全零校验；全零 ID 与"头缺失"同等处理，绝不产生"合法但全零"的上下文。
func remoteSpanContext(traceID, spanID string, flags trace.TraceFlags) (trace.SpanContext, bool) {
	tid, err := trace.TraceIDFromHex(strings.ToLower(traceID))
	if err != nil {
		return trace.SpanContext{}, false
	}
	sid, err := trace.SpanIDFromHex(strings.ToLower(spanID))
	if err != nil {
		return trace.SpanContext{}, false
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: flags,
		Remote:     true,
	})
	if !sc.IsValid() {
		return trace.SpanContext{}, false
	}
	return sc, true
}

// 确保实现了接口
var (
	_ Extractor = W3C{}
	_ Extractor = B3Single{}
	_ Extractor = B3Multi{}
	_ Extractor = Datadog{}
	_ Extractor = XRay{}
)
