package xtail

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

// meterName 指标作用域名称
const meterName = "github.com/omeyang/tracekit/pkg/observability/xtail"

// Processor 尾部采样的 Span 处理器
//
// 包装一个下游处理器，在 Span 开始时计算采样决策并持有决策令牌，
// 在 Span 结束时消费令牌：对尾部采样器补充运行结果做最终裁决，
// 决定是否把 Span 转发给下游。
//
// 决策令牌按 Span ID 持有，开始时登记一次，结束时恰好消费一次。
// 找不到令牌（处理器注册前已开始的 Span）按保留处理。
//
// 设计决策:
//   - 采样器 panic 按失败开放处理: 裁决失败时保留 Span 而不是丢弃，
//     可观测性组件不应因自身缺陷丢数据
//   - 可选的按链路决策缓存保证同一链路内各 Span 的裁决一致
type Processor struct {
	next    sdktrace.SpanProcessor
	sampler xsampling.Sampler
	tail    xsampling.TailSampler
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[trace.SpanID]xsampling.Decision

	cache *lru.Cache[trace.TraceID, bool]

	kept      metric.Int64Counter
	dropped   metric.Int64Counter
	cacheHits metric.Int64Counter
}

var _ sdktrace.SpanProcessor = (*Processor)(nil)

// Option 配置尾部处理器的可选参数
type Option func(*Processor) error

// WithLogger 设置结构化日志器，默认 slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithMeterProvider 设置指标提供者，默认使用全局提供者
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(p *Processor) error {
		if provider == nil {
			return nil
		}
		return p.initMetrics(provider)
	}
}

// WithDecisionCache 启用按链路的裁决缓存
//
// 同一链路先裁决的 Span 结果会被后续 Span 复用，保证链路内
// 保留与否的一致性。size 为缓存的链路数上限，LRU 淘汰。
func WithDecisionCache(size int) Option {
	return func(p *Processor) error {
		if size <= 0 {
			return ErrInvalidCacheSize
		}
		cache, err := lru.New[trace.TraceID, bool](size)
		if err != nil {
			return err
		}
		p.cache = cache
		return nil
	}
}

// NewProcessor 创建尾部采样处理器
//
// next 是被包装的下游处理器（通常为批量导出处理器），sampler 给出
// 采样决策。sampler 同时实现尾部能力（xsampling.TailSampler）时，
// 需要尾部裁决的决策会在 Span 结束时结合运行结果重新裁决。
func NewProcessor(next sdktrace.SpanProcessor, sampler xsampling.Sampler, opts ...Option) (*Processor, error) {
	if next == nil {
		return nil, ErrNilNext
	}
	if sampler == nil {
		return nil, ErrNilSampler
	}

	p := &Processor{
		next:    next,
		sampler: sampler,
		logger:  slog.Default(),
		pending: make(map[trace.SpanID]xsampling.Decision),
	}
	if tail, ok := sampler.(xsampling.TailSampler); ok {
		p.tail = tail
	}

	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.kept == nil {
		if err := p.initMetrics(otel.GetMeterProvider()); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Processor) initMetrics(provider metric.MeterProvider) error {
	meter := provider.Meter(meterName)

	kept, err := meter.Int64Counter("xtail.spans.kept",
		metric.WithDescription("尾部裁决后转发给下游的 Span 数"))
	if err != nil {
		return err
	}
	dropped, err := meter.Int64Counter("xtail.spans.dropped",
		metric.WithDescription("尾部裁决后丢弃的 Span 数"))
	if err != nil {
		return err
	}
	hits, err := meter.Int64Counter("xtail.cache.hits",
		metric.WithDescription("命中链路裁决缓存的 Span 数"))
	if err != nil {
		return err
	}

	p.kept, p.dropped, p.cacheHits = kept, dropped, hits
	return nil
}

// OnStart 登记采样决策令牌并转发给下游
//
// Span 一律转发给下游的 OnStart，丢弃只发生在结束侧。
func (p *Processor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := sampleContextFromSpan(s.Name(), s.SpanContext(), s.Links(), s.Attributes())
	d := p.safeShouldSample(parent, sc)

	p.mu.Lock()
	p.pending[s.SpanContext().SpanID()] = d
	p.mu.Unlock()

	p.next.OnStart(parent, s)
}

// OnEnd 消费决策令牌并做最终裁决
func (p *Processor) OnEnd(s sdktrace.ReadOnlySpan) {
	spanID := s.SpanContext().SpanID()

	p.mu.Lock()
	d, ok := p.pending[spanID]
	delete(p.pending, spanID)
	p.mu.Unlock()

	if !ok {
		// 处理器注册前开始的 Span 没有令牌，失败开放
		p.logger.Warn("tail decision token missing, keeping span",
			"span_id", spanID.String(), "operation", s.Name())
		p.forward(s, "untracked")
		return
	}

	keep, source := p.finalDecision(s, d)
	if keep {
		p.forward(s, source)
		return
	}
	p.dropped.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("source", source)))
}

// finalDecision 计算 Span 的最终保留结果及裁决来源
func (p *Processor) finalDecision(s sdktrace.ReadOnlySpan, d xsampling.Decision) (bool, string) {
	if p.tail == nil || !d.NeedsTail() {
		return d.Sampled(), "head"
	}

	traceID := s.SpanContext().TraceID()
	if p.cache != nil {
		if keep, ok := p.cache.Get(traceID); ok {
			p.cacheHits.Add(context.Background(), 1)
			return keep, "cache"
		}
	}

	sc := sampleContextFromSpan(s.Name(), s.SpanContext(), s.Links(), s.Attributes())
	res := xsampling.Result{
		Err:      statusError(s.Status()),
		Duration: s.EndTime().Sub(s.StartTime()),
	}
	keep := p.safeShouldKeep(sc, res, d)

	if p.cache != nil {
		p.cache.Add(traceID, keep)
	}
	return keep, "tail"
}

func (p *Processor) forward(s sdktrace.ReadOnlySpan, source string) {
	p.kept.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("source", source)))
	p.next.OnEnd(s)
}

// Shutdown 清空在途令牌并关闭下游
func (p *Processor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.pending = make(map[trace.SpanID]xsampling.Decision)
	p.mu.Unlock()
	return p.next.Shutdown(ctx)
}

// ForceFlush 透传给下游
func (p *Processor) ForceFlush(ctx context.Context) error {
	return p.next.ForceFlush(ctx)
}

func (p *Processor) safeShouldSample(ctx context.Context, sc xsampling.SampleContext) (d xsampling.Decision) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("sampler panicked at span start, keeping span",
				"operation", sc.Operation, "panic", r)
			d = xsampling.HeadDecision(true)
		}
	}()
	return p.sampler.ShouldSample(ctx, sc)
}

func (p *Processor) safeShouldKeep(sc xsampling.SampleContext, res xsampling.Result, d xsampling.Decision) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("sampler panicked at span end, keeping span",
				"operation", sc.Operation, "panic", r)
			keep = true
		}
	}()
	return p.tail.ShouldKeep(context.Background(), sc, res, d)
}

// sampleContextFromSpan 从 Span 数据构建采样输入
//
// 调用标识复用 Span ID，天然满足每次调用唯一。
func sampleContextFromSpan(name string, spanCtx trace.SpanContext, links []sdktrace.Link, attrs []attribute.KeyValue) xsampling.SampleContext {
	sc := xsampling.SampleContext{
		Operation:    name,
		InvocationID: spanCtx.SpanID().String(),
	}
	if len(attrs) > 0 {
		sc.Metadata = make(map[string]string, len(attrs))
		for _, kv := range attrs {
			sc.Metadata[string(kv.Key)] = kv.Value.Emit()
		}
	}
	if len(links) > 0 {
		sc.Links = make([]trace.Link, 0, len(links))
		for _, l := range links {
			sc.Links = append(sc.Links, trace.Link{
				SpanContext: l.SpanContext,
				Attributes:  l.Attributes,
			})
		}
	}
	return sc
}

// statusError 把 Span 状态映射为运行结果的错误语义
func statusError(st sdktrace.Status) error {
	if st.Code != codes.Error {
		return nil
	}
	if st.Description == "" {
		return errors.New("span status: error")
	}
	return errors.New(st.Description)
}
