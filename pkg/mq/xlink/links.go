package xlink

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/tracekit/pkg/observability/xtracectx"
)

// AttrLinkIndex 链接在"成功解析的链接序列"中的位置属性
//
// 0 起始、连续。注意这是解析成功序列中的位置，不是消息在
// 原始批次中的位置——无法解析的消息被跳过，不占位。
const AttrLinkIndex = attribute.Key("messaging.batch.link_index")

// Extractor 链接聚合使用的上下文解析能力
//
// xtracectx.Extractor 和 *xtracectx.Registry 都满足此接口。
type Extractor interface {
	Extract(headers map[string]string) (trace.SpanContext, bool)
}

// HeadersFunc 从消息中取出头映射的访问函数
//
// 返回 nil 或空映射表示该消息没有可用的头。
type HeadersFunc[M any] func(msg M) map[string]string

// Option 配置链接聚合的可选参数
type Option func(*config)

type config struct {
	extractor Extractor
}

// WithExtractor 设置上下文解析器
//
// 默认使用 W3C traceparent 解析器。需要多格式回退时传入
// xtracectx.Default() 注册表。nil 会被忽略。
func WithExtractor(e Extractor) Option {
	return func(cfg *config) {
		if e != nil {
			cfg.extractor = e
		}
	}
}

// FromBatch 把一批有序消息聚合为有序的因果链接列表
//
// 典型场景是批量消费的扇入：一次批处理操作因果上继承多条独立的
// 上游生产链路，这种"多个非父级前驱"用链接而非父子关系表达。
//
// 对每条消息执行上下文解析；解析失败的消息被跳过（不插入占位符）。
// 成功解析的链接保持原始相对顺序，并携带 AttrLinkIndex 属性记录
// 其在成功序列中的位置（0 起始、连续）。
//
// headers 为 nil 时返回 nil。
func FromBatch[M any](msgs []M, headers HeadersFunc[M], opts ...Option) []trace.Link {
	if headers == nil || len(msgs) == 0 {
		return nil
	}

	cfg := &config{extractor: xtracectx.W3C{}}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	links := make([]trace.Link, 0, len(msgs))
	for _, msg := range msgs {
		sc, ok := cfg.extractor.Extract(headers(msg))
		if !ok {
			continue
		}
		links = append(links, trace.Link{
			SpanContext: sc,
			Attributes: []attribute.KeyValue{
				AttrLinkIndex.Int(len(links)),
			},
		})
	}
	return links
}
