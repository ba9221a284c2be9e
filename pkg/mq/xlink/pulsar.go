package xlink

import (
	"github.com/apache/pulsar-client-go/pulsar"
	"go.opentelemetry.io/otel/trace"
)

// PulsarProperties 把 Pulsar 消息属性转换为链接聚合可用的头映射
//
// Pulsar 的链路上下文按约定放在消息 Properties 中。nil 消息返回 nil。
func PulsarProperties(msg pulsar.Message) map[string]string {
	if msg == nil {
		return nil
	}
	return msg.Properties()
}

// FromPulsarBatch 把一批 Pulsar 消息聚合为因果链接列表
//
// 语义同 FromBatch，头访问固定为 PulsarProperties。
func FromPulsarBatch(msgs []pulsar.Message, opts ...Option) []trace.Link {
	return FromBatch(msgs, PulsarProperties, opts...)
}
