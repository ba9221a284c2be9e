package xlink

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/trace"
)

// KafkaHeaders 把 Kafka 消息头转换为链接聚合可用的头映射
//
// 同名头保留最后一个值。nil 消息返回 nil。
func KafkaHeaders(msg *kafka.Message) map[string]string {
	if msg == nil || len(msg.Headers) == 0 {
		return nil
	}
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}

// FromKafkaBatch 把一批 Kafka 消息聚合为因果链接列表
//
// 语义同 FromBatch，头访问固定为 KafkaHeaders。
func FromKafkaBatch(msgs []*kafka.Message, opts ...Option) []trace.Link {
	return FromBatch(msgs, KafkaHeaders, opts...)
}
