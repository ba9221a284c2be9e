// Package mq 提供消息队列相关的子包。
//
// 子包列表：
//   - xlink: 批量消费的因果链接聚合，内置 Kafka/Pulsar 适配
//
// 设计原则：
//   - 批处理的多前驱因果关系用链接而非父子关系表达
//   - 链路上下文传播遵循 W3C Trace Context，可回退多格式解析
package mq
