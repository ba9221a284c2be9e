// Package xlink 提供跨系统的批量因果链接聚合。
//
// 批量消费是典型的扇入点：一次批处理操作因果上继承多条独立的
// 上游链路。父子关系只能表达单一前驱，这类"多前驱"关系用
// OpenTelemetry 链接（trace.Link）表达。
//
// 核心操作:
//   - FromBatch: 泛型聚合，任意消息类型 + 头访问函数
//   - FromKafkaBatch / FromPulsarBatch: 常用消息系统的便捷封装
//
// 聚合语义:
//   - 逐条解析消息头中的链路上下文，默认 W3C traceparent，
//     可通过 WithExtractor 换成 xtracectx.Default() 多格式回退
//   - 解析失败的消息被跳过，不产生占位链接
//   - 成功的链接保持原始相对顺序，AttrLinkIndex 属性记录其在
//     成功序列中的位置（0 起始、连续）
//
// 使用示例:
//
//	msgs := consumer.ReadBatch(ctx, 100)
//	links := xlink.FromKafkaBatch(msgs, xlink.WithExtractor(xtracectx.Default()))
//	ctx, span := tracer.Start(ctx, "orders.batch", trace.WithLinks(links...))
//
// 设计决策:
//   - 位置属性记录的是成功序列中的下标而非原始批次下标，保证
//     下标连续，消费侧无需感知哪些消息解析失败
//   - 解析失败静默跳过而不报错，单条坏消息不应影响整批的链路归因
package xlink
