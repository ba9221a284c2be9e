// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xsampling: 采样策略（头部与尾部采样器）
//   - xtail: 尾部采样的 OpenTelemetry Span 处理器
//   - xtracectx: 跨系统链路上下文解析（W3C/B3/Datadog/X-Ray）
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 采样裁决失败开放，采样层缺陷不丢数据
//   - 决策以显式令牌传递，头部与尾部共用一套采样器接口
package observability
