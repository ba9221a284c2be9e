// Package xtracectx 提供多线格式的追踪上下文解析。
//
// 分布式系统中的追踪上下文通过消息/请求头跨进程传播，但不同生态
// 使用不同的线格式。本包为每种格式提供一个无状态解析器，
// 将头映射规范化为 OpenTelemetry 的 trace.SpanContext：
//
//   - W3C: traceparent/tracestate（跨厂商标准）
//   - B3Single: b3 单头（Zipkin）
//   - B3Multi: x-b3-* 多头（Zipkin）
//   - Datadog: x-datadog-*（十进制 ID）
//   - XRay: X-Amzn-Trace-Id（AWS）
//
// # 统一不变量
//
// 全零的 trace ID 或 span ID 与"头缺失"同等处理：解析返回 ok=false，
// 绝不产生"合法但全零"的上下文。所有解析成功的上下文都标记为远端
// （IsRemote() == true）。
//
// # 注册表
//
// Registry 将多个解析器按顺序组合，新格式通过 Register 注册，
// 分发逻辑无需改动。Default() 返回内置全部格式的注册表。
//
// # 错误处理
//
// 头格式非法是预期内的常态（上游可能是任意实现），解析失败不返回
// error，只返回 ok=false；调用方应将其视为"无链接可用"继续执行。
package xtracectx
