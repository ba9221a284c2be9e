// Package xtail 提供尾部采样的 OpenTelemetry Span 处理器。
//
// 头部采样在操作开始时一锤定音，无法照顾"错误必留、慢调用必留"
// 这类依赖运行结果的策略。尾部采样把最终裁决推迟到 Span 结束:
// 开始时记录决策令牌，结束时结合错误与耗时做最终取舍。
//
// 核心组件:
//   - Processor: 包装下游 SpanProcessor，开始登记令牌、结束消费
//     令牌并裁决是否转发
//   - HeadSampler: 把头部采样器适配为 sdktrace.Sampler，挂在
//     TracerProvider 的采样器位置
//
// 使用示例:
//
//	sampler, _ := xsampling.NewAdaptiveSampler(0.01,
//		xsampling.WithKeepSlow(500*time.Millisecond))
//	proc, _ := xtail.NewProcessor(
//		sdktrace.NewBatchSpanProcessor(exporter), sampler,
//		xtail.WithDecisionCache(4096))
//	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(proc))
//
// 设计决策:
//   - 裁决全程失败开放: 采样器 panic、令牌缺失都按保留处理，
//     采样层的缺陷不应造成数据丢失
//   - 丢弃发生在结束侧: OnStart 一律透传，下游处理器各自决定
//     是否关心未结束的 Span
package xtail
