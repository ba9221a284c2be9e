package xsampling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// SampleContext 单次调用的采样上下文
//
// 每个被观测的操作在开始时构造一个 SampleContext，
// 同一次调用的 ShouldSample 和 ShouldKeep 必须使用同一个实例。
type SampleContext struct {
	// Operation 操作名称，如 "orders.create"
	Operation string

	// InvocationID 调用唯一标识
	//
	// 同一次调用内保持稳定，并发调用之间互不相同。
	// 仅用于日志关联和调试，采样决策本身不依赖它
	// （尾采样状态通过 Decision 令牌显式传递）。
	InvocationID string

	// Metadata 附加元数据，供 KeyFunc/FlagsFunc 提取采样依据
	Metadata map[string]string

	// Links 因果关联链接（如批量消费时的上游生产者上下文）
	//
	// AdaptiveSampler 的链接采样会检查其中是否存在已采样的上游。
	Links []trace.Link
}

// NewSampleContext 创建采样上下文并生成 InvocationID
//
// 调用方如有天然的调用标识（如请求 ID），可以直接构造 SampleContext
// 并填入 InvocationID，无需使用本函数。
func NewSampleContext(operation string) SampleContext {
	return SampleContext{
		Operation:    operation,
		InvocationID: uuid.NewString(),
	}
}

// Result 操作完成后的结果，供尾采样决策使用
type Result struct {
	// Err 操作错误，nil 表示成功
	Err error

	// Duration 操作耗时
	Duration time.Duration
}

// Success 判断操作是否成功
func (r Result) Success() bool {
	return r.Err == nil
}

// Decision 采样决策令牌
//
// ShouldSample 返回 Decision，调用方在操作完成后将同一个令牌
// 原样传给 ShouldKeep。尾采样所需的基线决策保存在令牌内部，
// 采样器自身不持有任何逐调用状态。
//
// 设计决策: 用值语义的令牌取代按调用标识键控的内部映射——
// 令牌随调用栈显式传递，生命周期与调用严格一致，
// 不存在泄漏条目，也不依赖任何回收机制。
type Decision struct {
	sample   bool
	tail     bool
	baseline bool
}

// HeadDecision 构造头采样决策
//
// sampled 即最终结论，不需要尾采样确认。
func HeadDecision(sampled bool) Decision {
	return Decision{sample: sampled}
}

// TailDecision 构造尾采样决策
//
// 头阶段总是放行（span 照常创建），baseline 是预抽取的基线结论，
// 留待 ShouldKeep 在操作完成后最终裁决。
func TailDecision(baseline bool) Decision {
	return Decision{sample: true, tail: true, baseline: baseline}
}

// Sampled 返回头阶段是否放行
//
// 尾采样决策的头阶段总是 true：span 先乐观创建，
// 导出与否由 ShouldKeep 在操作完成后裁决。
func (d Decision) Sampled() bool {
	return d.sample
}

// NeedsTail 返回该决策是否需要尾采样确认
func (d Decision) NeedsTail() bool {
	return d.tail
}

// Sampler 采样策略接口
//
// 采样器决定是否对某次操作进行追踪采样。
// ShouldSample 在操作开始前调用，返回的 Decision 是本次调用的决策令牌。
// 对于头采样策略，Decision.Sampled() 即最终结论；
// 对于尾采样策略（见 TailSampler），最终结论由 ShouldKeep 给出。
//
// ShouldSample 运行在每次被观测调用的热路径上，
// 实现必须是 O(1)、无 I/O 的轻量操作。
type Sampler interface {
	// ShouldSample 判断是否应该采样
	//
	// ctx 不得为 nil；如需占位请使用 context.TODO()。
	ShouldSample(ctx context.Context, sc SampleContext) Decision
}

// TailSampler 尾采样策略接口
//
// 尾采样将保留/丢弃的最终裁决推迟到操作完成之后，
// 使错误、耗时等结果信息能够影响决策。
//
// 调用方契约：ShouldSample 在操作开始前调用一次，
// 操作完成后将其返回的 Decision 连同 Result 传给 ShouldKeep，
// 且每次调用恰好调用一次 ShouldKeep。
type TailSampler interface {
	Sampler

	// ShouldKeep 在操作完成后给出最终的保留/丢弃裁决
	//
	// d 必须是同一次调用中 ShouldSample 返回的令牌。
	// 传入非尾采样令牌时，直接沿用其头阶段结论。
	ShouldKeep(ctx context.Context, sc SampleContext, res Result, d Decision) bool
}

// ResettableSampler 可重置的采样器
//
// 有状态的采样器（如 CountSampler）可以被重置到初始状态。
type ResettableSampler interface {
	Sampler
	// Reset 重置采样器状态
	Reset()
}
