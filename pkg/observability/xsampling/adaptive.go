package xsampling

import (
	"context"
	"time"
)

// AdaptiveOption 配置 AdaptiveSampler 的可选参数
type AdaptiveOption func(*AdaptiveSampler)

// WithKeepErrors 设置是否始终保留出错的操作
//
// 默认开启。关闭后错误操作与普通操作一样按基线比率保留。
func WithKeepErrors(enabled bool) AdaptiveOption {
	return func(s *AdaptiveSampler) {
		s.keepErrors = enabled
	}
}

// WithKeepSlow 设置慢操作保留阈值并开启慢操作保留
//
// 耗时达到 threshold 的操作无条件保留。threshold <= 0 时关闭慢操作保留。
// 默认关闭。
func WithKeepSlow(threshold time.Duration) AdaptiveOption {
	return func(s *AdaptiveSampler) {
		s.slowThreshold = threshold
		s.keepSlow = threshold > 0
	}
}

// WithLinkSampling 设置链接采样比率并开启链接采样
//
// 当操作携带的因果链接中存在已采样的上游时，按 rate 独立抽取保留决策。
// 用于提高"上游已被采样的链路"在本服务中的保留概率，改善跨服务链路完整度。
// 比率校验在构造时进行，非法比率返回 ErrInvalidLinkRate。
// 默认关闭。
func WithLinkSampling(rate float64) AdaptiveOption {
	return func(s *AdaptiveSampler) {
		s.linkRate = rate
		s.linkBased = true
	}
}

// AdaptiveSampler 结果自适应的尾采样策略
//
// 唯一需要尾采样的策略：头阶段总是放行（span 照常创建、上下文照常传播），
// 同时预抽取一个基线保留决策封存在 Decision 令牌中；
// 操作完成后 ShouldKeep 按严格优先级裁决：
//
//  1. 开启 keepErrors 且操作出错 → 保留
//  2. 开启 keepSlow 且耗时达到阈值 → 保留
//  3. 开启链接采样且存在已采样的上游链接 → 按 linkRate 独立抽取
//  4. 否则 → 沿用令牌中封存的基线决策
//
// 两阶段设计的意义：依赖结果（错误、耗时）的决策只能在操作完成后做出，
// 但 span 及其派生的跨进程传播头必须从一开始就存在，
// 这样即使根操作最终被丢弃，下游操作仍能正确关联。
type AdaptiveSampler struct {
	baselineRate  float64
	keepErrors    bool
	keepSlow      bool
	slowThreshold time.Duration
	linkBased     bool
	linkRate      float64
}

// NewAdaptiveSampler 创建结果自适应采样器
//
// baselineRate 是未命中任何保留规则时的基线保留比率，范围 [0.0, 1.0]，
// 超出范围或为 NaN 时返回 ErrInvalidRate。
// 链接采样比率非法时返回 ErrInvalidLinkRate。
// nil option 返回 ErrNilOption。
//
// 示例：
//
//	// 基线 1%，错误全保留，超过 500ms 的慢操作全保留
//	sampler, err := NewAdaptiveSampler(0.01,
//	    WithKeepSlow(500*time.Millisecond))
func NewAdaptiveSampler(baselineRate float64, opts ...AdaptiveOption) (*AdaptiveSampler, error) {
	if err := validateRate(baselineRate); err != nil {
		return nil, err
	}
	s := &AdaptiveSampler{
		baselineRate: baselineRate,
		keepErrors:   true, // 默认保留错误
	}
	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		opt(s)
	}
	if s.linkBased {
		if err := validateRate(s.linkRate); err != nil {
			return nil, ErrInvalidLinkRate
		}
	}
	return s, nil
}

// ShouldSample 头阶段总是放行，并在令牌中封存基线决策
//
// 基线决策在此刻抽取而非 ShouldKeep 时抽取，确保同一次调用
// 无论何时完成，其基线结论都是确定的。
func (s *AdaptiveSampler) ShouldSample(_ context.Context, _ SampleContext) Decision {
	return TailDecision(s.drawBaseline())
}

// ShouldKeep 按严格优先级给出最终的保留/丢弃裁决
//
// 优先级见类型注释。d 应是同一次调用中 ShouldSample 返回的令牌；
// 传入非尾采样令牌时，直接沿用其头阶段结论。
func (s *AdaptiveSampler) ShouldKeep(_ context.Context, sc SampleContext, res Result, d Decision) bool {
	if s.keepErrors && !res.Success() {
		return true
	}
	if s.keepSlow && res.Duration >= s.slowThreshold {
		return true
	}
	if s.linkBased && hasSampledLink(sc) {
		// 独立抽取，不复用基线决策：链接采样是一条独立的保留通道，
		// 基线比率为 0 时它仍应按 linkRate 生效
		if s.linkRate >= 1 {
			return true
		}
		if s.linkRate > 0 {
			return randomFloat64() < s.linkRate
		}
		return false
	}
	if !d.NeedsTail() {
		return d.Sampled()
	}
	return d.baseline
}

// BaselineRate 返回基线保留比率
func (s *AdaptiveSampler) BaselineRate() float64 {
	return s.baselineRate
}

func (s *AdaptiveSampler) drawBaseline() bool {
	if s.baselineRate <= 0 {
		return false
	}
	if s.baselineRate >= 1 {
		return true
	}
	return randomFloat64() < s.baselineRate
}

// hasSampledLink 判断是否存在已采样的上游链接
func hasSampledLink(sc SampleContext) bool {
	for _, link := range sc.Links {
		if link.SpanContext.IsSampled() {
			return true
		}
	}
	return false
}

// 确保实现了接口
var (
	_ Sampler     = (*AdaptiveSampler)(nil)
	_ TailSampler = (*AdaptiveSampler)(nil)
)
