package xsampconf

import (
	"context"
	"sync/atomic"

	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

// holder 包一层结构体让接口值可被 atomic.Pointer 持有
type holder struct {
	sampler xsampling.Sampler
}

// Dynamic 可热替换的采样器
//
// 决策透传给当前持有的采样器，Swap 原子地换入新采样器，
// 换入对并发的决策调用立即可见。配合 Watcher 实现配置热更新。
//
// Dynamic 总是实现尾部能力: 当前采样器不具备尾部能力时，
// ShouldKeep 直接回落到决策令牌的头部结果。
type Dynamic struct {
	v atomic.Pointer[holder]
}

var (
	_ xsampling.Sampler     = (*Dynamic)(nil)
	_ xsampling.TailSampler = (*Dynamic)(nil)
)

// NewDynamic 创建可热替换的采样器
func NewDynamic(initial xsampling.Sampler) (*Dynamic, error) {
	if initial == nil {
		return nil, ErrNilSampler
	}
	d := &Dynamic{}
	d.v.Store(&holder{sampler: initial})
	return d, nil
}

// ShouldSample 实现 xsampling.Sampler
func (d *Dynamic) ShouldSample(ctx context.Context, sc xsampling.SampleContext) xsampling.Decision {
	return d.Current().ShouldSample(ctx, sc)
}

// ShouldKeep 实现 xsampling.TailSampler
func (d *Dynamic) ShouldKeep(ctx context.Context, sc xsampling.SampleContext, res xsampling.Result, dec xsampling.Decision) bool {
	if tail, ok := d.Current().(xsampling.TailSampler); ok {
		return tail.ShouldKeep(ctx, sc, res, dec)
	}
	return dec.Sampled()
}

// Swap 原子地换入新采样器
func (d *Dynamic) Swap(sampler xsampling.Sampler) error {
	if sampler == nil {
		return ErrNilSampler
	}
	d.v.Store(&holder{sampler: sampler})
	return nil
}

// Current 返回当前持有的采样器
func (d *Dynamic) Current() xsampling.Sampler {
	return d.v.Load().sampler
}
