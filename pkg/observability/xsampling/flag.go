package xsampling

import (
	"context"
	"sync"
)

// FlagsFunc 从采样上下文中提取特性开关列表的函数
//
// 返回本次调用命中的特性开关名称。返回 nil 或空切片表示没有开关信息，
// 此时 FlagSampler 按基线比率随机采样。
type FlagsFunc func(ctx context.Context, sc SampleContext) []string

// MetadataFlags 返回从指定元数据字段提取单个开关名的 FlagsFunc
//
// 字段缺失或为空时返回 nil。
func MetadataFlags(field string) FlagsFunc {
	return func(_ context.Context, sc SampleContext) []string {
		if v := sc.Metadata[field]; v != "" {
			return []string{v}
		}
		return nil
	}
}

// FlagOption 配置 FlagSampler 的可选参数
type FlagOption func(*FlagSampler)

// WithAlwaysFlags 设置初始的始终采样开关集合
func WithAlwaysFlags(flags ...string) FlagOption {
	return func(s *FlagSampler) {
		for _, f := range flags {
			s.always[f] = struct{}{}
		}
	}
}

// FlagSampler 基于特性开关的采样策略
//
// 命中白名单开关的调用无条件采样，常用于灰度发布期间对新功能全量追踪；
// 其余调用按基线比率随机采样。白名单可在运行时通过 AllowFlag/DisallowFlag 调整。
type FlagSampler struct {
	rate      float64
	flagsFunc FlagsFunc

	// mu 保护 always 白名单。读多写少，采样热路径只持有读锁。
	mu     sync.RWMutex
	always map[string]struct{}
}

// NewFlagSampler 创建基于特性开关的采样器
//
// rate 表示未命中开关时的基线采样比率，范围 [0.0, 1.0]，
// 超出范围或为 NaN 时返回 ErrInvalidRate。
// flagsFunc 不能为 nil（为 nil 时返回 ErrNilFlagsFunc）。
// nil option 返回 ErrNilOption。
//
// 示例：
//
//	sampler, err := NewFlagSampler(0.01, MetadataFlags("feature"),
//	    WithAlwaysFlags("checkout-v2"))
func NewFlagSampler(rate float64, flagsFunc FlagsFunc, opts ...FlagOption) (*FlagSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if flagsFunc == nil {
		return nil, ErrNilFlagsFunc
	}
	s := &FlagSampler{
		rate:      rate,
		flagsFunc: flagsFunc,
		always:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		opt(s)
	}
	return s, nil
}

func (s *FlagSampler) ShouldSample(ctx context.Context, sc SampleContext) Decision {
	if ctx != nil {
		if flags := s.flagsFunc(ctx, sc); len(flags) > 0 && s.anyAlways(flags) {
			return HeadDecision(true)
		}
	}

	if s.rate <= 0 {
		return HeadDecision(false)
	}
	if s.rate >= 1 {
		return HeadDecision(true)
	}
	return HeadDecision(randomFloat64() < s.rate)
}

// AllowFlag 将开关加入始终采样白名单
func (s *FlagSampler) AllowFlag(flag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.always[flag] = struct{}{}
}

// DisallowFlag 将开关移出始终采样白名单
func (s *FlagSampler) DisallowFlag(flag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.always, flag)
}

// Rate 返回当前基线采样比率
func (s *FlagSampler) Rate() float64 {
	return s.rate
}

func (s *FlagSampler) anyAlways(flags []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range flags {
		if _, ok := s.always[f]; ok {
			return true
		}
	}
	return false
}

// 确保实现了接口
var _ Sampler = (*FlagSampler)(nil)
