package xsampling

import "context"

// CompositeMode 组合采样模式
type CompositeMode int

const (
	// ModeAND 要求所有子采样器都通过才采样
	//
	// 逻辑与：sampler1 && sampler2 && ...
	ModeAND CompositeMode = iota

	// ModeOR 任一子采样器通过即采样
	//
	// 逻辑或：sampler1 || sampler2 || ...
	ModeOR
)

// String 返回组合模式的字符串表示
func (m CompositeMode) String() string {
	switch m {
	case ModeAND:
		return "AND"
	case ModeOR:
		return "OR"
	default:
		return "Unknown"
	}
}

// CompositeSampler 组合采样策略
//
// 将多个头采样器组合在一起，支持 AND/OR 逻辑：
//   - ModeAND: 所有子采样器都放行时才采样
//   - ModeOR: 任一子采样器放行时即采样
//
// 组合采样器使用短路求值：AND 模式遇到拒绝立即返回，OR 模式遇到放行立即返回。
// 设计决策: 有状态子采样器（如 CountSampler）的内部状态仅在实际被求值时更新，
// 因此子采样器的排列顺序可能影响有状态采样器的行为。
//
// 设计决策: 不接受尾采样子采样器（构造时返回 ErrTailChild）。
// 尾采样器的最终结论要到操作完成后才产生，在头阶段对其做布尔组合没有
// 良定义的语义；需要"自适应 或 开关"这类组合时，应把开关条件表达为
// AdaptiveSampler 的输入，而不是组合两个异类采样器。
type CompositeSampler struct {
	samplers []Sampler
	mode     CompositeMode
}

// NewCompositeSampler 创建组合采样器
//
// mode 指定组合逻辑（ModeAND 或 ModeOR）。
// samplers 是要组合的子采样器列表，至少一个（空列表返回 ErrNoSamplers）。
//
// 非法 mode 返回 ErrInvalidMode，nil 子采样器返回 ErrNilSampler，
// 尾采样子采样器返回 ErrTailChild。
//
// 示例：
//
//	rateSampler, _ := NewRateSampler(0.1)
//	countSampler, _ := NewCountSampler(10)
//
//	// 同时满足比率采样和计数采样
//	sampler, err := NewCompositeSampler(ModeAND, rateSampler, countSampler)
func NewCompositeSampler(mode CompositeMode, samplers ...Sampler) (*CompositeSampler, error) {
	if mode != ModeAND && mode != ModeOR {
		return nil, ErrInvalidMode
	}
	if len(samplers) == 0 {
		return nil, ErrNoSamplers
	}

	for _, s := range samplers {
		if s == nil {
			return nil, ErrNilSampler
		}
		if _, ok := s.(TailSampler); ok {
			return nil, ErrTailChild
		}
	}

	// 复制切片以防止外部修改
	copied := make([]Sampler, len(samplers))
	copy(copied, samplers)
	return &CompositeSampler{
		samplers: copied,
		mode:     mode,
	}, nil
}

func (s *CompositeSampler) ShouldSample(ctx context.Context, sc SampleContext) Decision {
	for _, sampler := range s.samplers {
		result := sampler.ShouldSample(ctx, sc).Sampled()
		if s.mode == ModeAND && !result {
			return HeadDecision(false) // 短路求值：AND 模式遇到拒绝立即返回
		}
		if s.mode == ModeOR && result {
			return HeadDecision(true) // 短路求值：OR 模式遇到放行立即返回
		}
	}

	// AND 模式：所有都放行，返回 true
	// OR 模式：所有都拒绝，返回 false
	return HeadDecision(s.mode == ModeAND)
}

// Reset 重置所有可重置的子采样器
func (s *CompositeSampler) Reset() {
	for _, sampler := range s.samplers {
		if resettable, ok := sampler.(ResettableSampler); ok {
			resettable.Reset()
		}
	}
}

// Mode 返回组合模式
func (s *CompositeSampler) Mode() CompositeMode {
	return s.mode
}

// Samplers 返回子采样器列表（只读副本）
func (s *CompositeSampler) Samplers() []Sampler {
	copied := make([]Sampler, len(s.samplers))
	copy(copied, s.samplers)
	return copied
}

// All 创建 AND 组合采样器（便捷函数）
//
// 等同于 NewCompositeSampler(ModeAND, samplers...)
func All(samplers ...Sampler) (*CompositeSampler, error) {
	return NewCompositeSampler(ModeAND, samplers...)
}

// Any 创建 OR 组合采样器（便捷函数）
//
// 等同于 NewCompositeSampler(ModeOR, samplers...)
func Any(samplers ...Sampler) (*CompositeSampler, error) {
	return NewCompositeSampler(ModeOR, samplers...)
}

// 确保实现了接口
var (
	_ Sampler           = (*CompositeSampler)(nil)
	_ ResettableSampler = (*CompositeSampler)(nil)
)
