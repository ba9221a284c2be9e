package xsampconf

import (
	"fmt"

	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

// Build 把声明式配置构建为采样器
//
// 支持的策略: always、never、rate、count、keybased、flag、
// adaptive、composite。composite 通过 samplers 字段递归构建，
// 嵌套自适应策略会被 xsampling 的组合校验拒绝。
func Build(spec Spec) (xsampling.Sampler, error) {
	switch spec.Strategy {
	case "always":
		return xsampling.Always(), nil
	case "never":
		return xsampling.Never(), nil
	case "rate":
		return xsampling.NewRateSampler(spec.Rate)
	case "count":
		return xsampling.NewCountSampler(spec.Count)
	case "keybased":
		return buildKeyBased(spec)
	case "flag":
		return buildFlag(spec)
	case "adaptive":
		return buildAdaptive(spec)
	case "composite":
		return buildComposite(spec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, spec.Strategy)
	}
}

func buildKeyBased(spec Spec) (xsampling.Sampler, error) {
	var keyFunc xsampling.KeyFunc
	switch spec.Key.Source {
	case "", "operation":
		keyFunc = xsampling.OperationKey
	case "metadata":
		if spec.Key.Field == "" {
			return nil, fmt.Errorf("%w: key.field", ErrMissingField)
		}
		keyFunc = xsampling.MetadataKey(spec.Key.Field)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeySource, spec.Key.Source)
	}

	var opts []xsampling.KeyBasedOption
	if len(spec.Key.Always) > 0 {
		opts = append(opts, xsampling.WithAlwaysKeys(spec.Key.Always...))
	}
	return xsampling.NewKeyBasedSampler(spec.Rate, keyFunc, opts...)
}

func buildFlag(spec Spec) (xsampling.Sampler, error) {
	if spec.Flag.Field == "" {
		return nil, fmt.Errorf("%w: flag.field", ErrMissingField)
	}

	var opts []xsampling.FlagOption
	if len(spec.Flag.Always) > 0 {
		opts = append(opts, xsampling.WithAlwaysFlags(spec.Flag.Always...))
	}
	return xsampling.NewFlagSampler(spec.Rate, xsampling.MetadataFlags(spec.Flag.Field), opts...)
}

func buildAdaptive(spec Spec) (xsampling.Sampler, error) {
	var opts []xsampling.AdaptiveOption
	if spec.Adaptive.KeepErrors != nil {
		opts = append(opts, xsampling.WithKeepErrors(*spec.Adaptive.KeepErrors))
	}
	if spec.Adaptive.SlowThreshold > 0 {
		opts = append(opts, xsampling.WithKeepSlow(spec.Adaptive.SlowThreshold))
	}
	if spec.Adaptive.LinkRate != nil {
		opts = append(opts, xsampling.WithLinkSampling(*spec.Adaptive.LinkRate))
	}
	return xsampling.NewAdaptiveSampler(spec.Rate, opts...)
}

func buildComposite(spec Spec) (xsampling.Sampler, error) {
	var mode xsampling.CompositeMode
	switch spec.Mode {
	case "and":
		mode = xsampling.ModeAND
	case "or":
		mode = xsampling.ModeOR
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
	}

	children := make([]xsampling.Sampler, 0, len(spec.Samplers))
	for i, child := range spec.Samplers {
		s, err := Build(child)
		if err != nil {
			return nil, fmt.Errorf("samplers[%d]: %w", i, err)
		}
		children = append(children, s)
	}
	return xsampling.NewCompositeSampler(mode, children...)
}
