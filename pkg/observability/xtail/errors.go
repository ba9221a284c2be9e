package xtail

import "errors"

// 预定义错误
var (
	// ErrNilNext 下游处理器为 nil
	ErrNilNext = errors.New("xtail: nil next span processor")

	// ErrNilSampler 采样器为 nil
	ErrNilSampler = errors.New("xtail: nil sampler")

	// ErrTailSampler 头部适配器不接受尾部采样器
	ErrTailSampler = errors.New("xtail: tail sampler cannot decide at span start")

	// ErrInvalidCacheSize 决策缓存容量必须为正数
	ErrInvalidCacheSize = errors.New("xtail: decision cache size must be positive")

	// ErrNilOption 选项函数为 nil
	ErrNilOption = errors.New("xtail: nil option")
)
