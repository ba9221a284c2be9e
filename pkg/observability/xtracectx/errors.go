package xtracectx

import "errors"

// 注册表创建相关的错误
var (
	// ErrNoExtractors 表示注册表的解析器列表为空
	ErrNoExtractors = errors.New("xtracectx: registry requires at least one extractor")

	// ErrNilExtractor 表示解析器为 nil
	ErrNilExtractor = errors.New("xtracectx: extractor must not be nil")
)
