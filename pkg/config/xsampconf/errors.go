package xsampconf

import "errors"

// 配置加载和构建相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xsampconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xsampconf: unsupported config format")

	// ErrLoadFailed 表示配置加载失败。
	ErrLoadFailed = errors.New("xsampconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xsampconf: failed to parse config")

	// ErrUnknownStrategy 表示未知的采样策略名。
	ErrUnknownStrategy = errors.New("xsampconf: unknown sampling strategy")

	// ErrUnknownMode 表示未知的组合模式。
	ErrUnknownMode = errors.New("xsampconf: unknown composite mode")

	// ErrUnknownKeySource 表示未知的键来源。
	ErrUnknownKeySource = errors.New("xsampconf: unknown key source")

	// ErrMissingField 表示策略缺少必填字段。
	ErrMissingField = errors.New("xsampconf: missing required field")

	// ErrNilSampler 表示采样器为 nil。
	ErrNilSampler = errors.New("xsampconf: nil sampler")
)
