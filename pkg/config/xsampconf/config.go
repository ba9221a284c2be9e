package xsampconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

// Format 配置格式
type Format string

// 支持的配置格式
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Spec 声明式的采样器配置
//
// strategy 决定其余字段的取法，composite 通过 samplers 递归嵌套。
type Spec struct {
	Strategy string  `koanf:"strategy"`
	Rate     float64 `koanf:"rate"`
	Count    int     `koanf:"count"`

	Key      KeySpec      `koanf:"key"`
	Flag     FlagSpec     `koanf:"flag"`
	Adaptive AdaptiveSpec `koanf:"adaptive"`

	Mode     string `koanf:"mode"`
	Samplers []Spec `koanf:"samplers"`
}

// KeySpec 键基采样的键来源配置
type KeySpec struct {
	// Source 键来源: operation（默认）或 metadata
	Source string `koanf:"source"`
	// Field 来源为 metadata 时的字段名
	Field string `koanf:"field"`
	// Always 无条件采样的键
	Always []string `koanf:"always"`
}

// FlagSpec 标志采样配置
type FlagSpec struct {
	// Field 元数据中承载标志的字段名，逗号分隔多个标志
	Field string `koanf:"field"`
	// Always 无条件采样的标志
	Always []string `koanf:"always"`
}

// AdaptiveSpec 自适应尾部采样配置
type AdaptiveSpec struct {
	// KeepErrors 错误必留开关，缺省为 true
	KeepErrors *bool `koanf:"keep_errors"`
	// SlowThreshold 慢调用阈值，如 "500ms"，零值关闭
	SlowThreshold time.Duration `koanf:"slow_threshold"`
	// LinkRate 链接采样率，缺省关闭
	LinkRate *float64 `koanf:"link_rate"`
}

// Load 从配置文件构建采样器
//
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
func Load(path string) (xsampling.Sampler, error) {
	spec, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	return Build(spec)
}

// LoadSpec 从配置文件读取采样配置
func LoadSpec(path string) (Spec, error) {
	if path == "" {
		return Spec{}, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return Spec{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return ParseSpec(data, format)
}

// FromBytes 从字节数据构建采样器
//
// 需要显式指定格式，适用于 K8s ConfigMap 等场景。
func FromBytes(data []byte, format Format) (xsampling.Sampler, error) {
	spec, err := ParseSpec(data, format)
	if err != nil {
		return nil, err
	}
	return Build(spec)
}

// ParseSpec 解析字节数据为采样配置
func ParseSpec(data []byte, format Format) (Spec, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Spec{}, ErrUnsupportedFormat
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	var spec Spec
	if err := k.UnmarshalWithConf("", &spec, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return spec, nil
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}
