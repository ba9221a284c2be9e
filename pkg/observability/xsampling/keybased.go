package xsampling

import (
	"context"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// KeyFunc 从采样上下文中提取采样 key 的函数
//
// 返回的 key 用于一致性哈希采样，相同的 key 总是产生相同的采样决策。
// 如果返回空字符串，KeyBasedSampler 会回退到随机采样，此时仍保持近似的采样率语义，
// 但失去跨进程一致性保证。
type KeyFunc func(ctx context.Context, sc SampleContext) string

// OperationKey 以操作名作为采样 key 的 KeyFunc
//
// 同一操作名的所有调用采样行为一致：要么全采样，要么全不采样。
func OperationKey(_ context.Context, sc SampleContext) string {
	return sc.Operation
}

// MetadataKey 返回以指定元数据字段作为采样 key 的 KeyFunc
//
// 字段缺失时返回空字符串，触发随机采样回退。
func MetadataKey(field string) KeyFunc {
	return func(_ context.Context, sc SampleContext) string {
		return sc.Metadata[field]
	}
}

// KeyBasedOption 配置 KeyBasedSampler 的可选参数
type KeyBasedOption func(*KeyBasedSampler)

// WithAlwaysKeys 设置初始的始终采样 key 集合
//
// 集合内的 key 无条件采样，不参与哈希判定。
// 运行时可通过 AllowKey/DisallowKey 增删。
func WithAlwaysKeys(keys ...string) KeyBasedOption {
	return func(s *KeyBasedSampler) {
		for _, k := range keys {
			s.always[k] = struct{}{}
		}
	}
}

// WithOnEmptyKey 设置空 key 回调函数
//
// 当 KeyFunc 返回空字符串时，在执行随机采样回退前调用此回调。
// 用于指标计数或日志记录，帮助发现上下文传播链路断裂问题。
// 回调应当轻量（如原子计数器递增），避免阻塞采样热路径。
// nil 回调会被忽略。
func WithOnEmptyKey(fn func()) KeyBasedOption {
	return func(s *KeyBasedSampler) {
		if fn != nil {
			s.onEmptyKey = fn
		}
	}
}

// KeyBasedSampler 基于 key 的一致性采样策略
//
// 对于相同的 key，在相同的 rate 下总是产生相同的采样决策——
// 纯函数语义，与调用顺序和进程重启无关。这对需要采样一致性的场景非常有用：
//   - 按 trace_id 采样，确保同一条链路的所有 span 都被采样或都不被采样
//   - 按 tenant_id 采样，确保同一租户的请求采样行为一致
//
// 此外维护一个始终采样的 key 白名单（如重点客户、灰度操作），
// 白名单可在运行时通过 AllowKey/DisallowKey 动态调整。
//
// 设计决策: 工厂函数返回具体类型而非 Sampler 接口，因为 Rate() 和
// AllowKey/DisallowKey 提供了接口之外的自省与控制能力。
type KeyBasedSampler struct {
	rate       float64
	keyFunc    KeyFunc
	onEmptyKey func() // 空 key 回调，用于可观测性（指标/日志）

	// mu 保护 always 白名单。读多写少，采样热路径只持有读锁。
	mu     sync.RWMutex
	always map[string]struct{}
}

// NewKeyBasedSampler 创建基于 key 的一致性采样器
//
// rate 表示基线采样比率，范围 [0.0, 1.0]，超出范围或为 NaN 时返回 ErrInvalidRate。
// keyFunc 用于从采样上下文中提取 key，不能为 nil（为 nil 时返回 ErrNilKeyFunc）。
// nil option 返回 ErrNilOption。
//
// 当 keyFunc 返回空字符串时，采样器回退到随机采样（保持采样率语义但失去一致性）。
// 可通过 WithOnEmptyKey 注册回调来监控空 key 事件，帮助排查上下文传播问题。
//
// 示例：
//
//	// 按租户采样，VIP 租户始终采样
//	sampler, err := NewKeyBasedSampler(0.05, MetadataKey("tenant_id"),
//	    WithAlwaysKeys("tenant-vip"))
func NewKeyBasedSampler(rate float64, keyFunc KeyFunc, opts ...KeyBasedOption) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	s := &KeyBasedSampler{
		rate:    rate,
		keyFunc: keyFunc,
		always:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		opt(s)
	}
	return s, nil
}

func (s *KeyBasedSampler) ShouldSample(ctx context.Context, sc SampleContext) Decision {
	key := s.extractKey(ctx, sc)

	// 设计决策: 空 key 回退到随机采样而非 fail-fast，因为采样器应保持弹性——
	// key 提取失败（如缺少租户标识）不应导致采样功能完全失效。
	// 随机采样保持了近似的采样率语义，只是失去了跨进程一致性。
	if key == "" {
		if s.onEmptyKey != nil {
			s.onEmptyKey()
		}
		return HeadDecision(s.randomFallback())
	}

	if s.isAlways(key) {
		return HeadDecision(true)
	}

	return HeadDecision(consistentAccept(key, s.rate))
}

// AllowKey 将 key 加入始终采样白名单
func (s *KeyBasedSampler) AllowKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.always[key] = struct{}{}
}

// DisallowKey 将 key 移出始终采样白名单
//
// 移除后该 key 回到基线哈希判定，不存在的 key 移除是无害的空操作。
func (s *KeyBasedSampler) DisallowKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.always, key)
}

// Rate 返回当前基线采样比率
func (s *KeyBasedSampler) Rate() float64 {
	return s.rate
}

func (s *KeyBasedSampler) extractKey(ctx context.Context, sc SampleContext) string {
	// nil ctx 与空 key 同等处理——保持弹性，不因上下文缺失而 panic
	if ctx == nil {
		return ""
	}
	return s.keyFunc(ctx, sc)
}

func (s *KeyBasedSampler) isAlways(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.always[key]
	return ok
}

func (s *KeyBasedSampler) randomFallback() bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	return randomFloat64() < s.rate
}

// consistentAccept 对 key 做确定性哈希判定
//
// 使用 xxhash 零分配确定性哈希：同一 key 在所有进程中产生相同哈希值，
// 这对分布式追踪采样至关重要——同一 trace_id 在所有服务中被一致采样。
//
// 设计决策: 此处使用 uint64/MaxUint64 归一化（与 randomFloat64 的 >>11 * floatScale 不同），
// 因为确定性哈希需要完整 uint64 值域的均匀映射。
// float64 精度有限，hashValue == MaxUint64 时 normalized 可能等于 1.0，
// 但 rate >= 1 有提前返回保护，normalized == 1.0 不会通过 normalized < rate，行为正确。
func consistentAccept(key string, rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	hashValue := xxhash.Sum64String(key)
	normalized := float64(hashValue) / float64(math.MaxUint64)
	return normalized < rate
}

// 确保实现了接口
var _ Sampler = (*KeyBasedSampler)(nil)
