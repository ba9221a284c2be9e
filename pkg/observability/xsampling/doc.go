// Package xsampling 提供分布式追踪的采样决策引擎。
//
// xsampling 遵循策略模式设计，提供统一的 Sampler 接口和多种采样策略实现。
// 所有策略在操作开始前通过 ShouldSample 给出决策令牌（Decision）；
// 尾采样策略（TailSampler）在操作完成后通过 ShouldKeep 给出最终裁决。
//
// # 头采样策略
//
//   - Always(): 全采样，总是放行
//   - Never(): 不采样，总是拒绝
//   - NewRateSampler(rate): 固定比率随机采样
//   - NewCountSampler(n): 计数采样（每 n 个采样 1 个）
//   - NewKeyBasedSampler(rate, keyFunc): 基于 key 的一致性采样（xxhash），
//     附带运行时可变的始终采样 key 白名单
//   - NewFlagSampler(rate, flagsFunc): 基于特性开关的采样，
//     命中白名单开关无条件采样
//   - NewCompositeSampler(mode, ...): 组合多个头采样器（AND/OR 逻辑）
//
// # 尾采样策略
//
// NewAdaptiveSampler 是唯一的尾采样策略：头阶段总是放行（span 照常创建），
// 操作完成后按"错误 → 慢操作 → 已采样上游链接 → 基线"的严格优先级裁决保留与否。
//
// # Decision 令牌
//
// ShouldSample 返回的 Decision 是本次调用的决策令牌，调用方在操作完成后
// 将同一个令牌传给 ShouldKeep。尾采样所需的基线决策封存在令牌内部，
// 采样器不维护任何按调用键控的共享状态，也就不存在条目泄漏问题。
//
// # KeyBasedSampler 与跨进程一致性
//
// KeyBasedSampler 使用 xxhash（github.com/cespare/xxhash/v2）作为哈希算法，
// 这是一个确定性哈希算法，同一 key 在所有进程中产生相同的哈希值：
//   - 同一 trace_id 在所有服务中被一致地采样或丢弃
//   - 不同服务实例之间的采样决策保持一致
//   - 服务重启后采样行为不变
//
// # 并发安全
//
// 所有采样器都是并发安全的，可以在多个 goroutine 中同时使用。
// KeyBasedSampler/FlagSampler 的白名单通过读写锁保护，
// 采样热路径只持有读锁。
//
// # 性能
//
// 采样决策经过优化，热路径无 I/O、分配极少。
// 随机数源为 crypto/rand（约 50-100ns/op），每次操作至多抽取一两次。
package xsampling
