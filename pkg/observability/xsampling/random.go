package xsampling

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// 浮点数转换常量
const (
	floatBits  = 53
	floatScale = 1.0 / (1 << floatBits)
)

// randomFloat64 返回 [0.0, 1.0) 范围内的随机浮点数
//
// 使用 crypto/rand 确保高质量随机数。性能约 ~50-100ns/op，
// 采样决策每次调用至多发生一两次，完全可接受。
//
// 设计决策 - panic 行为说明：
// crypto/rand.Read 失败表示操作系统熵源不可用（如 /dev/urandom 无法访问），
// 这是极其罕见的系统级故障。此时继续运行会产生不可预测的采样行为，
// 因此选择 panic 作为快速失败策略，便于问题定位。
func randomFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("xsampling: crypto/rand.Read failed: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) * floatScale
}

// validateRate 校验采样比率是否在 [0.0, 1.0] 范围内
//
// NaN 与任何比较都为 false，需要显式拒绝。
func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}
