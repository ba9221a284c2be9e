package xsampling

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func scWithKey(key string) SampleContext {
	return SampleContext{
		Operation: "test.op",
		Metadata:  map[string]string{"tenant_id": key},
	}
}

func TestKeyBasedSampler_Deterministic(t *testing.T) {
	ctx := context.Background()

	// 同一 key 在同一实例上多次判定结果必须一致
	sampler, err := NewKeyBasedSampler(0.5, MetadataKey("tenant_id"))
	if err != nil {
		t.Fatalf("NewKeyBasedSampler returned error: %v", err)
	}

	keys := []string{"tenant-a", "tenant-b", "tenant-c", "tenant-d", "tenant-e"}
	first := make(map[string]bool, len(keys))
	for _, key := range keys {
		first[key] = sampler.ShouldSample(ctx, scWithKey(key)).Sampled()
	}
	for i := 0; i < 100; i++ {
		for _, key := range keys {
			if sampler.ShouldSample(ctx, scWithKey(key)).Sampled() != first[key] {
				t.Fatalf("key %q decision changed across calls", key)
			}
		}
	}

	// 新实例（模拟进程重启）在相同配置下必须给出相同结论
	fresh, err := NewKeyBasedSampler(0.5, MetadataKey("tenant_id"))
	if err != nil {
		t.Fatalf("NewKeyBasedSampler returned error: %v", err)
	}
	for _, key := range keys {
		if fresh.ShouldSample(ctx, scWithKey(key)).Sampled() != first[key] {
			t.Errorf("key %q decision differs on a fresh instance", key)
		}
	}
}

func TestKeyBasedSampler_AlwaysKeys(t *testing.T) {
	ctx := context.Background()

	// rate=0 下白名单 key 仍然采样
	sampler, err := NewKeyBasedSampler(0.0, MetadataKey("tenant_id"),
		WithAlwaysKeys("tenant-vip"))
	if err != nil {
		t.Fatalf("NewKeyBasedSampler returned error: %v", err)
	}

	if !sampler.ShouldSample(ctx, scWithKey("tenant-vip")).Sampled() {
		t.Error("always key should be sampled even with rate=0")
	}
	if sampler.ShouldSample(ctx, scWithKey("tenant-x")).Sampled() {
		t.Error("non-always key should be rejected with rate=0")
	}

	// 运行时增删白名单
	sampler.AllowKey("tenant-x")
	if !sampler.ShouldSample(ctx, scWithKey("tenant-x")).Sampled() {
		t.Error("AllowKey should take effect immediately")
	}
	sampler.DisallowKey("tenant-x")
	if sampler.ShouldSample(ctx, scWithKey("tenant-x")).Sampled() {
		t.Error("DisallowKey should take effect immediately")
	}
	// 移除不存在的 key 是无害的空操作
	sampler.DisallowKey("tenant-missing")
}

func TestKeyBasedSampler_EmptyKeyFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("callback fires", func(t *testing.T) {
		var emptyCount atomic.Int64
		sampler, err := NewKeyBasedSampler(1.0, MetadataKey("tenant_id"),
			WithOnEmptyKey(func() { emptyCount.Add(1) }))
		if err != nil {
			t.Fatalf("NewKeyBasedSampler returned error: %v", err)
		}

		// 无 tenant_id 字段 → 空 key → 回调触发，rate=1 回退也必然放行
		d := sampler.ShouldSample(ctx, SampleContext{Operation: "test.op"})
		if !d.Sampled() {
			t.Error("empty key with rate=1 should sample via random fallback")
		}
		if emptyCount.Load() != 1 {
			t.Errorf("onEmptyKey fired %d times, want 1", emptyCount.Load())
		}
	})

	t.Run("rate=0 fallback rejects", func(t *testing.T) {
		sampler, _ := NewKeyBasedSampler(0.0, MetadataKey("tenant_id"))
		if sampler.ShouldSample(ctx, SampleContext{}).Sampled() {
			t.Error("empty key with rate=0 should never sample")
		}
	})

	t.Run("nil ctx treated as empty key", func(t *testing.T) {
		sampler, _ := NewKeyBasedSampler(1.0, MetadataKey("tenant_id"))
		if !sampler.ShouldSample(nil, scWithKey("tenant-a")).Sampled() { //nolint:staticcheck // 故意传 nil 验证弹性
			t.Error("nil ctx with rate=1 should sample via fallback")
		}
	})
}

func TestKeyBasedSampler_StatisticalRate(t *testing.T) {
	ctx := context.Background()
	sampler, err := NewKeyBasedSampler(0.3, MetadataKey("tenant_id"))
	if err != nil {
		t.Fatalf("NewKeyBasedSampler returned error: %v", err)
	}

	// 大量互异 key 的采样比例应接近 rate（xxhash 分布均匀）
	sampled := 0
	total := 10000
	for i := 0; i < total; i++ {
		key := "tenant-" + string(rune('a'+i%26)) + "-" + itoa(i)
		if sampler.ShouldSample(ctx, scWithKey(key)).Sampled() {
			sampled++
		}
	}
	rate := float64(sampled) / float64(total)
	if rate < 0.25 || rate > 0.35 {
		t.Errorf("sampled rate %f, want around 0.3", rate)
	}
}

// itoa 避免在热循环里引入 fmt
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestKeyBasedSampler_Validation(t *testing.T) {
	if _, err := NewKeyBasedSampler(1.5, MetadataKey("k")); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("invalid rate should return ErrInvalidRate, got %v", err)
	}
	if _, err := NewKeyBasedSampler(0.5, nil); !errors.Is(err, ErrNilKeyFunc) {
		t.Errorf("nil keyFunc should return ErrNilKeyFunc, got %v", err)
	}
	if _, err := NewKeyBasedSampler(0.5, MetadataKey("k"), nil); !errors.Is(err, ErrNilOption) {
		t.Errorf("nil option should return ErrNilOption, got %v", err)
	}
}

func TestOperationKey(t *testing.T) {
	sc := SampleContext{Operation: "orders.create"}
	if OperationKey(context.Background(), sc) != "orders.create" {
		t.Error("OperationKey should return the operation name")
	}
}
