package simulator

import (
	"math/rand"
	"time"
)

// Rand 模拟器使用的随机源，注入后可复现
type Rand interface {
	Float64() float64
}

// NewRand 创建随机源，seed 为 0 时使用当前时间
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Weighted 带权重的候选项
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// WeightedChoice 按权重随机选择
// r 取 [0, total)，按表顺序依次减去权重，第一个使 r <= 0 的项被选中；
// 浮点误差导致没有命中时返回第一项
func WeightedChoice[T any](rnd Rand, items []Weighted[T]) T {
	var zero T
	if len(items) == 0 {
		return zero
	}

	total := 0.0
	for _, item := range items {
		total += item.Weight
	}

	r := rnd.Float64() * total
	for _, item := range items {
		r -= item.Weight
		if r <= 0 {
			return item.Value
		}
	}
	return items[0].Value
}

// uniform 在 [lo, hi) 内均匀取值，区间为空时返回中点
func uniform(rnd Rand, lo, hi float64) float64 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + rnd.Float64()*(hi-lo)
}

// coin 以概率 p 返回 true
func coin(rnd Rand, p float64) bool {
	return rnd.Float64() < p
}
