package datastream

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"
)

// Distribution 名稱
const (
	Uniform = "uniform"
	Zipf    = "zipf"
)

// KeyPicker 從固定的 key 池中依某種分布挑選 key
type KeyPicker interface {
	Pick() string
	// KeyMap 回傳每個 key 被挑中的理論機率
	KeyMap() map[string]float64
}

type uniformPicker struct {
	keys []string
	rng  *randv2.Rand
}

func (u *uniformPicker) Pick() string {
	return u.keys[u.rng.IntN(len(u.keys))]
}

func (u *uniformPicker) KeyMap() map[string]float64 {
	m := make(map[string]float64, len(u.keys))
	for _, k := range u.keys {
		m[k] += 1.0 / float64(len(u.keys))
	}
	return m
}

// zipfPicker 先把 key 池洗牌當作 rank，熱門的 key 才不會都擠在同一區間
type zipfPicker struct {
	ranked []string
	zipf   *randv2.Zipf
	s, v   float64
}

func (z *zipfPicker) Pick() string {
	return z.ranked[z.zipf.Uint64()]
}

func (z *zipfPicker) KeyMap() map[string]float64 {
	w := make([]float64, len(z.ranked))
	var sum float64
	for i := range w {
		w[i] = 1.0 / math.Pow(z.v+float64(i), z.s)
		sum += w[i]
	}
	m := make(map[string]float64, len(w))
	for i, k := range z.ranked {
		m[k] += w[i] / sum
	}
	return m
}

// NewKeyPicker 建立挑選器。dist 為 "uniform" 或 "zipf"；zipf 需滿足 s > 1、v >= 1。
func NewKeyPicker(dist string, keys []string, s, v float64, seed uint64) (KeyPicker, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("datastream: empty key pool")
	}
	rng := randv2.New(randv2.NewPCG(seed, 0))
	switch dist {
	case Uniform, "":
		return &uniformPicker{keys: keys, rng: rng}, nil
	case Zipf:
		if s <= 1.0 || v < 1.0 {
			return nil, fmt.Errorf("datastream: invalid zipf params: s=%v must >1, v=%v must >=1", s, v)
		}
		ranked := make([]string, len(keys))
		copy(ranked, keys)
		rng.Shuffle(len(ranked), func(i, j int) { ranked[i], ranked[j] = ranked[j], ranked[i] })
		return &zipfPicker{
			ranked: ranked,
			zipf:   randv2.NewZipf(rng, s, v, uint64(len(ranked)-1)),
			s:      s,
			v:      v,
		}, nil
	default:
		return nil, fmt.Errorf("datastream: unknown distribution %q", dist)
	}
}

// Entropy 計算分布的 Shannon entropy（bits）
func Entropy(dist map[string]float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
