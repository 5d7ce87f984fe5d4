package datastream

import (
	randv2 "math/rand/v2"
)

// Alphabet 隨機字串使用的字元集
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultKeyLength 預設的 key 長度
const DefaultKeyLength = 10

// AlnumGenerator 產生固定長度的英數字串。非並行安全，每個 goroutine 各自建立一個。
type AlnumGenerator struct {
	length int
	rng    *randv2.Rand
	buf    []byte
}

// NewAlnumGenerator length <= 0 時使用 DefaultKeyLength
func NewAlnumGenerator(length int, seed uint64) *AlnumGenerator {
	if length <= 0 {
		length = DefaultKeyLength
	}
	return &AlnumGenerator{
		length: length,
		rng:    randv2.New(randv2.NewPCG(seed, 0)),
		buf:    make([]byte, length),
	}
}

func (g *AlnumGenerator) Next() string {
	for i := range g.buf {
		g.buf[i] = Alphabet[g.rng.IntN(len(Alphabet))]
	}
	return string(g.buf)
}

// Unique 產生 n 個互不相同的字串，n 超過可能的組合數時只回傳組合數個
func (g *AlnumGenerator) Unique(n int) []string {
	space := 1
	for i := 0; i < g.length && space < n; i++ {
		space *= len(Alphabet)
	}
	n = min(n, space)
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		s := g.Next()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
