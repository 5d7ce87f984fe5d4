package skiplist

import "math/rand"

// Source 是升層擲硬幣用的隨機來源，*rand.Rand 即滿足此介面
type Source interface {
	Float64() float64
}

// LevelGenerator 以擲硬幣的方式決定新節點的層級
//
// 從第 0 層開始，每次有 Probability 的機率再升一層，直到擲出「停」或到達上限。
// 每次抽取彼此獨立，與跳表目前大小無關。LevelGenerator 不是 goroutine safe，
// 呼叫端需自行串行化（跳表在寫鎖內呼叫）。
type LevelGenerator struct {
	src      Source
	maxLevel int
}

// NewLevelGenerator 建立一個使用 src 的產生器，maxLevel 超出 [0, MaxLevel] 時會被夾住
func NewLevelGenerator(src Source, maxLevel int) *LevelGenerator {
	if maxLevel < 0 {
		maxLevel = 0
	}
	if maxLevel > MaxLevel {
		maxLevel = MaxLevel
	}
	return &LevelGenerator{src: src, maxLevel: maxLevel}
}

// NewSeededLevelGenerator 以 seed 建立 math/rand 來源
func NewSeededLevelGenerator(seed int64, maxLevel int) *LevelGenerator {
	return NewLevelGenerator(rand.New(rand.NewSource(seed)), maxLevel)
}

// MaxLevel 回傳此產生器的層級上限
func (g *LevelGenerator) MaxLevel() int {
	return g.maxLevel
}

// Next 抽出一個層級，範圍 0..MaxLevel()
func (g *LevelGenerator) Next() int {
	lvl := 0
	for lvl < g.maxLevel && g.src.Float64() < Probability {
		lvl++
	}
	return lvl
}
