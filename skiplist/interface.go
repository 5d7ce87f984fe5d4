package skiplist

import "cmp"

const (
	// MaxLevel 跳表層級的硬上限，header 共有 MaxLevel+1 條 forward link
	MaxLevel = 32
	// Probability 節點升一層的機率
	Probability = 0.5
)

// InsertResult 表示 Insert 的結果
type InsertResult uint8

const (
	// Created 新增了一個節點
	Created InsertResult = iota
	// Updated key 已存在，只覆寫 value
	Updated
)

func (r InsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

type SkipList[K cmp.Ordered, V any] interface {
	Insert(key K, value V) InsertResult
	Search(key K) bool
	Get(key K) (V, bool)
	Delete(key K) bool
	Size() int
}

// Entry 為某一層上看到的一筆資料，Level 為該節點的最高層
type Entry[K cmp.Ordered, V any] struct {
	Key   K
	Value V
	Level int
}

// Analyable 提供分析與診斷功能的介面
type Analyable[K cmp.Ordered, V any] interface {
	SkipList[K, V]
	// GetMaxStats 獲取節點數和目前最高層級
	GetMaxStats() (maxNodes int, maxLevel int)
	// LevelEntries 依序回傳第 level 層上的所有節點
	LevelEntries(level int) []Entry[K, V]
	// Each 依 key 升冪走訪第 0 層，fn 回傳 false 時停止
	Each(fn func(key K, value V) bool)
}
