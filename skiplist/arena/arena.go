package arena

import (
	"cmp"
	"math/rand"
	"sync"

	"github.com/Hakuto4838/skipkv/skiplist"
)

// ArenaSkipList 是以 arena + handle 實作的跳表
//
// 所有節點放在同一個 slice 中，forward link 存的是索引而非指標，
// 一個節點可以同時被多個前驅的 link 引用。
//
// 併發模型：整個結構由一把 RWMutex 保護。Insert / Delete / Clear 取寫鎖，
// 其他讀取操作取讀鎖，因此讀者不會看到只接了一半的節點。
type ArenaSkipList[K cmp.Ordered, V any] struct {
	mu    sync.RWMutex
	arena nodeArena[K, V]
	gen   *skiplist.LevelGenerator
	level int // 目前最高的有效層
	size  int
}

type options struct {
	src      skiplist.Source
	maxLevel int
}

// Option 調整 ArenaSkipList 的建構參數
type Option func(*options)

// WithSource 指定升層用的隨機來源，會取代 seed
func WithSource(src skiplist.Source) Option {
	return func(o *options) { o.src = src }
}

// WithMaxLevel 設定層級上限，不可超過 skiplist.MaxLevel
func WithMaxLevel(level int) Option {
	return func(o *options) { o.maxLevel = level }
}

// NewArenaSkipList 建立空的跳表，預設以 seed 建立 math/rand 來源
func NewArenaSkipList[K cmp.Ordered, V any](seed int64, opts ...Option) *ArenaSkipList[K, V] {
	o := options{maxLevel: skiplist.MaxLevel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rand.New(rand.NewSource(seed))
	}
	return &ArenaSkipList[K, V]{
		arena: newNodeArena[K, V](),
		gen:   skiplist.NewLevelGenerator(o.src, o.maxLevel),
	}
}

var _ skiplist.Analyable[string, string] = (*ArenaSkipList[string, string])(nil)

// descend 從目前最高層往下走，每層前進到最後一個 key < target 的節點。
// update 不為 nil 時記錄每層的前驅（update trail）。回傳第 0 層的候選節點。
func (sl *ArenaSkipList[K, V]) descend(key K, update *[skiplist.MaxLevel + 1]handle) handle {
	cur := header
	for h := sl.level; h >= 0; h-- {
		for {
			nx := sl.arena.at(cur).next[h]
			if nx == none || !cmp.Less(sl.arena.at(nx).key, key) {
				break
			}
			cur = nx
		}
		if update != nil {
			update[h] = cur
		}
	}
	return sl.arena.at(cur).next[0]
}

func (sl *ArenaSkipList[K, V]) matches(h handle, key K) bool {
	return h != none && cmp.Compare(sl.arena.at(h).key, key) == 0
}

// Insert 插入 key/value；key 已存在時只覆寫 value 並回傳 Updated
func (sl *ArenaSkipList[K, V]) Insert(key K, value V) skiplist.InsertResult {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	var update [skiplist.MaxLevel + 1]handle
	cand := sl.descend(key, &update)
	if sl.matches(cand, key) {
		sl.arena.at(cand).value = value
		return skiplist.Updated
	}

	lvl := sl.gen.Next()
	if lvl > sl.level {
		// 新的層級上還沒有任何節點，前驅就是 header
		for h := sl.level + 1; h <= lvl; h++ {
			update[h] = header
		}
		sl.level = lvl
	}

	// alloc 可能讓 slice 重新配置，之後一律重新取節點
	nh := sl.arena.alloc(key, value, lvl)
	for h := 0; h <= lvl; h++ {
		pred := sl.arena.at(update[h])
		sl.arena.at(nh).next[h] = pred.next[h]
		pred.next[h] = nh
	}
	sl.size++
	return skiplist.Created
}

// Search 判斷 key 是否存在
func (sl *ArenaSkipList[K, V]) Search(key K) bool {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.matches(sl.descend(key, nil), key)
}

// Get 取得 key 對應的 value
func (sl *ArenaSkipList[K, V]) Get(key K) (V, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	cand := sl.descend(key, nil)
	if !sl.matches(cand, key) {
		var zero V
		return zero, false
	}
	return sl.arena.at(cand).value, true
}

// Delete 刪除 key，只有真的移除節點時才回傳 true 並減少計數
func (sl *ArenaSkipList[K, V]) Delete(key K) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	var update [skiplist.MaxLevel + 1]handle
	cand := sl.descend(key, &update)
	if !sl.matches(cand, key) {
		return false
	}

	target := sl.arena.at(cand)
	for h := 0; h <= target.level(); h++ {
		pred := sl.arena.at(update[h])
		if pred.next[h] != cand {
			continue
		}
		pred.next[h] = target.next[h]
	}
	sl.arena.release(cand)

	head := sl.arena.at(header)
	for sl.level > 0 && head.next[sl.level] == none {
		sl.level--
	}
	sl.size--
	return true
}

// Size 回傳目前節點數
func (sl *ArenaSkipList[K, V]) Size() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.size
}

// Level 回傳目前最高的有效層
func (sl *ArenaSkipList[K, V]) Level() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.level
}

// Clear 移除所有節點，header 保留
func (sl *ArenaSkipList[K, V]) Clear() {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.arena.reset()
	sl.level = 0
	sl.size = 0
}

func (sl *ArenaSkipList[K, V]) GetMaxStats() (int, int) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.size, sl.level
}

// LevelEntries 依序回傳第 level 層上的節點；超出範圍時回傳 nil
func (sl *ArenaSkipList[K, V]) LevelEntries(level int) []skiplist.Entry[K, V] {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if level < 0 || level > skiplist.MaxLevel {
		return nil
	}
	var out []skiplist.Entry[K, V]
	for cur := sl.arena.at(header).next[level]; cur != none; {
		nd := sl.arena.at(cur)
		out = append(out, skiplist.Entry[K, V]{Key: nd.key, Value: nd.value, Level: nd.level()})
		cur = nd.next[level]
	}
	return out
}

// Each 依 key 升冪走訪所有資料。走訪的是呼叫當下的快照，
// fn 執行時不持有鎖，可以安全地回呼跳表。
func (sl *ArenaSkipList[K, V]) Each(fn func(key K, value V) bool) {
	for _, e := range sl.LevelEntries(0) {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}
