// Package basic 是以指標串接節點的跳表，作為 arena 版本的對照組
package basic

import (
	"cmp"
	"sync"

	"github.com/Hakuto4838/skipkv/skiplist"
)

type basicNode[K cmp.Ordered, V any] struct {
	key   K
	value V
	next  []*basicNode[K, V]
}

func newNode[K cmp.Ordered, V any](key K, value V, level int) *basicNode[K, V] {
	return &basicNode[K, V]{
		key:   key,
		value: value,
		next:  make([]*basicNode[K, V], level+1),
	}
}

// BasicSkipList 每個節點各自配置，link 為指標。整個結構由一把 Mutex 保護。
type BasicSkipList[K cmp.Ordered, V any] struct {
	mu    sync.Mutex
	head  *basicNode[K, V]
	level int
	gen   *skiplist.LevelGenerator
	size  int
}

func NewBasicSkipList[K cmp.Ordered, V any](seed int64) *BasicSkipList[K, V] {
	var zk K
	var zv V
	return &BasicSkipList[K, V]{
		head: newNode(zk, zv, skiplist.MaxLevel),
		gen:  skiplist.NewSeededLevelGenerator(seed, skiplist.MaxLevel),
	}
}

var _ skiplist.Analyable[int, int] = (*BasicSkipList[int, int])(nil)

func (sl *BasicSkipList[K, V]) find(key K) *basicNode[K, V] {
	cur := sl.head
	for h := sl.level; h >= 0; h-- {
		for cur.next[h] != nil && cur.next[h].key < key {
			cur = cur.next[h]
		}
		if cur.next[h] != nil && cur.next[h].key == key {
			return cur.next[h]
		}
	}
	return nil
}

func (sl *BasicSkipList[K, V]) Insert(key K, value V) skiplist.InsertResult {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if cur := sl.find(key); cur != nil {
		cur.value = value
		return skiplist.Updated
	}
	lvl := sl.gen.Next()
	node := newNode(key, value, lvl)
	sl.level = max(sl.level, lvl)
	curr := sl.head
	for h := sl.level; h >= 0; h-- {
		for curr.next[h] != nil && curr.next[h].key < key {
			curr = curr.next[h]
		}
		if h <= lvl {
			node.next[h] = curr.next[h]
			curr.next[h] = node
		}
	}
	sl.size++
	return skiplist.Created
}

func (sl *BasicSkipList[K, V]) Get(key K) (V, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if cur := sl.find(key); cur != nil {
		return cur.value, true
	}
	var zero V
	return zero, false
}

func (sl *BasicSkipList[K, V]) Search(key K) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.find(key) != nil
}

func (sl *BasicSkipList[K, V]) Delete(key K) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	found := false
	curr := sl.head
	for h := sl.level; h >= 0; h-- {
		for curr.next[h] != nil && curr.next[h].key < key {
			curr = curr.next[h]
		}
		if curr.next[h] != nil && curr.next[h].key == key {
			curr.next[h] = curr.next[h].next[h]
			found = true
		}
	}
	if !found {
		return false
	}
	for sl.level > 0 && sl.head.next[sl.level] == nil {
		sl.level--
	}
	sl.size--
	return true
}

func (sl *BasicSkipList[K, V]) Size() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.size
}

func (sl *BasicSkipList[K, V]) GetMaxStats() (int, int) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.size, sl.level
}

func (sl *BasicSkipList[K, V]) LevelEntries(level int) []skiplist.Entry[K, V] {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if level < 0 || level > skiplist.MaxLevel {
		return nil
	}
	var out []skiplist.Entry[K, V]
	for nd := sl.head.next[level]; nd != nil; nd = nd.next[level] {
		out = append(out, skiplist.Entry[K, V]{Key: nd.key, Value: nd.value, Level: len(nd.next) - 1})
	}
	return out
}

func (sl *BasicSkipList[K, V]) Each(fn func(key K, value V) bool) {
	for _, e := range sl.LevelEntries(0) {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}
