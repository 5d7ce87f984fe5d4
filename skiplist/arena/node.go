package arena

import (
	"cmp"

	"github.com/Hakuto4838/skipkv/skiplist"
)

// handle 是節點在 arena 中的索引，forward link 只存 handle 不存指標
type handle int32

const (
	none   handle = -1 // 沒有後繼節點
	header handle = 0  // header 固定放在 arena 第 0 格
)

type arenaNode[K cmp.Ordered, V any] struct {
	key   K
	value V
	next  []handle // 長度為 level+1，第 i 格是第 i 層的後繼
}

func (n *arenaNode[K, V]) level() int {
	return len(n.next) - 1
}

// nodeArena 持有所有節點，刪除後的格子放回 free list 重複使用
type nodeArena[K cmp.Ordered, V any] struct {
	nodes []arenaNode[K, V]
	free  []handle
}

func newNodeArena[K cmp.Ordered, V any]() nodeArena[K, V] {
	a := nodeArena[K, V]{nodes: make([]arenaNode[K, V], 1, 64)}
	a.nodes[header].next = newLinks(skiplist.MaxLevel)
	return a
}

func newLinks(level int) []handle {
	links := make([]handle, level+1)
	for i := range links {
		links[i] = none
	}
	return links
}

func (a *nodeArena[K, V]) at(h handle) *arenaNode[K, V] {
	return &a.nodes[h]
}

// alloc 建立一個 level 層的節點並回傳其 handle
func (a *nodeArena[K, V]) alloc(key K, value V, level int) handle {
	var h handle
	if n := len(a.free); n > 0 {
		h = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.nodes = append(a.nodes, arenaNode[K, V]{})
		h = handle(len(a.nodes) - 1)
	}
	nd := a.at(h)
	nd.key = key
	nd.value = value
	nd.next = newLinks(level)
	return h
}

// release 回收一個已經從所有層解除連結的節點
func (a *nodeArena[K, V]) release(h handle) {
	if h == header || h == none {
		return
	}
	a.nodes[h] = arenaNode[K, V]{}
	a.free = append(a.free, h)
}

// reset 清空所有節點，只留下 header
func (a *nodeArena[K, V]) reset() {
	*a = newNodeArena[K, V]()
}
