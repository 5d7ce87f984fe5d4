package arena

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/Hakuto4838/skipkv/skiplist"
	"github.com/Hakuto4838/skipkv/skiplist/analyTool"
)

// fixedSource 永遠回傳同一個值，0 表示一直升層，1 表示永不升層
type fixedSource float64

func (s fixedSource) Float64() float64 { return float64(s) }

// scriptedSource 依序回傳給定的數值，用完後回傳 1（停止升層）
type scriptedSource struct {
	values []float64
	idx    int
}

func (s *scriptedSource) Float64() float64 {
	if s.idx >= len(s.values) {
		return 1
	}
	v := s.values[s.idx]
	s.idx++
	return v
}

func TestArenaSkipListInterface(t *testing.T) {
	var _ skiplist.SkipList[string, string] = (*ArenaSkipList[string, string])(nil)
	var _ skiplist.Analyable[int, float64] = (*ArenaSkipList[int, float64])(nil)
}

func assertLevelZeroSorted(t *testing.T, sl *ArenaSkipList[string, string]) {
	t.Helper()
	entries := sl.LevelEntries(0)
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key >= entries[i].Key {
			t.Fatalf("level 0 not strictly increasing: %q then %q", entries[i-1].Key, entries[i].Key)
		}
	}
	if err := analyTool.CheckStruct[string, string](sl); err != nil {
		t.Fatalf("CheckStruct: %v", err)
	}
}

func TestEmptySkipList(t *testing.T) {
	sl := NewArenaSkipList[string, string](42)

	if sl.Search("any") {
		t.Error("Search on empty list = true, want false")
	}
	if v, ok := sl.Get("any"); ok || v != "" {
		t.Errorf("Get on empty list = (%q, %v), want (\"\", false)", v, ok)
	}
	if sl.Delete("missing") {
		t.Error("Delete(missing) on empty list = true, want false")
	}
	if sl.Size() != 0 {
		t.Errorf("Size() = %d, want 0", sl.Size())
	}
	if sl.Level() != 0 {
		t.Errorf("Level() = %d, want 0", sl.Level())
	}
	assertLevelZeroSorted(t, sl)
}

func TestInsertUpdateScenario(t *testing.T) {
	sl := NewArenaSkipList[string, string](42)

	if r := sl.Insert("a", "1"); r != skiplist.Created {
		t.Errorf("Insert(a,1) = %v, want created", r)
	}
	if r := sl.Insert("b", "2"); r != skiplist.Created {
		t.Errorf("Insert(b,2) = %v, want created", r)
	}
	if r := sl.Insert("a", "3"); r != skiplist.Updated {
		t.Errorf("Insert(a,3) = %v, want updated", r)
	}

	if sl.Size() != 2 {
		t.Errorf("Size() = %d, want 2", sl.Size())
	}
	if v, ok := sl.Get("a"); !ok || v != "3" {
		t.Errorf("Get(a) = (%q, %v), want (\"3\", true)", v, ok)
	}
	if v, ok := sl.Get("b"); !ok || v != "2" {
		t.Errorf("Get(b) = (%q, %v), want (\"2\", true)", v, ok)
	}
	assertLevelZeroSorted(t, sl)
}

func TestGetDistinguishesEmptyValue(t *testing.T) {
	sl := NewArenaSkipList[string, string](1)
	sl.Insert("empty", "")

	v, ok := sl.Get("empty")
	if !ok || v != "" {
		t.Errorf("Get(empty) = (%q, %v), want (\"\", true)", v, ok)
	}
	if _, ok := sl.Get("absent"); ok {
		t.Error("Get(absent) reported found")
	}
}

func TestReinsertKeepsShape(t *testing.T) {
	sl := NewArenaSkipList[int, int](7)
	for i := 0; i < 200; i++ {
		sl.Insert(i, i)
	}
	before := analyTool.CountLevel[int, int](sl)
	level := sl.Level()

	for i := 0; i < 200; i++ {
		if r := sl.Insert(i, -i); r != skiplist.Updated {
			t.Fatalf("Insert(%d) again = %v, want updated", i, r)
		}
	}

	after := analyTool.CountLevel[int, int](sl)
	if sl.Size() != 200 || sl.Level() != level {
		t.Fatalf("size/level changed: size=%d level=%d (was %d)", sl.Size(), sl.Level(), level)
	}
	for h := range before {
		if before[h] != after[h] {
			t.Errorf("level %d count changed from %d to %d", h, before[h], after[h])
		}
	}
	if v, _ := sl.Get(10); v != -10 {
		t.Errorf("Get(10) = %d, want -10", v)
	}
}

func TestDeleteFromFifty(t *testing.T) {
	sl := NewArenaSkipList[string, string](42)
	for i := 0; i < 50; i++ {
		sl.Insert(fmt.Sprintf("k%02d", i), fmt.Sprintf("v%02d", i))
	}

	if !sl.Delete("k25") {
		t.Fatal("Delete(k25) = false, want true")
	}
	if sl.Search("k25") {
		t.Error("Search(k25) = true after delete")
	}
	if sl.Size() != 49 {
		t.Errorf("Size() = %d, want 49", sl.Size())
	}
	assertLevelZeroSorted(t, sl)

	for i := 0; i < 50; i++ {
		k := fmt.Sprintf("k%02d", i)
		if i == 25 {
			continue
		}
		if !sl.Search(k) {
			t.Errorf("Search(%s) = false, want true", k)
		}
	}
}

func TestDeleteMissingKeepsCount(t *testing.T) {
	sl := NewArenaSkipList[string, string](42)
	if sl.Delete("missing") {
		t.Fatal("Delete(missing) = true on empty list")
	}
	if sl.Size() != 0 {
		t.Fatalf("Size() = %d after deleting missing key, want 0", sl.Size())
	}

	sl.Insert("x", "1")
	if sl.Delete("y") {
		t.Fatal("Delete(y) = true, want false")
	}
	if sl.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", sl.Size())
	}
}

// 節點的最高層等於跳表目前最高層時，刪除後不能留下懸空的上層連結
func TestDeleteTopLevelNode(t *testing.T) {
	// 依序：a 層級 0，b 層級 3，c 層級 1
	src := &scriptedSource{values: []float64{
		0.9,
		0.1, 0.1, 0.1, 0.9,
		0.1, 0.9,
	}}
	sl := NewArenaSkipList[string, int](0, WithSource(src))
	sl.Insert("a", 1)
	sl.Insert("b", 2)
	sl.Insert("c", 3)

	if sl.Level() != 3 {
		t.Fatalf("Level() = %d, want 3", sl.Level())
	}
	if !sl.Delete("b") {
		t.Fatal("Delete(b) = false")
	}
	if sl.Level() != 1 {
		t.Errorf("Level() = %d after deleting the tallest node, want 1", sl.Level())
	}
	for h := 2; h <= skiplist.MaxLevel; h++ {
		if n := len(sl.LevelEntries(h)); n != 0 {
			t.Errorf("level %d still has %d nodes", h, n)
		}
	}
	if err := analyTool.CheckStruct[string, int](sl); err != nil {
		t.Fatalf("CheckStruct: %v", err)
	}

	sl.Delete("a")
	sl.Delete("c")
	if sl.Level() != 0 || sl.Size() != 0 {
		t.Errorf("after deleting all: level=%d size=%d, want 0 0", sl.Level(), sl.Size())
	}
}

func TestMaxLevelCap(t *testing.T) {
	sl := NewArenaSkipList[int, int](0, WithSource(fixedSource(0)), WithMaxLevel(4))
	for i := 0; i < 10; i++ {
		sl.Insert(i, i)
	}
	if sl.Level() != 4 {
		t.Errorf("Level() = %d, want 4", sl.Level())
	}
	for _, e := range sl.LevelEntries(4) {
		if e.Level != 4 {
			t.Errorf("node %d level = %d, want 4", e.Key, e.Level)
		}
	}

	full := NewArenaSkipList[int, int](0, WithSource(fixedSource(0)))
	full.Insert(1, 1)
	if full.Level() != skiplist.MaxLevel {
		t.Errorf("Level() = %d, want hard cap %d", full.Level(), skiplist.MaxLevel)
	}
}

func TestSlotReuse(t *testing.T) {
	sl := NewArenaSkipList[int, int](3)
	for i := 0; i < 100; i++ {
		sl.Insert(i, i)
	}
	grown := len(sl.arena.nodes)
	for i := 0; i < 100; i += 2 {
		sl.Delete(i)
	}
	for i := 1000; i < 1050; i++ {
		sl.Insert(i, i)
	}
	if len(sl.arena.nodes) != grown {
		t.Errorf("arena grew from %d to %d, freed slots not reused", grown, len(sl.arena.nodes))
	}
	if err := analyTool.CheckStruct[int, int](sl); err != nil {
		t.Fatalf("CheckStruct: %v", err)
	}
}

func TestClear(t *testing.T) {
	sl := NewArenaSkipList[int, string](3)
	for i := 0; i < 64; i++ {
		sl.Insert(i, "x")
	}
	sl.Clear()
	if sl.Size() != 0 || sl.Level() != 0 || sl.Search(1) {
		t.Fatalf("Clear left size=%d level=%d", sl.Size(), sl.Level())
	}
	sl.Insert(5, "y")
	if v, ok := sl.Get(5); !ok || v != "y" {
		t.Errorf("Get(5) after Clear = (%q, %v)", v, ok)
	}
}

func TestEachStopsEarly(t *testing.T) {
	sl := NewArenaSkipList[int, int](3)
	for _, k := range []int{5, 1, 4, 2, 3} {
		sl.Insert(k, k*10)
	}
	var seen []int
	sl.Each(func(k, v int) bool {
		seen = append(seen, k)
		return k < 3
	})
	if fmt.Sprint(seen) != "[1 2 3]" {
		t.Errorf("Each visited %v, want [1 2 3]", seen)
	}
}

// 隨機操作與 map 對照
func TestRandomOpsAgainstMap(t *testing.T) {
	sl := NewArenaSkipList[int, int](99)
	model := map[int]int{}
	r := rand.New(rand.NewSource(2024))

	for i := 0; i < 5000; i++ {
		key := r.Intn(300)
		switch r.Intn(3) {
		case 0:
			_, existed := model[key]
			res := sl.Insert(key, i)
			if existed != (res == skiplist.Updated) {
				t.Fatalf("Insert(%d) = %v, existed=%v", key, res, existed)
			}
			model[key] = i
		case 1:
			_, existed := model[key]
			if got := sl.Delete(key); got != existed {
				t.Fatalf("Delete(%d) = %v, want %v", key, got, existed)
			}
			delete(model, key)
		case 2:
			want, existed := model[key]
			got, ok := sl.Get(key)
			if ok != existed || (ok && got != want) {
				t.Fatalf("Get(%d) = (%d, %v), want (%d, %v)", key, got, ok, want, existed)
			}
		}
	}

	if sl.Size() != len(model) {
		t.Fatalf("Size() = %d, want %d", sl.Size(), len(model))
	}
	keys := make([]int, 0, len(model))
	for k := range model {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	entries := sl.LevelEntries(0)
	for i, k := range keys {
		if entries[i].Key != k || entries[i].Value != model[k] {
			t.Fatalf("entry %d = %v, want %d:%d", i, entries[i], k, model[k])
		}
	}
	if err := analyTool.CheckStruct[int, int](sl); err != nil {
		t.Fatalf("CheckStruct: %v", err)
	}
}

// 多個 goroutine 各自插入不重疊的 key，結束後不能有遺失或重複
func TestConcurrentDisjointInserts(t *testing.T) {
	sl := NewArenaSkipList[string, string](42)
	const numWorkers = 10
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				k := fmt.Sprintf("w%02d-%05d", worker, i)
				if r := sl.Insert(k, k); r != skiplist.Created {
					t.Errorf("Insert(%s) = %v", k, r)
				}
			}
		}(w)
	}
	wg.Wait()

	if sl.Size() != numWorkers*perWorker {
		t.Fatalf("Size() = %d, want %d", sl.Size(), numWorkers*perWorker)
	}
	for w := 0; w < numWorkers; w++ {
		for i := 0; i < perWorker; i++ {
			k := fmt.Sprintf("w%02d-%05d", w, i)
			if !sl.Search(k) {
				t.Fatalf("Search(%s) = false after concurrent inserts", k)
			}
		}
	}
	assertLevelZeroSorted(t, sl)
}

// 讀者與寫者同時進行；讀到的值只能是曾經寫入過的值
func TestConcurrentReadersWriters(t *testing.T) {
	sl := NewArenaSkipList[int, int](5)
	const keyRange = 256
	const writers = 4
	const readers = 4
	const ops = 2000

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id)))
			for i := 0; i < ops; i++ {
				k := r.Intn(keyRange)
				if r.Intn(3) == 0 {
					sl.Delete(k)
				} else {
					sl.Insert(k, k*7)
				}
			}
		}(w)
	}
	for rd := 0; rd < readers; rd++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(100 + id)))
			for i := 0; i < ops; i++ {
				k := r.Intn(keyRange)
				if v, ok := sl.Get(k); ok && v != k*7 {
					t.Errorf("Get(%d) = %d, want %d", k, v, k*7)
					return
				}
				sl.LevelEntries(r.Intn(4))
			}
		}(rd)
	}
	wg.Wait()

	if err := analyTool.CheckStruct[int, int](sl); err != nil {
		t.Fatalf("CheckStruct: %v", err)
	}
}
