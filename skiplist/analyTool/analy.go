package analyTool

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Hakuto4838/skipkv/skiplist"
	"github.com/olekukonko/tablewriter"
)

// ErrBrokenStructure 表示跳表違反了排序或塔狀性質
var ErrBrokenStructure = errors.New("skiplist structure is broken")

// FindStep 模擬一次搜尋，計算找到 key 的總步數和各層步數。
// 水平前進一次算一步，往下一層也算一步。
func FindStep[K cmp.Ordered, V any](sl skiplist.Analyable[K, V], key K) (step int, level []int) {
	_, maxLevel := sl.GetMaxStats()
	stepsPerLevel := make([]int, maxLevel+1)

	// pos 為目前所在節點的 key，started=false 代表還在 header
	var pos K
	started := false
	total := 0

	for h := maxLevel; h >= 0; h-- {
		levelSteps := 0
		for _, e := range sl.LevelEntries(h) {
			if started && !cmp.Less(pos, e.Key) {
				continue
			}
			if !cmp.Less(e.Key, key) {
				break
			}
			pos = e.Key
			started = true
			levelSteps++
		}
		stepsPerLevel[h] = levelSteps
		total += levelSteps
		if h > 0 {
			total++ // 往下移動
		}
	}
	return total, stepsPerLevel
}

// AverageSearchSteps 計算 keys 的平均搜尋步數
func AverageSearchSteps[K cmp.Ordered, V any](sl skiplist.Analyable[K, V], keys []K) float64 {
	if len(keys) == 0 {
		return 0
	}
	sum := 0
	for _, k := range keys {
		s, _ := FindStep(sl, k)
		sum += s
	}
	return float64(sum) / float64(len(keys))
}

// CheckStruct 檢查跳表的結構是否正確：
//   - 每一層 key 嚴格遞增
//   - 第 i 層的節點也出現在第 i-1 層，且節點自身層級 >= i
//   - 第 0 層的節點數等於 size
//   - 目前最高層以上的 header link 皆為空
func CheckStruct[K cmp.Ordered, V any](sl skiplist.Analyable[K, V]) error {
	size, maxLevel := sl.GetMaxStats()
	if maxLevel < 0 || maxLevel > skiplist.MaxLevel {
		return fmt.Errorf("%w: level %d out of range", ErrBrokenStructure, maxLevel)
	}

	var below map[K]int
	for h := 0; h <= maxLevel; h++ {
		entries := sl.LevelEntries(h)
		cur := make(map[K]int, len(entries))
		for i, e := range entries {
			if i > 0 && !cmp.Less(entries[i-1].Key, e.Key) {
				return fmt.Errorf("%w: level %d not strictly increasing at %v", ErrBrokenStructure, h, e.Key)
			}
			if e.Level < h {
				return fmt.Errorf("%w: node %v with level %d linked at level %d", ErrBrokenStructure, e.Key, e.Level, h)
			}
			if below != nil {
				if _, ok := below[e.Key]; !ok {
					return fmt.Errorf("%w: node %v at level %d missing from level %d", ErrBrokenStructure, e.Key, h, h-1)
				}
			}
			cur[e.Key] = e.Level
		}
		if h == 0 && len(entries) != size {
			return fmt.Errorf("%w: level 0 has %d nodes, size is %d", ErrBrokenStructure, len(entries), size)
		}
		// 每個應該出現在第 h 層的節點都必須被接上
		if below != nil {
			for k, lvl := range below {
				if _, ok := cur[k]; lvl >= h && !ok {
					return fmt.Errorf("%w: node %v with level %d not linked at level %d", ErrBrokenStructure, k, lvl, h)
				}
			}
		}
		below = cur
	}

	for h := maxLevel + 1; h <= skiplist.MaxLevel; h++ {
		if n := len(sl.LevelEntries(h)); n != 0 {
			return fmt.Errorf("%w: %d nodes above active level %d at level %d", ErrBrokenStructure, n, maxLevel, h)
		}
	}
	return nil
}

// CountLevel 回傳每層的節點數，索引 0 為第 0 層
func CountLevel[K cmp.Ordered, V any](sl skiplist.Analyable[K, V]) []int {
	_, maxLevel := sl.GetMaxStats()
	counts := make([]int, maxLevel+1)
	for h := range counts {
		counts[h] = len(sl.LevelEntries(h))
	}
	return counts
}

// DisplayLevels 由最高層往下輸出每層的 key:value 序列，格式為
//
//	Level 1: a:1;c:3;
//	Level 0: a:1;b:2;c:3;
func DisplayLevels[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V]) error {
	_, maxLevel := sl.GetMaxStats()
	var sb strings.Builder
	for h := maxLevel; h >= 0; h-- {
		fmt.Fprintf(&sb, "Level %d: ", h)
		for _, e := range sl.LevelEntries(h) {
			fmt.Fprintf(&sb, "%v:%v;", e.Key, e.Value)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// PrintSkipList 以表格打印跳表的結構，最多顯示 maxNodes 個節點（<=0 表示全部）
func PrintSkipList[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V], maxNodes int) {
	_, maxLevel := sl.GetMaxStats()
	base := sl.LevelEntries(0)
	if maxNodes > 0 && len(base) > maxNodes {
		base = base[:maxNodes]
	}

	header := make([]string, len(base)+1)
	header[0] = "level"
	for i := range base {
		header[i+1] = fmt.Sprintf("#%d", i+1)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)

	for h := maxLevel; h >= 0; h-- {
		row := make([]string, len(base)+1)
		row[0] = fmt.Sprintf("%d", h)
		for i, e := range base {
			if e.Level >= h {
				row[i+1] = fmt.Sprintf("%v", e.Key)
			}
		}
		table.Append(row)
	}
	values := make([]string, len(base)+1)
	values[0] = "value"
	for i, e := range base {
		values[i+1] = fmt.Sprintf("%v", e.Value)
	}
	table.Append(values)
	table.Render()
}

// PrintLevelCounts 以表格打印每層節點數
func PrintLevelCounts[K cmp.Ordered, V any](w io.Writer, sl skiplist.Analyable[K, V]) {
	size, maxLevel := sl.GetMaxStats()
	counts := CountLevel(sl)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Nodes"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for h := maxLevel; h >= 0; h-- {
		table.Append([]string{fmt.Sprintf("%d", h), fmt.Sprintf("%d", counts[h])})
	}
	table.SetFooter([]string{"total", fmt.Sprintf("%d", size)})
	table.Render()
}
