// Package loadgen 以多個 goroutine 對跳表施加 insert/search 負載並量測吞吐量
package loadgen

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Hakuto4838/skipkv/datastream"
	"github.com/Hakuto4838/skipkv/skiplist"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T 回傳全域的 core-tracer
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// ErrConfig 表示壓測參數不合法
var ErrConfig = errors.New("loadgen: invalid config")

// Target 是壓測對象，任何 string→string 的跳表都可以
type Target = skiplist.SkipList[string, string]

// Config 壓測參數，次數皆為每個 worker 的次數
type Config struct {
	Threads      int
	InsertTimes  int
	SearchTimes  int
	MixedTimes   int
	DeleteRatio  float64
	KeyLength    int
	Distribution string
	ZipfS        float64
	ZipfV        float64
	Seed         uint64
}

func (c Config) validate() error {
	if c.Threads <= 0 {
		return fmt.Errorf("%w: threads must be positive, got %d", ErrConfig, c.Threads)
	}
	if c.InsertTimes < 0 || c.SearchTimes < 0 || c.MixedTimes < 0 {
		return fmt.Errorf("%w: operation counts cannot be negative", ErrConfig)
	}
	if c.DeleteRatio < 0 || c.DeleteRatio > 1 {
		return fmt.Errorf("%w: delete ratio %v out of [0,1]", ErrConfig, c.DeleteRatio)
	}
	return nil
}

// PhaseReport 單一階段的結果
type PhaseReport struct {
	Name    string
	Ops     int
	Hits    int // search 命中數，或 insert 新增數
	Elapsed time.Duration
	Size    int // 階段結束時的 Size()
}

// OpsPerSec 每秒操作數
func (p PhaseReport) OpsPerSec() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Ops) / p.Elapsed.Seconds()
}

type Report struct {
	Threads int
	Phases  []PhaseReport
}

// Phase 依名稱取出階段結果
func (r Report) Phase(name string) (PhaseReport, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseReport{}, false
}

const (
	PhaseInsert = "insert"
	PhaseSearch = "search"
	PhaseMixed  = "mixed"
)

// Run 依序執行 insert、search、mixed 三個階段，每個階段由 cfg.Threads 個
// goroutine 並行操作同一個 sl，階段之間等待全部 worker 結束。
// 次數為 0 的階段會略過。
func Run(sl Target, cfg Config) (Report, error) {
	if err := cfg.validate(); err != nil {
		return Report{}, err
	}
	rep := Report{Threads: cfg.Threads}

	// 每個 worker 自己的 key，insert 階段寫入後供 search 階段挑選
	pools := make([][]string, cfg.Threads)

	if cfg.InsertTimes > 0 {
		p := runPhase(PhaseInsert, sl, cfg.Threads, func(w int) (int, int) {
			gen := datastream.NewAlnumGenerator(cfg.KeyLength, cfg.Seed+uint64(w))
			keys := make([]string, cfg.InsertTimes)
			created := 0
			for i := range keys {
				keys[i] = gen.Next()
				if sl.Insert(keys[i], gen.Next()) == skiplist.Created {
					created++
				}
			}
			pools[w] = keys
			return cfg.InsertTimes, created
		})
		rep.Phases = append(rep.Phases, p)
	}

	if cfg.SearchTimes > 0 {
		pickers := make([]datastream.KeyPicker, cfg.Threads)
		for w := range pickers {
			pool := pools[w]
			if len(pool) == 0 {
				pool = datastream.NewAlnumGenerator(cfg.KeyLength, cfg.Seed+uint64(w)).Unique(max(cfg.SearchTimes/10, 1))
			}
			picker, err := datastream.NewKeyPicker(cfg.Distribution, pool, cfg.ZipfS, cfg.ZipfV, cfg.Seed^uint64(w+1))
			if err != nil {
				return rep, fmt.Errorf("%w: %v", ErrConfig, err)
			}
			pickers[w] = picker
		}
		p := runPhase(PhaseSearch, sl, cfg.Threads, func(w int) (int, int) {
			hits := 0
			for i := 0; i < cfg.SearchTimes; i++ {
				if sl.Search(pickers[w].Pick()) {
					hits++
				}
			}
			return cfg.SearchTimes, hits
		})
		rep.Phases = append(rep.Phases, p)
	}

	if cfg.MixedTimes > 0 {
		models := make([]*datastream.SequenceModel, cfg.Threads)
		for w := range models {
			// mixed 階段使用新的 key，避免與前面階段的 key 互相干擾
			gen := datastream.NewAlnumGenerator(cfg.KeyLength, cfg.Seed+uint64(cfg.Threads+w))
			pool := gen.Unique(max(cfg.MixedTimes/4, 1))
			picker, err := datastream.NewKeyPicker(cfg.Distribution, pool, cfg.ZipfS, cfg.ZipfV, cfg.Seed+uint64(w)*31)
			if err != nil {
				return rep, fmt.Errorf("%w: %v", ErrConfig, err)
			}
			stream, err := datastream.NewMixedStream(picker, cfg.DeleteRatio, cfg.Seed+uint64(w))
			if err != nil {
				return rep, fmt.Errorf("%w: %v", ErrConfig, err)
			}
			models[w] = stream.Sequence(cfg.MixedTimes)
		}
		p := runPhase(PhaseMixed, sl, cfg.Threads, func(w int) (int, int) {
			return Replay(sl, models[w])
		})
		rep.Phases = append(rep.Phases, p)
	}
	return rep, nil
}

// Replay 依序執行 m 中剩餘的操作，回傳操作數與成功數
// （insert 新增、search 命中、delete 實際刪除）
func Replay(sl Target, m *datastream.SequenceModel) (int, int) {
	ops, ok := 0, 0
	for op, more := m.Next(); more; op, more = m.Next() {
		ops++
		switch op.Type {
		case datastream.OpInsert:
			if sl.Insert(op.Key, op.Value) == skiplist.Created {
				ok++
			}
		case datastream.OpSearch:
			if sl.Search(op.Key) {
				ok++
			}
		case datastream.OpDelete:
			if sl.Delete(op.Key) {
				ok++
			}
		}
	}
	return ops, ok
}

func runPhase(name string, sl Target, threads int, work func(w int) (ops, hits int)) PhaseReport {
	opsPer := make([]int, threads)
	hitsPer := make([]int, threads)

	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			opsPer[w], hitsPer[w] = work(w)
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	p := PhaseReport{Name: name, Elapsed: elapsed, Size: sl.Size()}
	for w := range opsPer {
		p.Ops += opsPer[w]
		p.Hits += hitsPer[w]
	}
	T().Infof("loadgen: %s phase: %d ops by %d workers in %v (%.0f ops/s), %d hits",
		name, p.Ops, threads, elapsed, p.OpsPerSec(), p.Hits)
	return p
}
