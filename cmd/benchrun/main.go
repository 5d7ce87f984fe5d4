package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Hakuto4838/skipkv/config"
	"github.com/Hakuto4838/skipkv/datastream"
	"github.com/Hakuto4838/skipkv/loadgen"
	"github.com/Hakuto4838/skipkv/skiplist"
	"github.com/Hakuto4838/skipkv/skiplist/analyTool"
	"github.com/Hakuto4838/skipkv/skiplist/arena"
	"github.com/Hakuto4838/skipkv/skiplist/basic"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

func main() {
	var cfgPath string
	var threads int
	var insertTimes int
	var searchTimes int
	var mixedTimes int
	var deleteRatio float64
	var dist string
	var seed int64
	var runs int
	var check bool
	var impl string

	flag.StringVar(&cfgPath, "config", "skipkv.yaml", "YAML config file; flags override its bench section")
	flag.IntVar(&threads, "threads", 0, "number of workers (0 = use config)")
	flag.IntVar(&insertTimes, "insert", -1, "inserts per worker (-1 = use config)")
	flag.IntVar(&searchTimes, "search", -1, "searches per worker (-1 = use config)")
	flag.IntVar(&mixedTimes, "mixed", 0, "mixed insert/search/delete operations per worker")
	flag.Float64Var(&deleteRatio, "deleteRatio", 0.1, "ratio of delete operations in the mixed phase")
	flag.StringVar(&dist, "dist", "", "key distribution for searches: uniform or zipf (empty = use config)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators")
	flag.IntVar(&runs, "runs", 5, "how many times to repeat the benchmark")
	flag.BoolVar(&check, "check", false, "verify the structure after every run")
	flag.StringVar(&impl, "impl", "arena", "implementation to run: arena or basic")
	flag.Parse()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	gtrace.CoreTracer = gologadapter.New()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)

	lc := loadgen.Config{
		Threads:      cfg.Bench.Threads,
		InsertTimes:  cfg.Bench.InsertTimes,
		SearchTimes:  cfg.Bench.SearchTimes,
		MixedTimes:   mixedTimes,
		DeleteRatio:  deleteRatio,
		KeyLength:    cfg.Bench.KeyLength,
		Distribution: cfg.Bench.Distribution,
		ZipfS:        cfg.Bench.ZipfS,
		ZipfV:        cfg.Bench.ZipfV,
	}
	if threads > 0 {
		lc.Threads = threads
	}
	if insertTimes >= 0 {
		lc.InsertTimes = insertTimes
	}
	if searchTimes >= 0 {
		lc.SearchTimes = searchTimes
	}
	if dist != "" {
		lc.Distribution = dist
	}
	if runs <= 0 {
		log.Fatalf("invalid -runs: %d", runs)
	}

	fmt.Printf("threads: %d, inserts/worker: %d, searches/worker: %d, mixed/worker: %d\n",
		lc.Threads, lc.InsertTimes, lc.SearchTimes, lc.MixedTimes)
	fmt.Printf("impl: %s, distribution: %s, runs: %d, seed: %d\n", impl, lc.Distribution, runs, seed)
	fmt.Println(strings.Repeat("=", 80))

	reports := make([]loadgen.Report, 0, runs)
	for i := 0; i < runs; i++ {
		lc.Seed = uint64(seed) + uint64(i)*1000003
		sl := newImpl(impl, seed+int64(i), cfg.MaxLevel)
		rep, err := loadgen.Run(sl, lc)
		if err != nil {
			log.Fatalf("run %d: %v", i, err)
		}
		if check {
			if err := analyTool.CheckStruct[string, string](sl); err != nil {
				log.Fatalf("run %d: %v", i, err)
			}
		}
		for _, p := range rep.Phases {
			fmt.Printf("[%d/%d] %s: %d ops in %.3fms\n", i+1, runs, p.Name, p.Ops, float64(p.Elapsed.Microseconds())/1000.0)
		}
		if i == 0 && lc.SearchTimes > 0 && lc.InsertTimes > 0 {
			keys := make([]string, 0, 1000)
			sl.Each(func(k, _ string) bool {
				keys = append(keys, k)
				return len(keys) < cap(keys)
			})
			fmt.Printf("avg search steps (first %d keys): %.3f\n", len(keys), analyTool.AverageSearchSteps[string, string](sl, keys))
			fmt.Printf("entropy of %s search distribution: %.3f bits\n", lc.Distribution, searchEntropy(keys, lc))
		}
		reports = append(reports, rep)
	}

	fmt.Println(strings.Repeat("=", 80))
	loadgen.Render(os.Stdout, lc.Threads, loadgen.Summarize(reports))
}

func newImpl(impl string, seed int64, maxLevel int) skiplist.Analyable[string, string] {
	switch impl {
	case "arena":
		return arena.NewArenaSkipList[string, string](seed, arena.WithMaxLevel(maxLevel))
	case "basic":
		return basic.NewBasicSkipList[string, string](seed)
	default:
		log.Fatalf("unknown -impl: %s", impl)
		return nil
	}
}

// searchEntropy 以與 loadgen 相同的分布參數估算 keys 上的 entropy
func searchEntropy(keys []string, lc loadgen.Config) float64 {
	if len(keys) == 0 {
		return 0
	}
	picker, err := datastream.NewKeyPicker(lc.Distribution, keys, lc.ZipfS, lc.ZipfV, lc.Seed)
	if err != nil {
		return 0
	}
	return datastream.Entropy(picker.KeyMap())
}
