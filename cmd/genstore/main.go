package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Hakuto4838/skipkv/datastream"
	"github.com/Hakuto4838/skipkv/skiplist/arena"
	"github.com/Hakuto4838/skipkv/store"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// parseScientificNotation 解析科學記號字串（如 "1e5"）為整數
func parseScientificNotation(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// formatScientific 將數字格式化為科學記號（用於檔名）
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp, divisor := 0, 1
	for n/divisor >= 10 {
		divisor *= 10
		exp++
	}
	coefficient := float64(n) / float64(divisor)
	if coefficient == float64(int(coefficient)) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

func main() {
	var out string
	var path string
	var nStr string
	var keyLen int
	var valLen int
	var seed int64
	var nums int

	flag.StringVar(&nStr, "n", "1e4", "number of records per file (支援科學記號，如 1e5)")
	flag.IntVar(&keyLen, "keylen", datastream.DefaultKeyLength, "key length")
	flag.IntVar(&valLen, "vallen", datastream.DefaultKeyLength, "value length")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (留空則自動生成)")
	flag.StringVar(&path, "path", ".", "output directory path (輸出目錄路徑)")
	flag.Parse()

	gtrace.CoreTracer = gologadapter.New()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)

	n, err := parseScientificNotation(nStr)
	if err != nil || n < 0 {
		log.Fatalf("invalid -n %q: %v", nStr, err)
	}
	if out == "" {
		out = fmt.Sprintf("store_n%s_k%d", formatScientific(n), keyLen)
	}
	if path != "." && path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("建立輸出目錄失敗: %v", err)
		}
	}

	fmt.Printf("生成參數:\n")
	fmt.Printf("  n (records): %d\n", n)
	fmt.Printf("  key/value length: %d/%d\n", keyLen, valLen)
	fmt.Printf("  seed: %d\n", seed)
	fmt.Printf("  檔案數量: %d\n", nums)
	fmt.Printf("  輸出目錄: %s\n\n", path)

	for i := 0; i < nums; i++ {
		filename := out + ".txt"
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.txt", out, i)
		}
		outfile := filepath.Join(path, filename)
		fmt.Printf("正在生成 %s...\n", outfile)

		s := uint64(seed + int64(i))
		sl := arena.NewArenaSkipList[string, string](int64(s))
		keys := datastream.NewAlnumGenerator(keyLen, s).Unique(n)
		vals := datastream.NewAlnumGenerator(valLen, s+1)
		for _, k := range keys {
			sl.Insert(k, vals.Next())
		}
		if _, err := store.NewStringStore(outfile).Export(sl); err != nil {
			log.Fatalf("錯誤: %v", err)
		}
	}
	fmt.Println("完成!")
}
