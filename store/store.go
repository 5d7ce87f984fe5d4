package store

import (
	"bufio"
	"cmp"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Hakuto4838/skipkv/skiplist"
	"github.com/spaolacci/murmur3"
)

const (
	fileHeader    = "# skipkv store v1"
	trailerPrefix = "# records="
	maxLineSize   = 16 * 1024 * 1024
)

// Source 是可以依序走訪的資料來源，跳表的 Each 即滿足
type Source[K cmp.Ordered, V any] interface {
	Each(fn func(key K, value V) bool)
}

// Sink 是匯入的目標，跳表的 Insert 即滿足
type Sink[K cmp.Ordered, V any] interface {
	Insert(key K, value V) skiplist.InsertResult
}

// Record 一筆解析後的紀錄
type Record[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// ImportStats 匯入的統計資料
type ImportStats struct {
	Lines    int  // 讀到的總行數
	Records  int  // 解析成功的紀錄數
	Skipped  int  // 空行或格式錯誤而略過的行數
	Inserted int  // 新增的節點數
	Updated  int  // 覆寫既有 key 的次數
	Verified bool // 檔尾摘要存在且相符
}

// Store 負責一個跳表與一個檔案之間的匯出入
type Store[K cmp.Ordered, V any] struct {
	Path   string
	Keys   Codec[K]
	Values Codec[V]
}

// New 建立一個以 path 為儲存位置的 Store
func New[K cmp.Ordered, V any](path string, keys Codec[K], values Codec[V]) *Store[K, V] {
	return &Store[K, V]{Path: path, Keys: keys, Values: values}
}

// NewStringStore 建立 key/value 皆為字串的 Store
func NewStringStore(path string) *Store[string, string] {
	return New[string, string](path, StringCodec{}, StringCodec{})
}

type digestWriter struct {
	w     *bufio.Writer
	h     hash.Hash32
	count int
}

func (d *digestWriter) record(line string) error {
	line += "\n"
	d.h.Write([]byte(line))
	d.count++
	_, err := d.w.WriteString(line)
	return err
}

// Encode 依 key 升冪把 src 的內容寫到 w，回傳寫出的紀錄數
func (s *Store[K, V]) Encode(w io.Writer, src Source[K, V]) (int, error) {
	dw := &digestWriter{w: bufio.NewWriter(w), h: murmur3.New32()}
	if _, err := dw.w.WriteString(fileHeader + "\n"); err != nil {
		return 0, err
	}

	var werr error
	src.Each(func(key K, value V) bool {
		werr = dw.record(encodeLine(s.Keys.Encode(key), s.Values.Encode(value)))
		return werr == nil
	})
	if werr != nil {
		return dw.count, werr
	}

	trailer := fmt.Sprintf("%s%d murmur3=%08x\n", trailerPrefix, dw.count, dw.h.Sum32())
	if _, err := dw.w.WriteString(trailer); err != nil {
		return dw.count, err
	}
	return dw.count, dw.w.Flush()
}

// Export 把 src 寫入 s.Path。先寫到同目錄的暫存檔再改名，
// 失敗時原有的檔案不受影響。
func (s *Store[K, V]) Export(src Source[K, V]) (int, error) {
	if s.Path == "" {
		return 0, ErrNoPath
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("store: create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("store: create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	n, err := s.Encode(tmp, src)
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("store: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return 0, fmt.Errorf("store: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("store: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("store: rename to %s: %w", s.Path, err)
	}
	T().Infof("store: exported %d records to %s", n, s.Path)
	return n, nil
}

// Decode 讀完整個 r 並解析所有紀錄，不修改任何結構。
// 讀取錯誤或摘要不符時回傳錯誤，格式錯誤的行只計入 Skipped。
func (s *Store[K, V]) Decode(r io.Reader) ([]Record[K, V], ImportStats, error) {
	var stats ImportStats
	var records []Record[K, V]

	h := murmur3.New32()
	rawRecords := 0
	trailerCount, trailerSum := -1, uint32(0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			stats.Skipped++
			T().Debugf("store: line %d: empty, skipped", stats.Lines)
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, trailerPrefix) {
				cnt, sum, err := parseTrailer(line)
				if err != nil {
					T().Errorf("store: line %d: bad trailer: %v", stats.Lines, err)
					continue
				}
				trailerCount, trailerSum = cnt, sum
			}
			continue
		}

		rawRecords++
		h.Write([]byte(line + "\n"))

		rec, err := s.decodeRecord(line)
		if err != nil {
			stats.Skipped++
			T().Debugf("store: line %d: %v, skipped", stats.Lines, err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("store: read: %w", err)
	}

	if trailerCount >= 0 {
		if trailerCount != rawRecords || trailerSum != h.Sum32() {
			return nil, stats, fmt.Errorf("%w: trailer says %d records/%08x, read %d/%08x",
				ErrChecksum, trailerCount, trailerSum, rawRecords, h.Sum32())
		}
		stats.Verified = true
	}
	stats.Records = len(records)
	return records, stats, nil
}

func (s *Store[K, V]) decodeRecord(line string) (Record[K, V], error) {
	var rec Record[K, V]
	ks, vs, err := decodeLine(line)
	if err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if rec.Key, err = s.Keys.Decode(ks); err != nil {
		return rec, fmt.Errorf("%w: key: %v", ErrInvalidRecord, err)
	}
	if rec.Value, err = s.Values.Decode(vs); err != nil {
		return rec, fmt.Errorf("%w: value: %v", ErrInvalidRecord, err)
	}
	return rec, nil
}

func parseTrailer(line string) (int, uint32, error) {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "records=") || !strings.HasPrefix(fields[1], "murmur3=") {
		return 0, 0, fmt.Errorf("unexpected trailer %q", line)
	}
	cnt, err := strconv.Atoi(strings.TrimPrefix(fields[0], "records="))
	if err != nil {
		return 0, 0, err
	}
	sum, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "murmur3="), 16, 32)
	if err != nil {
		return 0, 0, err
	}
	return cnt, uint32(sum), nil
}

// Load 解析 r 後把所有紀錄以一般 Insert 寫入 dst，既有的 key 會被覆寫
func (s *Store[K, V]) Load(r io.Reader, dst Sink[K, V]) (ImportStats, error) {
	records, stats, err := s.Decode(r)
	if err != nil {
		return stats, err
	}
	for _, rec := range records {
		if dst.Insert(rec.Key, rec.Value) == skiplist.Created {
			stats.Inserted++
		} else {
			stats.Updated++
		}
	}
	return stats, nil
}

// Import 從 s.Path 匯入
func (s *Store[K, V]) Import(dst Sink[K, V]) (ImportStats, error) {
	if s.Path == "" {
		return ImportStats{}, ErrNoPath
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("store: open %s: %w", s.Path, err)
	}
	defer f.Close()

	stats, err := s.Load(f, dst)
	if err != nil {
		return stats, fmt.Errorf("store: import %s: %w", s.Path, err)
	}
	if stats.Skipped > 0 {
		T().Infof("store: %s: skipped %d malformed lines", s.Path, stats.Skipped)
	}
	T().Infof("store: imported %d records from %s (%d new, %d updated)",
		stats.Records, s.Path, stats.Inserted, stats.Updated)
	return stats, nil
}
