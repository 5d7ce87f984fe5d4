package store

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRecord 表示某一行無法解析成 key/value
	ErrInvalidRecord = errors.New("invalid record")
	// ErrChecksum 表示檔尾摘要與內容不符
	ErrChecksum = errors.New("store checksum mismatch")
	// ErrNoPath 表示沒有設定儲存路徑
	ErrNoPath = errors.New("store path not configured")
)

// Codec 把 key 或 value 轉成字串並轉回
type Codec[T any] interface {
	Encode(v T) string
	Decode(s string) (T, error)
}

// StringCodec 原樣保存字串
type StringCodec struct{}

func (StringCodec) Encode(v string) string           { return v }
func (StringCodec) Decode(s string) (string, error) { return s, nil }

// IntCodec 以十進位保存 int
type IntCodec struct{}

func (IntCodec) Encode(v int) string { return strconv.Itoa(v) }
func (IntCodec) Decode(s string) (int, error) {
	return strconv.Atoi(s)
}

// Float64Codec 以最短可還原的格式保存 float64
type Float64Codec struct{}

func (Float64Codec) Encode(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
func (Float64Codec) Decode(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

const (
	separator   = ':'
	terminator  = ';'
	escapeChar  = '\\'
	commentChar = '#'
)

// escape 將分隔字元、結尾字元、跳脫字元與換行轉義
func escape(s string) string {
	if !strings.ContainsAny(s, "\\:;\n\r") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case escapeChar, separator, terminator:
			sb.WriteByte(escapeChar)
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// encodeLine 產生一行不含換行的紀錄。
// key 開頭的 '#' 寫成 \#，否則整行會被當成註解。
func encodeLine(key, value string) string {
	k := escape(key)
	if len(k) > 0 && k[0] == commentChar {
		k = string(escapeChar) + k
	}
	return k + string(separator) + escape(value) + string(terminator)
}

// decodeLine 解析一行紀錄。key 在第一個未轉義的 ':' 結束，
// 行尾必須是未轉義的 ';'。value 中未轉義的 ':' 與 ';' 視為一般字元。
func decodeLine(line string) (key, value string, err error) {
	var sb strings.Builder
	sb.Grow(len(line))
	keyDone := false
	terminated := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == escapeChar:
			if i+1 >= len(line) {
				return "", "", errors.New("dangling escape")
			}
			i++
			switch e := line[i]; e {
			case escapeChar, separator, terminator, commentChar:
				sb.WriteByte(e)
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			default:
				return "", "", errors.New("unknown escape \\" + string(e))
			}
		case c == separator && !keyDone:
			key = sb.String()
			sb.Reset()
			keyDone = true
		case c == terminator && keyDone && i == len(line)-1:
			terminated = true
		default:
			sb.WriteByte(c)
		}
	}

	if !keyDone {
		return "", "", errors.New("missing separator")
	}
	if !terminated {
		return "", "", errors.New("missing terminator")
	}
	return key, sb.String(), nil
}
