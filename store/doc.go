// Package store 把跳表匯出成純文字檔，並可再匯入回來。
//
// 檔案格式，一行一筆紀錄：
//
//	# skipkv store v1
//	<key>:<value>;
//	...
//	# records=<n> murmur3=<hex>
//
// key 與 value 都經過轉義，紀錄一律在第一個未轉義的 ':' 切開：
//
//	\   ->  \\
//	:   ->  \:
//	;   ->  \;
//	LF  ->  \n
//	CR  ->  \r
//
// key 開頭的 '#' 另外寫成 \#。
//
// 紀錄行必須以未轉義的 ';' 結尾。以 '#' 開頭的行是註解；
// 選用的檔尾註解記錄筆數，以及所有紀錄行（含各自的 '\n'）的 murmur3-32 摘要。
// 沒有轉義也沒有檔尾的舊檔（單純的 "key:value;"）只要 key 不含 ':' 仍可匯入。
//
// 匯入時先讀完整個輸入並核對檔尾，之後才寫入任何資料。格式錯誤的行會略過並計數。
package store

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

func init() {
	if gtrace.CoreTracer == nil {
		gtrace.CoreTracer = gologadapter.New()
	}
}

// T 回傳全域的 core-tracer
func T() tracing.Trace {
	return gtrace.CoreTracer
}
