// Package cli 實作逐行讀取指令並操作跳表的命令列介面
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Hakuto4838/skipkv/skiplist"
	"github.com/Hakuto4838/skipkv/skiplist/analyTool"
	"github.com/Hakuto4838/skipkv/store"
	"github.com/fatih/color"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T 回傳全域的 core-tracer
func T() tracing.Trace {
	return gtrace.CoreTracer
}

type cliState int

const (
	_GOOD cliState = iota
	_BAD_ARGC
	_BAD_ARGV
	_ERROR
)

// List 是 CLI 操作的跳表
type List = skiplist.Analyable[string, string]

type clearer interface {
	Clear()
}

var (
	okColor   = color.New(color.FgGreen)
	missColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	bold      = color.New(color.Bold)
)

// CLI 把一行指令對應到跳表的操作
type CLI struct {
	sl      List
	st      *store.Store[string, string]
	out     io.Writer
	args    []string
	state   cliState
	running bool
	prompt  string
}

// New 建立 CLI，st 為 nil 時 dump/load 會回報錯誤
func New(sl List, st *store.Store[string, string], out io.Writer) *CLI {
	return &CLI{
		sl:      sl,
		st:      st,
		out:     out,
		state:   _GOOD,
		running: true,
	}
}

// SetPrompt 設定每次讀取前印出的提示字串
func (cli *CLI) SetPrompt(p string) { cli.prompt = p }

// IsRunning 是否尚未收到 quit
func (cli *CLI) IsRunning() bool { return cli.running }

// Run 讀取 in 直到 EOF 或 quit
func (cli *CLI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	fmt.Fprintln(cli.out, "Type 'help' for a list of commands.")
	for cli.running {
		if cli.prompt != "" {
			fmt.Fprint(cli.out, cli.prompt)
		}
		if !scanner.Scan() {
			break
		}
		cli.Exec(scanner.Text())
	}
	return scanner.Err()
}

// Exec 執行一行指令
func (cli *CLI) Exec(line string) {
	cli.args = strings.Fields(line)
	cmd := ""
	if len(cli.args) > 0 {
		cmd = strings.ToLower(cli.args[0])
	}
	T().Debugf("cli: %q", line)

	funcmap := map[string]func(){
		"insert": cli.insert,
		"delete": cli.del,
		"search": cli.search,
		"get":    cli.get,
		"dump":   cli.dump,
		"load":   cli.load,
		"size":   cli.size,
		"stats":  cli.stats,
		"table":  cli.table,
		"clear":  cli.clear,
		"help":   cli.help,
		"quit":   cli.quit,
		"exit":   cli.quit,
	}
	f, has := funcmap[cmd]
	if !has {
		f = cli.display
	}
	f()
	cli.handleError()
}

func (cli *CLI) handleError() {
	switch cli.state {
	case _GOOD:
		return
	case _BAD_ARGC:
		errColor.Fprintln(cli.out, "Bad argument count!")
	case _BAD_ARGV:
		errColor.Fprintln(cli.out, "Bad argument value(s)!")
	}
	if cli.state != _ERROR {
		fmt.Fprintln(cli.out, "Type 'help' for a list of commands.")
	}
	cli.state = _GOOD
}

func (cli *CLI) cmdHasArgc(n int) bool {
	if len(cli.args)-1 != n {
		cli.state = _BAD_ARGC
		return false
	}
	return true
}

func (cli *CLI) insert() {
	if !cli.cmdHasArgc(2) {
		return
	}
	key, val := cli.args[1], cli.args[2]
	switch cli.sl.Insert(key, val) {
	case skiplist.Created:
		okColor.Fprintf(cli.out, "Key: %s Value: %s insert success!\n", key, val)
	case skiplist.Updated:
		okColor.Fprintf(cli.out, "Key: %s Value: %s updated!\n", key, val)
	}
}

func (cli *CLI) del() {
	if !cli.cmdHasArgc(1) {
		return
	}
	key := cli.args[1]
	if cli.sl.Delete(key) {
		okColor.Fprintf(cli.out, "Key: %s deleted!\n", key)
	} else {
		missColor.Fprintf(cli.out, "skiplist not exists the key: %s\n", key)
	}
}

func (cli *CLI) search() {
	if !cli.cmdHasArgc(1) {
		return
	}
	key := cli.args[1]
	if cli.sl.Search(key) {
		okColor.Fprintf(cli.out, "Key: %s searched!\n", key)
	} else {
		missColor.Fprintf(cli.out, "Key: %s not exists!\n", key)
	}
}

func (cli *CLI) get() {
	if !cli.cmdHasArgc(1) {
		return
	}
	key := cli.args[1]
	if val, ok := cli.sl.Get(key); ok {
		okColor.Fprintf(cli.out, "Key: %s's value is %s\n", key, val)
	} else {
		missColor.Fprintf(cli.out, "Key: %s not exists!\n", key)
	}
}

func (cli *CLI) dump() {
	if !cli.cmdHasArgc(0) {
		return
	}
	if cli.st == nil {
		cli.fail(store.ErrNoPath)
		return
	}
	n, err := cli.st.Export(cli.sl)
	if err != nil {
		cli.fail(err)
		return
	}
	okColor.Fprintf(cli.out, "Already saved skiplist. (%d records to %s)\n", n, cli.st.Path)
}

func (cli *CLI) load() {
	if !cli.cmdHasArgc(0) {
		return
	}
	if cli.st == nil {
		cli.fail(store.ErrNoPath)
		return
	}
	stats, err := cli.st.Import(cli.sl)
	if err != nil {
		cli.fail(err)
		return
	}
	okColor.Fprintf(cli.out, "Loaded %d records (%d new, %d updated)", stats.Records, stats.Inserted, stats.Updated)
	if stats.Skipped > 0 {
		missColor.Fprintf(cli.out, ", skipped %d lines", stats.Skipped)
	}
	fmt.Fprintln(cli.out)
}

func (cli *CLI) fail(err error) {
	T().Errorf("cli: %s: %v", cli.args[0], err)
	errColor.Fprintf(cli.out, "%s failed: %v\n", cli.args[0], err)
	cli.state = _ERROR
}

func (cli *CLI) size() {
	if !cli.cmdHasArgc(0) {
		return
	}
	fmt.Fprintf(cli.out, "size: %d\n", cli.sl.Size())
}

func (cli *CLI) stats() {
	if !cli.cmdHasArgc(0) {
		return
	}
	analyTool.PrintLevelCounts[string, string](cli.out, cli.sl)
}

// table [n]：以表格列出前 n 個節點
func (cli *CLI) table() {
	limit := 0
	switch len(cli.args) {
	case 1:
	case 2:
		n, err := strconv.Atoi(cli.args[1])
		if err != nil || n < 0 {
			cli.state = _BAD_ARGV
			return
		}
		limit = n
	default:
		cli.state = _BAD_ARGC
		return
	}
	analyTool.PrintSkipList[string, string](cli.out, cli.sl, limit)
}

func (cli *CLI) clear() {
	if !cli.cmdHasArgc(0) {
		return
	}
	c, ok := cli.sl.(clearer)
	if !ok {
		cli.fail(fmt.Errorf("not supported"))
		return
	}
	c.Clear()
	okColor.Fprintln(cli.out, "Cleared.")
}

func (cli *CLI) display() {
	fmt.Fprintln(cli.out, "********skiplist*********")
	if err := analyTool.DisplayLevels[string, string](cli.out, cli.sl); err != nil {
		T().Errorf("cli: display: %v", err)
	}
	fmt.Fprintln(cli.out, "*************************")
}

func (cli *CLI) help() {
	bold.Fprintln(cli.out, "Commands:")
	fmt.Fprint(cli.out, `  insert <key> <value>   insert or update a key
  delete <key>           remove a key
  search <key>           report whether a key exists
  get <key>              print the value of a key
  dump                   save the list to the store file
  load                   insert every record of the store file
  size                   number of keys
  stats                  node count per level
  table [n]              first n nodes as a table (0 = all)
  clear                  remove every key
  help                   this text
  quit | exit            leave
  anything else          display every level
`)
}

func (cli *CLI) quit() {
	if !cli.cmdHasArgc(0) {
		return
	}
	cli.running = false
}
