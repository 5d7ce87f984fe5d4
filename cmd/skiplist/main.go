package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Hakuto4838/skipkv/cli"
	"github.com/Hakuto4838/skipkv/config"
	"github.com/Hakuto4838/skipkv/skiplist/arena"
	"github.com/Hakuto4838/skipkv/store"
	"github.com/fatih/color"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"golang.org/x/term"
)

func main() {
	var cfgPath string
	var storePath string
	var seed int64
	var dumpConfig string

	flag.StringVar(&cfgPath, "config", "skipkv.yaml", "YAML config file (missing file means defaults)")
	flag.StringVar(&storePath, "store", "", "store file used by dump/load (overrides config)")
	flag.Int64Var(&seed, "seed", 0, "level generator seed (0 = use config)")
	flag.StringVar(&dumpConfig, "dump-config", "", "write the effective config to this path and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if dumpConfig != "" {
		if err := cfg.Dump(dumpConfig); err != nil {
			log.Fatalf("dump config: %v", err)
		}
		fmt.Printf("config written to %s\n", dumpConfig)
		return
	}

	gtrace.CoreTracer = gologadapter.New()
	gtrace.CoreTracer.SetTraceLevel(cfg.Level())

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	switch cfg.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	}

	sl := arena.NewArenaSkipList[string, string](cfg.Seed, arena.WithMaxLevel(cfg.MaxLevel))
	c := cli.New(sl, store.NewStringStore(cfg.StorePath), os.Stdout)
	if interactive {
		c.SetPrompt("skiplist> ")
	}
	if err := c.Run(os.Stdin); err != nil {
		log.Fatalf("read input: %v", err)
	}
}
