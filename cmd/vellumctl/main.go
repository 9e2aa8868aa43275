// Command vellumctl is a minimal demonstration front end for the vellum
// editing core: it is not a rendering UI (out of scope per spec.md §1) but
// a small CLI exercising the pieces a real terminal/GUI host would wire
// together — a FileDaemon walking the workspace root, a Workspace opening
// a path into a Buffer, and a handful of motion/edit commands applied to
// confirm the wiring works end to end.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/vellum/internal/buffer"
	"github.com/dshills/vellum/internal/config"
	"github.com/dshills/vellum/internal/filedaemon"
	"github.com/dshills/vellum/internal/logx"
	"github.com/dshills/vellum/internal/notify"
	"github.com/dshills/vellum/internal/search"
	"github.com/dshills/vellum/internal/workspace"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		root       = flag.String("root", ".", "workspace root to index")
		file       = flag.String("file", "", "file to open and print a buffer summary for")
		configPath = flag.String("config", "", "path to a vellum.toml config file")
	)
	flag.Parse()

	log := logx.Default()
	log.SetLevel(logx.Info)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.NewLoader(*configPath).Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "vellumctl: loading config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	absRoot, err := filepath.Abs(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vellumctl: resolving root: %v\n", err)
		return 1
	}

	daemon := filedaemon.New(absRoot,
		filedaemon.WithWatch(false),
		filedaemon.WithIgnoreHidden(cfg.Ignore.Hidden))
	if err := daemon.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "vellumctl: starting file daemon: %v\n", err)
		return 1
	}
	defer daemon.Close()

	select {
	case paths := <-daemon.Lists():
		log.Info("indexed %d file(s) under %s", len(paths), absRoot)
		for _, p := range paths {
			fmt.Println(p)
		}
	case <-time.After(5 * time.Second):
		fmt.Fprintln(os.Stderr, "vellumctl: timed out waiting for initial file list")
		return 1
	}

	if *file == "" {
		return 0
	}
	return demoBuffer(log, absRoot, *file, cfg)
}

// demoBuffer opens file into a Workspace-managed Buffer wired to a
// Searcher and an in-memory clipboard, then exercises a few motion and
// editing commands to confirm the pieces compose the way a real host
// would drive them.
func demoBuffer(log *logx.Logger, root, file string, cfg config.Config) int {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, file)
	}

	ws := workspace.New()
	searcher := search.New()
	clipboard := notify.NewMemClipboard()

	id, buf, err := ws.Open(path,
		buffer.WithSearcher(searcher),
		buffer.WithClipboard(clipboard),
		buffer.WithTabWidth(cfg.TabWidth),
		buffer.WithViewport(40, 120))
	if err != nil {
		fmt.Fprintf(os.Stderr, "vellumctl: opening %s: %v\n", path, err)
		return 1
	}
	log.WithComponent("workspace").Info("opened buffer %d for %s", id, path)

	searcher.Start("", false, buf.Rope())

	buf.Start(false)
	buf.End(true)
	view := buf.View()
	fmt.Printf("%s: %d visible line(s), cursor at %v\n", path, len(view.Lines), buf.Cursor())

	if err := buf.Copy(); err != nil {
		fmt.Fprintf(os.Stderr, "vellumctl: copy: %v\n", err)
		return 1
	}
	if text, err := clipboard.Get(); err == nil {
		log.WithComponent("clipboard").Debug("copied %d byte(s)", len(text))
	}

	return 0
}
