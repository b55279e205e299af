// Copyright 2019 The xyrange Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jrivets/log4g"
	"github.com/logrange/linker"
	"github.com/pkg/errors"
	"github.com/xyrange/xyrange"
	"github.com/xyrange/xyrange/client"
	"github.com/xyrange/xyrange/client/shell"
	"github.com/xyrange/xyrange/cmd"
	"github.com/xyrange/xyrange/pkg/scanner"
	"github.com/xyrange/xyrange/pkg/scanner/parser"
	"github.com/xyrange/xyrange/pkg/sink"
	"github.com/xyrange/xyrange/pkg/storage"
	"github.com/xyrange/xyrange/pkg/utils"
	"github.com/xyrange/xyrange/pkg/xql"
	ucli "gopkg.in/urfave/cli.v2"
)

const (
	argCfgFile       = "config-file"
	argLogCfgFile    = "log-config-file"
	argGrammar       = "grammar"
	argGrammarParams = "grammar-params"
	argFormat        = "format"
	argTemplate      = "template"

	argScanInclude  = "files"
	argScanStorage  = "storage-dir"
	argScanOnce     = "once"
	argScanWorkers  = "workers"
	argScanSinkType = "sink"
	argScanSinkDir  = "sink-dir"
	argScanSinkDb   = "sink-db"

	cPidFileName = "scan.pid"
)

var (
	logger = log4g.GetLogger("xyr")
)

// main function is an entry point for 'xyr' command. The xyr groups the
// functionality for instrument range files in one executable:
//		parse	- parses files and writes the datasets to the sink (stdout by default)
//		query	- runs xql queries against a parsed file
//		shell	- an interactive CLI to load files and run xql queries
//		scan	- scans directories and sends new or changed files to the sink
//		grammars - prints the grammar presets
func main() {
	defer log4g.Shutdown()

	cmnFlags := []ucli.Flag{
		&ucli.StringFlag{
			Name:  argCfgFile,
			Usage: "configuration file path, JSON or YAML (.yaml, .yml)",
		},
		&ucli.StringFlag{
			Name:  argLogCfgFile,
			Usage: "log4g configuration file path",
		},
		&ucli.StringFlag{
			Name:  argGrammar,
			Usage: "grammar preset, one of: " + strings.Join(parser.Presets(), ", "),
		},
		&ucli.StringFlag{
			Name:  argGrammarParams,
			Usage: "grammar fields override in logfmt, e.g. \"RangeStartTag=_DRIVE XStepKey=_STEPSIZE\"",
		},
	}

	outFlags := []ucli.Flag{
		&ucli.StringFlag{
			Name:  argFormat,
			Usage: "output format, \"text\" or \"json\"",
		},
		&ucli.StringFlag{
			Name:  argTemplate,
			Usage: "point template for the text format, e.g. \"{x:%.3f} {y}\\n\"",
		},
	}

	scanFlags := []ucli.Flag{
		&ucli.StringSliceFlag{
			Name:  argScanInclude,
			Usage: "files pattern that should be scanned e.g. \"/data/xrd/*.uxd\",\"/data/xrd/*/*.uxd\"",
		},
		&ucli.StringFlag{
			Name:  argScanStorage,
			Usage: "storage directory for the scanner state",
		},
		&ucli.BoolFlag{
			Name:  argScanOnce,
			Usage: "scan the files once and exit",
		},
		&ucli.IntFlag{
			Name:  argScanWorkers,
			Usage: "number of files parsed in parallel",
		},
		&ucli.StringFlag{
			Name:  argScanSinkType,
			Usage: "sink type, one of: stdout, file or sqlite",
		},
		&ucli.StringFlag{
			Name:  argScanSinkDir,
			Usage: "directory for the file sink",
		},
		&ucli.StringFlag{
			Name:  argScanSinkDb,
			Usage: "database file for the sqlite sink",
		},
	}

	app := &ucli.App{
		Name:    "xyr",
		Version: xyrange.Version,
		Usage:   "Instrument range files parser",
		Commands: []*ucli.Command{
			{
				Name:      "parse",
				Usage:     "Parse files and print the datasets",
				UsageText: "xyr parse [command options] <files...>",
				Action:    parseFiles,
				Flags:     append(outFlags, cmnFlags...),
			},
			{
				Name:      "query",
				Usage:     "Execute xql query against a file",
				UsageText: "xyr query [command options] <file> [xql query]",
				Action:    execQuery,
				Flags:     cmnFlags,
			},
			{
				Name:      "shell",
				Usage:     "Run xql shell",
				UsageText: "xyr shell [command options] [file]",
				Action:    runShell,
				Flags:     cmnFlags,
			},
			{
				Name:      "scan",
				Usage:     "Run files scanning",
				UsageText: "xyr scan [command options]",
				Action:    runScan,
				Flags:     append(scanFlags, append(outFlags, cmnFlags...)...),
			},
			{
				Name:      "stop-scan",
				Usage:     "Stop files scanning",
				UsageText: "xyr stop-scan [command options]",
				Action:    stopScan,
				Flags:     []ucli.Flag{scanFlags[1], cmnFlags[0]},
			},
			{
				Name:      "grammars",
				Usage:     "Print grammar presets",
				UsageText: "xyr grammars",
				Action:    printGrammars,
			},
		},
	}

	sort.Sort(ucli.FlagsByName(app.Flags))
	for _, c := range app.Commands {
		sort.Sort(ucli.FlagsByName(c.Flags))
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initCfg(c *ucli.Context) (*client.Config, error) {
	var (
		err error
		cfg = client.NewDefaultConfig()
	)

	logCfgFile := c.String(argLogCfgFile)
	if logCfgFile != "" {
		err = log4g.ConfigF(logCfgFile)
		if err != nil {
			return nil, err
		}
	}

	cfgFile := c.String(argCfgFile)
	if cfgFile != "" {
		logger.Info("Loading config from=", cfgFile)
		config, err := client.LoadCfgFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg.Apply(config)
	}

	if err = applyArgsToCfg(c, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Check()
}

func applyArgsToCfg(c *ucli.Context, cfg *client.Config) error {
	if g := c.String(argGrammar); g != "" {
		cfg.Grammar = g
	}

	if gp := c.String(argGrammarParams); gp != "" {
		params, err := parser.ParseParamsString(gp)
		if err != nil {
			return err
		}
		cfg.GrammarParams = params
	}

	// Sink settings
	if st := c.String(argScanSinkType); st != "" {
		cfg.Sink = &sink.Config{Type: st, Params: sink.Params{}}
	}
	if sd := c.String(argScanSinkDir); sd != "" {
		setSinkParam(cfg, sink.PrmFileDir, sd)
	}
	if db := c.String(argScanSinkDb); db != "" {
		setSinkParam(cfg, sink.PrmSqlitePath, db)
	}
	if f := c.String(argFormat); f != "" {
		setSinkParam(cfg, sink.PrmStdoutFormat, f)
	}
	if t := c.String(argTemplate); t != "" {
		setSinkParam(cfg, sink.PrmStdoutTemplate, t)
	}

	// Scanner settings
	if sd := c.String(argScanStorage); sd != "" {
		cfg.Storage.Type = storage.TypeFile
		cfg.Storage.Location = sd
	}
	if incPath := c.StringSlice(argScanInclude); len(incPath) > 0 {
		cfg.Scanner.IncludePaths = incPath
	}
	if w := c.Int(argScanWorkers); w > 0 {
		cfg.Scanner.Workers = w
	}
	return nil
}

func setSinkParam(cfg *client.Config, name, val string) {
	if cfg.Sink.Params == nil {
		cfg.Sink.Params = sink.Params{}
	}
	cfg.Sink.Params[name] = val
}

func newCtx() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	utils.NewNotifierOnIntTermSignal(func(s os.Signal) {
		logger.Warn("Handling signal=", s)
		cancel()
	})
	return ctx
}

//===================== parse =====================

func parseFiles(c *ucli.Context) error {
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	files := utils.ExpandPaths(c.Args().Slice())
	if len(files) == 0 {
		return fmt.Errorf("no files found for %v", c.Args().Slice())
	}

	pcfg, _ := cfg.ParserConfig()
	p, err := parser.NewParser(pcfg)
	if err != nil {
		return err
	}

	snk, err := client.NewSink(cfg.Sink)
	if err != nil {
		return err
	}
	defer snk.Close()

	failed := 0
	for _, f := range files {
		ds, err := p.ParseFile(f)
		if err == nil {
			err = snk.OnDataset(f, ds)
		}
		if err != nil {
			logger.Error("Could not process file=", f, ", err=", err)
			failed++
			continue
		}
		st := p.GetStats()
		logger.Info("Parsed ", f, ": lines=", humanize.Comma(st.Lines), ", ranges=", st.Ranges,
			", points=", humanize.Comma(st.Points))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be processed", failed, len(files))
	}
	return nil
}

//===================== query =====================

func execQuery(c *ucli.Context) error {
	log4g.SetLogLevel("", log4g.FATAL)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	if c.Args().Len() == 0 {
		return fmt.Errorf("file name expected")
	}
	query, err := getQuery(c.Args().Tail())
	if err != nil {
		return err
	}
	if len(query) == 0 {
		query = []string{"show ranges"}
	}

	pcfg, _ := cfg.ParserConfig()
	p, err := parser.NewParser(pcfg)
	if err != nil {
		return err
	}
	ds, err := p.ParseFile(c.Args().First())
	if err != nil {
		return err
	}

	for _, q := range query {
		if err = xql.Run(q, ds, os.Stdout); err != nil {
			return errors.Wrapf(err, "could not run %q", q)
		}
	}
	return nil
}

// getQuery returns the query from the args, or the queries read from stdin,
// one per line, if it is not a terminal
func getQuery(args []string) ([]string, error) {
	var query []string

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		if len(args) != 0 {
			query = append(query, strings.Join(args, " "))
		}
		return query, nil
	}

	bs := bufio.NewScanner(os.Stdin)
	for bs.Scan() {
		t := strings.TrimSpace(bs.Text())
		if t != "" {
			query = append(query, t)
		}
	}
	return query, bs.Err()
}

//===================== shell =====================

func runShell(c *ucli.Context) error {
	log4g.SetLogLevel("", log4g.FATAL)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	if c.Args().Len() > 1 {
		return fmt.Errorf("at most one file expected, but %s", c.Args())
	}
	return shell.Run(cfg.Grammar, cfg.GrammarParams, c.Args().First())
}

//===================== scan =====================

// pidFileName returns the name of file, where the scanner process pid will be stored
func pidFileName(cfg *client.Config) string {
	if cfg.Storage.Type == storage.TypeInMem {
		return ""
	}
	return filepath.Join(cfg.Storage.Location, cPidFileName)
}

func runScan(c *ucli.Context) error {
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	if c.Args().Len() > 0 {
		return fmt.Errorf("no arguments expected, but %s", c.Args())
	}

	strg, err := client.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer strg.Close()

	if pfn := pidFileName(cfg); pfn != "" {
		pf := cmd.NewPidFile(pfn)
		if err = pf.Lock(); err != nil {
			return errors.Wrapf(err, "already running?")
		}
		defer pf.Unlock()
	}

	snk, err := client.NewSink(cfg.Sink)
	if err != nil {
		return err
	}
	defer snk.Close()

	sc := scanner.NewScanner()
	ctx := newCtx()
	if c.Bool(argScanOnce) {
		sc.Config = cfg.Scanner
		sc.Sink = snk
		sc.Storage = strg
		if err = sc.Prepare(); err != nil {
			return err
		}
		n := sc.Scan(ctx)
		logger.Info(n, " file(s) processed, stats=", sc.GetStats())
		return sc.PersistState()
	}

	injector := linker.New()
	injector.SetLogger(log4g.GetLogger("injector"))
	injector.Register(
		linker.Component{Name: "", Value: cfg.Scanner},
		linker.Component{Name: "", Value: snk},
		linker.Component{Name: "", Value: strg},
		linker.Component{Name: "", Value: sc},
	)
	injector.Init(ctx)

	<-ctx.Done()
	injector.Shutdown()
	return nil
}

func stopScan(c *ucli.Context) error {
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	pfn := pidFileName(cfg)
	if pfn == "" {
		return fmt.Errorf("could not determine scanner pid, provide --%s", argScanStorage)
	}

	pid, err := cmd.NewPidFile(pfn).Interrupt()
	if err != nil {
		return err
	}
	fmt.Println("Sent interrupt notification to process pid=", pid)
	return nil
}

//===================== grammars =====================

func printGrammars(_ *ucli.Context) error {
	for _, name := range parser.Presets() {
		g, err := parser.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %s\n", name, g)
	}
	return nil
}
