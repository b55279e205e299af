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

package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xyrange/xyrange/pkg/model"
	"github.com/xyrange/xyrange/pkg/scanner/parser"
	"github.com/xyrange/xyrange/pkg/xql"
)

type (
	command struct {
		name    string
		matcher *regexp.Regexp
		cmdFn   cmdFn
		help    string
	}

	config struct {
		pcfg  *parser.Config
		file  string
		ds    *model.Dataset
		stats *parser.Stats
		size  int64
		arg   string
		out   io.Writer
	}

	cmdFn func(cfg *config) error
)

const (
	cmdQueryName   = "query"
	cmdLoadName    = "load"
	cmdGrammarName = "grammar"
	cmdInfoName    = "info"
	cmdQuitName    = "quit"
	cmdHelpName    = "help"

	rgArgGrp = "arg"
)

var (
	errQuit  = errors.New("quit")
	commands []command
)

func init() {
	commands = []command{
		{
			name:    cmdQueryName,
			matcher: regexp.MustCompile("(?i)^(?P<" + rgArgGrp + ">(?:select|show)(?:\\s.*)?)$"),
			cmdFn:   queryFn,
			help:    "query the loaded file, e.g. 'show ranges', 'select where meta:DRIVE=COUPLED limit 10'",
		},
		{
			name:    cmdLoadName,
			matcher: regexp.MustCompile("(?i)^load\\s+(?P<" + rgArgGrp + ">.+)$"),
			cmdFn:   loadFn,
			help:    "parse the file with the current grammar, e.g. 'load ./quartz.uxd'",
		},
		{
			name:    cmdGrammarName,
			matcher: regexp.MustCompile("(?i)^grammar(?:\\s+(?P<" + rgArgGrp + ">.+))?$"),
			cmdFn:   grammarFn,
			help:    "show or set the grammar, e.g. 'grammar uxd' or 'grammar default RangeStartTag=_SCAN'",
		},
		{
			name:    cmdInfoName,
			matcher: regexp.MustCompile("(?i)^info$"),
			cmdFn:   infoFn,
			help:    "show the statistics of the loaded file",
		},
		{
			name:    cmdQuitName,
			matcher: regexp.MustCompile("(?i)^(?:quit|exit)$"),
			cmdFn:   quitFn,
			help:    "exit the program",
		},
		{
			name:    cmdHelpName,
			matcher: regexp.MustCompile("(?i)^help$"),
			cmdFn:   helpFn,
			help:    "show help",
		},
	}
}

func execCmd(input string, cfg *config) error {
	for _, d := range commands {
		if !d.matcher.MatchString(input) {
			if strings.HasPrefix(strings.ToLower(input), d.name) {
				return fmt.Errorf("command %s - invalid syntax", d.name)
			}
			continue
		}
		vars := getInputVars(d.matcher, input)
		cfg.arg = strings.TrimSpace(vars[rgArgGrp])
		return d.cmdFn(cfg)
	}
	return fmt.Errorf("unknown command=%v", input)
}

func getInputVars(re *regexp.Regexp, input string) map[string]string {
	match := re.FindStringSubmatch(input)
	varsMap := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if i > 0 && i < len(match) {
			varsMap[name] = match[i]
		}
	}
	return varsMap
}

//===================== query =====================

func queryFn(cfg *config) error {
	if cfg.ds == nil {
		return fmt.Errorf("no file loaded, use 'load <file>' first")
	}
	return xql.Run(cfg.arg, cfg.ds, cfg.out)
}

//===================== load =====================

func loadFn(cfg *config) error {
	return loadFile(cfg, cfg.arg)
}

func loadFile(cfg *config, fn string) error {
	fi, err := os.Stat(fn)
	if err != nil {
		return err
	}

	p, err := parser.NewParser(cfg.pcfg)
	if err != nil {
		return err
	}

	start := time.Now()
	ds, err := p.ParseFile(fn)
	if err != nil {
		return err
	}

	cfg.file = fn
	cfg.ds = ds
	cfg.stats = p.GetStats()
	cfg.size = fi.Size()
	fmt.Fprintf(cfg.out, "%s (%s): %d range(s), %s point(s), parsed in %s\n", fn,
		humanize.Bytes(uint64(cfg.size)), len(ds.Ranges), humanize.Comma(int64(ds.PointsCount())),
		time.Since(start))
	return nil
}

//===================== grammar =====================

func grammarFn(cfg *config) error {
	if cfg.arg == "" {
		fmt.Fprintln(cfg.out, cfg.pcfg)
		return nil
	}

	nameParams := strings.SplitN(cfg.arg, " ", 2)
	var params map[string]interface{}
	if len(nameParams) > 1 {
		var err error
		if params, err = parser.ParseParamsString(nameParams[1]); err != nil {
			return err
		}
	}

	pcfg, err := parser.NewConfigFromParams(nameParams[0], params)
	if err != nil {
		return err
	}
	cfg.pcfg = pcfg
	fmt.Fprintln(cfg.out, cfg.pcfg)
	return nil
}

//===================== info =====================

func infoFn(cfg *config) error {
	if cfg.ds == nil {
		return fmt.Errorf("no file loaded, use 'load <file>' first")
	}

	st := cfg.stats
	fmt.Fprintf(cfg.out, "\n%-12s %s\n", "file:", cfg.file)
	fmt.Fprintf(cfg.out, "%-12s %s\n", "size:", humanize.Bytes(uint64(cfg.size)))
	fmt.Fprintf(cfg.out, "%-12s %s\n", "grammar:", cfg.pcfg.Name)
	fmt.Fprintf(cfg.out, "%-12s %s\n", "lines:", humanize.Comma(st.Lines))
	for _, lt := range []parser.LineType{parser.LineKeyValue, parser.LineRangeStart, parser.LineDataRow,
		parser.LineIgnorable, parser.LineUnknown} {
		fmt.Fprintf(cfg.out, "  %-10s %s\n", lt.String()+":", humanize.Comma(st.Count(lt)))
	}
	fmt.Fprintf(cfg.out, "%-12s %s\n", "meta:", humanize.Comma(st.MetaEntries))
	for _, k := range cfg.ds.Meta.Keys() {
		fmt.Fprintf(cfg.out, "  %-10s %s\n", k+":", strings.Join(cfg.ds.Meta.Values(k), " | "))
	}
	fmt.Fprintf(cfg.out, "%-12s %s\n", "ranges:", humanize.Comma(st.Ranges))
	fmt.Fprintf(cfg.out, "%-12s %s\n\n", "points:", humanize.Comma(st.Points))
	return nil
}

//===================== quit =====================

func quitFn(_ *config) error {
	return errQuit
}

//===================== help =====================

func helpFn(cfg *config) error {
	fmt.Fprintf(cfg.out, "\n\t%-10s\n", "[HELP]")
	for _, c := range commands {
		fmt.Fprintf(cfg.out, "\n\t%-10s %s", c.name, c.help)
	}
	fmt.Fprint(cfg.out, "\n\n")
	return nil
}
