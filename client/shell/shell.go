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
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/xyrange/xyrange/pkg/scanner/parser"
)

type (
	shell struct {
		cfg   *config
		hfile string
	}
)

const (
	shellHistoryFileName = ".xyr_history"
)

// Run starts the interactive shell. The grammar and params define how the
// files are parsed, the file, if not empty, is loaded before the first prompt.
func Run(grammar string, params map[string]interface{}, file string) error {
	pcfg, err := parser.NewConfigFromParams(grammar, params)
	if err != nil {
		return err
	}

	cfg := &config{pcfg: pcfg, out: os.Stdout}
	printLogo()
	if file != "" {
		if err = loadFile(cfg, file); err != nil {
			printError(err)
		}
	}
	newShell(cfg, historyFilePath()).run()
	return nil
}

func historyFilePath() string {
	var fileDir = os.TempDir()
	usr, err := user.Current()
	if err == nil {
		fileDir = usr.HomeDir
	}
	return filepath.Join(fileDir, shellHistoryFileName)
}

func printLogo() {
	fmt.Print("" +
		"__  ___   _ _ __ \n" +
		"\\ \\/ / | | | '__|\n" +
		" >  <| |_| | |   \n" +
		"/_/\\_\\\\__, |_|   \n" +
		"       |___/     \n\n")
}

func printError(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
}

//===================== shell =====================

func newShell(cfg *config, hFile string) *shell {
	s := new(shell)
	s.cfg = cfg
	s.hfile = hFile
	return s
}

func (s *shell) run() {
	lnr := liner.NewLiner()
	lnr.SetCtrlCAborts(true)

	s.loadHistory(lnr)
	defer func() {
		s.saveHistory(lnr)
		_ = lnr.Close()
		fmt.Println("bye!")
	}()

	for {
		inp, err := lnr.Prompt(s.prompt())
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				break
			}
			printError(err)
		}

		inp = strings.TrimSpace(inp)
		if inp == "" {
			continue
		}

		lnr.AppendHistory(inp)
		err = execCmd(inp, s.cfg)
		if err == errQuit {
			break
		}
		if err != nil {
			printError(err)
		}
	}
}

func (s *shell) prompt() string {
	if s.cfg.file == "" {
		return "xyr> "
	}
	return fmt.Sprintf("xyr:%s> ", filepath.Base(s.cfg.file))
}

func (s *shell) loadHistory(lnr *liner.State) {
	f, err := os.OpenFile(s.hfile, os.O_RDONLY|os.O_CREATE, 0640)
	if err != nil {
		printError(err)
		return
	}
	defer f.Close()
	if _, err = lnr.ReadHistory(f); err != nil {
		printError(err)
	}
}

func (s *shell) saveHistory(lnr *liner.State) {
	f, err := os.OpenFile(s.hfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		printError(err)
		return
	}
	defer f.Close()
	if _, err = lnr.WriteHistory(f); err != nil {
		printError(err)
	}
}
