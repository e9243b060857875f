// SPDX-License-Identifier: MIT
//
// Copyright (c) 2019 GitHub Inc.
//               2022 Unikraft GmbH.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package iostreams

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-colorable"

	"kconf.sh/utils"
)

// IOStreams bundles the three standard streams plus the terminal
// capability detection (color, TTY-ness, width) that the interactive
// configurator and the checker's human-readable output depend on
// (spec.md §9 "Interactive UI as external observer").
type IOStreams struct {
	In     io.ReadCloser
	Out    io.Writer
	ErrOut io.Writer

	colorEnabled     bool
	is256Enabled     bool
	trueColorEnabled bool

	stdinTTY  bool
	stdoutTTY bool

	neverPrompt bool
	pagerCmd    string

	progressIndicator      *spinner.Spinner
	progressIndicatorMu    sync.Mutex
	progressIndicatorEnabled bool

	colorScheme *ColorScheme
}

// System builds an IOStreams bound to the process's real stdio,
// detecting color and TTY support the way a terminal-attached CLI
// invocation expects.
func System() *IOStreams {
	stdoutIsTTY := utils.IsTerminal(os.Stdout)
	stdinIsTTY := utils.IsTerminal(os.Stdin)

	io := &IOStreams{
		In:        os.Stdin,
		stdinTTY:  stdinIsTTY,
		stdoutTTY: stdoutIsTTY,
	}

	if stdoutIsTTY {
		io.Out = colorable.NewColorable(os.Stdout)
	} else {
		io.Out = os.Stdout
	}

	if utils.IsTerminal(os.Stderr) {
		io.ErrOut = colorable.NewColorable(os.Stderr)
	} else {
		io.ErrOut = os.Stderr
	}

	if EnvColorForced() {
		io.colorEnabled = true
	} else if EnvColorDisabled() {
		io.colorEnabled = false
	} else {
		io.colorEnabled = stdoutIsTTY
	}

	io.is256Enabled = Is256ColorSupported()
	io.trueColorEnabled = IsTrueColorSupported()

	return io
}

// Test returns an IOStreams with in-memory buffers, for use by command
// tests that need to assert on rendered output without a real terminal.
func Test() (*IOStreams, *bufio.Reader, *writerCloser, *writerCloser) {
	in := io_noop{}
	out := &writerCloser{}
	errOut := &writerCloser{}

	io := &IOStreams{
		In:     io_noop{},
		Out:    out,
		ErrOut: errOut,
	}

	return io, bufio.NewReader(in), out, errOut
}

type io_noop struct{}

func (io_noop) Read(p []byte) (int, error) { return 0, io.EOF }
func (io_noop) Close() error                { return nil }

type writerCloser struct {
	buf []byte
}

func (w *writerCloser) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *writerCloser) String() string {
	return string(w.buf)
}

// ColorEnabled reports whether ANSI color sequences should be emitted.
func (s *IOStreams) ColorEnabled() bool {
	return s.colorEnabled
}

// ColorScheme returns the shared ColorScheme for the current terminal
// capabilities, constructing it on first use.
func (s *IOStreams) ColorScheme() *ColorScheme {
	if s.colorScheme == nil {
		s.colorScheme = NewColorScheme(s.colorEnabled, s.is256Enabled, s.trueColorEnabled)
	}
	return s.colorScheme
}

// IsStdoutTTY reports whether Out is connected to a terminal.
func (s *IOStreams) IsStdoutTTY() bool {
	return s.stdoutTTY
}

// IsStdinTTY reports whether In is connected to a terminal.
func (s *IOStreams) IsStdinTTY() bool {
	return s.stdinTTY
}

// SetNeverPrompt disables interactive prompting regardless of TTY-ness,
// mirroring config.Config.NoPrompt / the `--no-prompt` flag.
func (s *IOStreams) SetNeverPrompt(v bool) {
	s.neverPrompt = v
}

// CanPrompt reports whether the configurator may fall back to an
// interactive prompt for an unresolved symbol (spec.md §9).
func (s *IOStreams) CanPrompt() bool {
	return !s.neverPrompt && s.stdinTTY && s.stdoutTTY
}

// SetPager records the external pager command to use for long report
// output; an empty string disables paging.
func (s *IOStreams) SetPager(cmd string) {
	s.pagerCmd = cmd
}

// TerminalWidth returns the terminal's column width, or a conservative
// default when it cannot be determined (e.g. output is redirected).
func (s *IOStreams) TerminalWidth() int {
	if w, _, err := utils.TerminalSize(os.Stdout); err == nil && w > 0 {
		return w
	}
	return 80
}

// StartProgressIndicator begins a terminal spinner on ErrOut, a no-op
// when color/TTY output is not available.
func (s *IOStreams) StartProgressIndicator(label string) {
	if !s.colorEnabled || !s.stdoutTTY {
		return
	}

	s.progressIndicatorMu.Lock()
	defer s.progressIndicatorMu.Unlock()

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(s.ErrOut))
	if label != "" {
		sp.Suffix = " " + label
	}
	sp.Start()
	s.progressIndicator = sp
	s.progressIndicatorEnabled = true
}

// StopProgressIndicator stops a spinner started by StartProgressIndicator.
func (s *IOStreams) StopProgressIndicator() {
	s.progressIndicatorMu.Lock()
	defer s.progressIndicatorMu.Unlock()

	if s.progressIndicator != nil {
		s.progressIndicator.Stop()
		s.progressIndicator = nil
	}
	s.progressIndicatorEnabled = false
}

// StartPager pipes Out through the configured pager command for the
// duration of a long report render, restoring the direct stream via the
// returned function.
func (s *IOStreams) StartPager() (func(), error) {
	if s.pagerCmd == "" || !s.stdoutTTY {
		return func() {}, nil
	}

	cmd := exec.Command(s.pagerCmd)
	cmd.Stdout = s.Out
	cmd.Stderr = s.ErrOut

	pagerIn, err := cmd.StdinPipe()
	if err != nil {
		return func() {}, err
	}

	if err := cmd.Start(); err != nil {
		return func() {}, err
	}

	originalOut := s.Out
	s.Out = pagerIn

	return func() {
		pagerIn.Close()
		_ = cmd.Wait()
		s.Out = originalOut
	}, nil
}
