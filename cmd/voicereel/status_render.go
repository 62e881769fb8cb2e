package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelOK
	levelWarn
	levelFail
)

var levelStyles = map[statusLevel]struct {
	tag   string
	color string
}{
	levelInfo: {tag: "INFO", color: "\x1b[34m"},
	levelOK:   {tag: "OK", color: "\x1b[32m"},
	levelWarn: {tag: "WARN", color: "\x1b[33m"},
	levelFail: {tag: "FAIL", color: "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusReport collects sectioned "label: [TAG] detail" lines for terminal
// output. Color is applied only when the destination is a TTY.
type statusReport struct {
	lines    []string
	colorize bool
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{colorize: shouldColorize(w)}
}

func (r *statusReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	r.lines = append(r.lines, r.paint(levelInfo, "== "+strings.TrimSpace(title)+" =="))
}

func (r *statusReport) item(label string, level statusLevel, detail string) {
	text := fmt.Sprintf("  %-20s [%s]", label+":", levelStyles[level].tag)
	if detail != "" {
		text += " " + detail
	}
	r.lines = append(r.lines, r.paint(level, text))
}

func (r *statusReport) block(text string) {
	r.lines = append(r.lines, strings.TrimRight(text, "\n"))
}

func (r *statusReport) paint(level statusLevel, text string) string {
	if !r.colorize {
		return text
	}
	return levelStyles[level].color + text + ansiReset
}

func (r *statusReport) String() string {
	return strings.Join(r.lines, "\n")
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
