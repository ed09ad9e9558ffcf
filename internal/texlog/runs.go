package texlog

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	engineTeX      = "tex"
	engineLaTeX    = "latex"
	enginePDFLaTeX = "pdflatex"
)

// runBanner matches the decorated announcement autotex prints before each
// engine invocation, e.g.
//
//	~~~~~~~~~~~ Running pdflatex for the second time ~~~~~~~~
var runBanner = regexp.MustCompile(`(?im)~+\sRunning (.*) for the (.*) time\s~+`)

// noLogAvailable is the sentinel autotex emits when no transcript exists.
var noLogAvailable = regexp.MustCompile(`No log available.`)

// Banner patterns for the real engines and their hypertex variants. Once a
// real run for an engine is observed, the matching hypertex run is suppressed:
// the two runs are near-identical and showing both is noise. A hypertex run
// with no real counterpart is still displayed and marked up.
var (
	enableTeX      = regexp.MustCompile(`(?i)(~+\sRunning tex.*\s~+)`)
	enableLaTeX    = regexp.MustCompile(`(?i)(~+\sRunning latex.*\s~+)`)
	enablePDFLaTeX = regexp.MustCompile(`(?i)(~+\sRunning pdflatex.*\s~+)`)

	disableHTeX      = regexp.MustCompile(`(?i)(~+\sRunning htex.*\s~+)`)
	disableHLaTeX    = regexp.MustCompile(`(?i)(~+\sRunning hlatex.*\s~+)`)
	disableHPDFLaTeX = regexp.MustCompile(`(?i)(~+\sRunning hpdflatex.*\s~+)`)
)

// Run is one engine invocation discovered in a transcript.
type Run struct {
	Engine  string
	Ordinal string
}

// Runs returns every engine invocation announced in the transcript, in order.
func Runs(autotexLog string) []Run {
	return discoverRuns(autotexLog).runs
}

// discovery is the result of the run-discovery pass: the run list, each
// engine's last recorded ordinal, the enable/disable banner patterns derived
// from the engines observed, and the final run of the whole transcript.
type discovery struct {
	runs         []Run
	engines      []string // first-seen order, for deterministic summaries
	lastByEngine map[string]string

	enable  []*regexp.Regexp
	disable []*regexp.Regexp

	finalEngine  string
	finalOrdinal string
}

func discoverRuns(autotexLog string) *discovery {
	d := &discovery{lastByEngine: make(map[string]string)}

	for _, m := range runBanner.FindAllStringSubmatch(autotexLog, -1) {
		engine, ordinal := m[1], m[2]

		if _, seen := d.lastByEngine[engine]; !seen {
			d.engines = append(d.engines, engine)
			switch engine {
			case enginePDFLaTeX:
				d.enable = append(d.enable, enablePDFLaTeX)
				d.disable = append(d.disable, disableHPDFLaTeX)
			case engineLaTeX:
				d.enable = append(d.enable, enableLaTeX)
				d.disable = append(d.disable, disableHLaTeX)
			case engineTeX:
				d.enable = append(d.enable, enableTeX)
				d.disable = append(d.disable, disableHTeX)
			}
		}
		d.lastByEngine[engine] = ordinal
		d.runs = append(d.runs, Run{Engine: engine, Ordinal: ordinal})
		d.finalEngine, d.finalOrdinal = engine, ordinal
	}

	return d
}

// summary renders the human-readable account of discovered runs that heads
// the annotated report.
func (d *discovery) summary() string {
	var b strings.Builder
	b.WriteString("If you are attempting to compile " +
		"with a specific engine (PDFLaTeX, LaTeX, \nTeX) please " +
		"carefully review the appropriate log below.\n\n")
	b.WriteString("Summary of TeX runs:\n\n")
	for _, run := range d.runs {
		fmt.Fprintf(&b, "\tRunning %s for %s time.\n", run.Engine, run.Ordinal)
	}
	b.WriteString("\n")
	for _, engine := range d.engines {
		fmt.Fprintf(&b, "\tLast run for engine %s is %s\n", engine, d.lastByEngine[engine])
	}
	return b.String()
}
