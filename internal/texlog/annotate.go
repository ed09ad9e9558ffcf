package texlog

import (
	"fmt"
	"html"
	"strings"
)

// Status is the overall compilation outcome reported by the compiler service.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Annotator classifies transcript lines against a compiled filter table.
// The zero-cost default (see Annotate) uses only the built-in rules.
type Annotator struct {
	filters []filter
}

// New builds an annotator from the built-in rule table plus any extra rules,
// appended after the built-ins so their precedence is never disturbed.
func New(extra ...Rule) (*Annotator, error) {
	rules := make([]Rule, 0, len(builtinRules)+len(extra))
	rules = append(rules, builtinRules...)
	rules = append(rules, extra...)

	filters, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Annotator{filters: filters}, nil
}

var defaultAnnotator = func() *Annotator {
	a, err := New()
	if err != nil {
		panic(fmt.Sprintf("texlog: compile built-in rules: %v", err))
	}
	return a
}()

// Annotate highlights a transcript using the built-in rules only.
func Annotate(autotexLog string, submissionID int64, status Status) string {
	return defaultAnnotator.Annotate(autotexLog, submissionID, status)
}

// scanState is the mutable classification state for one Annotate call. Each
// call owns a fresh instance; nothing here outlives the call.
type scanState struct {
	engine  string
	ordinal string
	lastRun bool

	markupEnabled bool

	// abort latches once a full-abort rule fires and restricts all further
	// classification to fatal/abort severities. It never clears mid-call.
	abort bool

	// One-shot latches: each error-summary entry is added at most once.
	xetexLuatexAbort bool
	missingFont      bool
	rerunNeeded      bool
	missingFile      bool
	emergencyStop    bool

	// Accumulated from rules that fire on the transcript's final run; feeds
	// the derived status when the compilation nominally succeeded.
	finalWarnings bool
	finalErrors   bool
}

// Annotate produces the annotated report for one transcript: run summary,
// derived status line, error summary (when any entries were collected), and
// the marked-up log body. The raw text is returned unchanged when no log was
// produced or no run banners exist to anchor classification.
func (a *Annotator) Annotate(autotexLog string, submissionID int64, status Status) string {
	if noLogAvailable.MatchString(autotexLog) {
		return autotexLog
	}

	disc := discoverRuns(autotexLog)
	if len(disc.runs) == 0 {
		return autotexLog
	}

	st := &scanState{markupEnabled: true}
	sum := &errorSummary{}
	var body strings.Builder

	for _, line := range splitLines(autotexLog) {
		// Escape before anything else so classification can never build
		// markup out of log content.
		line = html.EscapeString(line)

		for _, re := range disc.disable {
			if re.MatchString(line) {
				st.markupEnabled = false
				break
			}
		}

		for _, re := range disc.enable {
			if re.MatchString(line) {
				st.markupEnabled = true
				if m := runBanner.FindStringSubmatch(line); m != nil {
					st.engine, st.ordinal = m[1], m[2]
				}
				if st.engine != "" && st.ordinal != "" &&
					disc.lastByEngine[st.engine] == st.ordinal {
					st.lastRun = true
				}
				break
			}
		}

		// Banners that are neither enable nor disable patterns (hidden
		// variants with no real counterpart) still move the current run.
		if m := runBanner.FindStringSubmatch(line); m != nil {
			st.engine, st.ordinal = m[1], m[2]
			if disc.lastByEngine[st.engine] == st.ordinal {
				st.lastRun = true
			}
		}

		// Suppressed runs are dropped from the displayed log entirely.
		if !st.markupEnabled {
			continue
		}

		line = a.classify(line, st, disc, sum, submissionID, status)
		body.WriteString(line)
		body.WriteByte('\n')
	}

	class, message := deriveStatus(status, st)
	statusLine := fmt.Sprintf("\nProcessing Status: <span class=\"tex-%s\">%s</span>\n\n", class, message)

	return disc.summary() + statusLine + sum.String() +
		"\n\n<b>Marked Up Log:</b>\n\n" + body.String()
}

// classify applies the filter table to one escaped line. At most one filter
// fires; its match is wrapped in a severity span and any recognized failure
// signature is reported to the error summary.
func (a *Annotator) classify(line string, st *scanState, disc *discovery, sum *errorSummary, submissionID int64, status Status) string {
	for _, f := range a.filters {
		if st.abort && f.severity != SeverityFatal && f.severity != SeverityAbort {
			continue
		}

		activation := f.run
		if activation == "" {
			activation = "first"
		}
		if st.ordinal != "" &&
			(ordinalRank(activation) > ordinalRank(st.ordinal) ||
				(activation == ordinalLast && st.ordinal != disc.lastByEngine[st.engine])) {
			continue
		}

		if !f.re.MatchString(line) {
			continue
		}

		severity := f.severity
		if severity == SeverityAbort {
			severity = SeverityFatal
		}
		line = f.re.ReplaceAllString(line, `<span class="tex-`+string(severity)+`">$1</span>`)

		// Problems on the final run refine a nominally successful outcome.
		if status == StatusSucceeded &&
			st.engine == disc.finalEngine && st.ordinal == disc.finalOrdinal {
			switch severity {
			case SeverityWarning:
				st.finalWarnings = true
			case SeverityDanger, SeverityFatal:
				st.finalErrors = true
			}
		}

		reportFailureSignatures(line, f.severity, severity, st, sum, submissionID)
		break
	}
	return line
}

// splitLines splits a transcript the way the scanner consumes it: any line
// ending convention, no synthetic trailing empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
