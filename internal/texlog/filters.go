package texlog

import (
	"fmt"
	"regexp"
)

// Severity is the classification bucket assigned to a highlighted span.
type Severity string

const (
	SeverityIgnore     Severity = "ignore"
	SeverityAbort      Severity = "abort"
	SeverityFatal      Severity = "fatal"
	SeverityDanger     Severity = "danger"
	SeverityWarning    Severity = "warning"
	SeverityInfo       Severity = "info"
	SeveritySuccess    Severity = "success"
	SeverityHelp       Severity = "help"
	SeveritySuggestion Severity = "suggestion"
)

var validSeverities = map[Severity]struct{}{
	SeverityIgnore:     {},
	SeverityAbort:      {},
	SeverityFatal:      {},
	SeverityDanger:     {},
	SeverityWarning:    {},
	SeverityInfo:       {},
	SeveritySuccess:    {},
	SeverityHelp:       {},
	SeveritySuggestion: {},
}

// Valid reports whether the severity is one of the known classification buckets.
func (s Severity) Valid() bool {
	_, ok := validSeverities[s]
	return ok
}

// Rule describes one markup filter: lines matching Pattern (case-insensitive)
// are wrapped in a span for Severity. Run controls when the rule activates:
// a numeric ordinal ("first" through "fourth") applies from that run onward,
// "last" applies only to an engine's final run, and empty defaults to "first".
type Rule struct {
	Severity Severity `yaml:"severity"`
	Pattern  string   `yaml:"pattern"`
	Run      string   `yaml:"run"`
}

type filter struct {
	severity Severity
	re       *regexp.Regexp
	run      string
}

// builtinRules is applied in order, first match wins, one rule per line.
// When two rules match the same text the more restrictive one must come
// first: the trailing ignore rules deliberately shadow the warning rules
// for first-run output.
var builtinRules = []Rule{
	{SeverityIgnore, `get arXiv to do 4 passes\: Label\(s\) may have changed`, ""},

	// Abort rules render with the fatal class and then latch classification
	// to fatal/abort for the rest of the scan.
	{SeverityAbort, `Fatal fontspec error: "cannot-use-pdftex"`, ""},
	{SeverityAbort, `The fontspec package requires either XeTeX or LuaTeX.`, ""},
	{SeverityAbort, `\{cannot-use-pdftex\}`, ""},

	{SeverityFatal, `\*\*\* AutoTeX ABORTING \*\*\*`, ""},
	{SeverityFatal, `.*AutoTeX returned error: missfont.log present.`, ""},
	{SeverityFatal, `dvips: Font .* not found; characters will be left blank.`, ""},
	{SeverityFatal, `.*missfont.log present.`, ""},

	{SeverityFatal, `Fatal .* error`, ""},
	{SeverityFatal, `fatal`, ""},

	{SeverityDanger, `file (.*) not found`, ""},
	{SeverityDanger, `failed`, ""},
	{SeverityDanger, `emergency stop`, ""},
	{SeverityDanger, `not allowed`, ""},
	{SeverityDanger, `does not exist`, ""},

	// Must come before the generic warning rules below.
	{SeverityDanger, `Package rerunfilecheck Warning:.*`, "last"},
	{SeverityDanger, `.*\(rerunfilecheck\).*`, "last"},
	{SeverityDanger, `rerun`, "last"},

	{SeverityWarning, `Citation.*undefined`, "last"},
	{SeverityWarning, `Reference.*undefined`, "last"},
	{SeverityWarning, `No .* file`, ""},
	{SeverityWarning, `warning`, "second"},
	{SeverityWarning, `unsupported`, ""},
	{SeverityWarning, `unable`, ""},
	{SeverityWarning, `ignore`, ""},
	{SeverityWarning, `undefined`, "second"},

	{SeverityInfo, `~+\sRunning.*\s~+`, ""},
	{SeverityInfo, `(\*\*\* Using TeX Live 2016 \*\*\*)`, ""},

	{SeveritySuccess, `(Extracting files from archive:)`, ""},
	{SeveritySuccess, `Successfully created PDF file:`, ""},
	{SeveritySuccess, `\*\* AutoTeX job completed. \*\*`, ""},

	// Undefined references and citations are expected on the first run; the
	// last-run warning rules above take precedence when they matter.
	{SeverityIgnore, `Reference.*undefined`, "first"},
	{SeverityIgnore, `Citation.*undefined`, "first"},
	{SeverityIgnore, `warning`, "first"},
	{SeverityIgnore, `undefined`, "first"},
}

func compileRules(rules []Rule) ([]filter, error) {
	compiled := make([]filter, 0, len(rules))
	for i, rule := range rules {
		if !rule.Severity.Valid() {
			return nil, fmt.Errorf("rule %d: unknown severity %q", i, rule.Severity)
		}
		if !validActivation(rule.Run) {
			return nil, fmt.Errorf("rule %d: unknown run activation %q", i, rule.Run)
		}
		re, err := regexp.Compile(`(?i)(` + rule.Pattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("rule %d: compile pattern %q: %w", i, rule.Pattern, err)
		}
		compiled = append(compiled, filter{severity: rule.Severity, re: re, run: rule.Run})
	}
	return compiled, nil
}

// ordinalLast is a sentinel, not a position in the run sequence: a rule
// activated on "last" fires only during an engine's final recorded run.
const ordinalLast = "last"

// runOrder is the canonical activation ordering. Comparison is by list index,
// never by parsing the ordinal word.
var runOrder = []string{ordinalLast, "first", "second", "third", "fourth"}

// ordinalRank returns the position of an ordinal in runOrder. Ordinals beyond
// "fourth" (a fifth or later run) have no defined position; they rank after
// "fourth" so rules with any numeric activation continue to apply.
func ordinalRank(name string) int {
	for i, known := range runOrder {
		if known == name {
			return i
		}
	}
	return len(runOrder)
}

func validActivation(run string) bool {
	if run == "" {
		return true
	}
	return ordinalRank(run) < len(runOrder)
}
