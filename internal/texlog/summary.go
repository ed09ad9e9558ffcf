package texlog

import (
	"fmt"
	"regexp"
	"strings"
)

// Failure signatures recognized for the error summary. Matching runs against
// the line after escaping and span insertion, so patterns see the highlighted
// text with the original content intact inside the span.
var (
	fontspecFatal     = regexp.MustCompile(`Fatal fontspec error: "cannot-use-pdftex"`)
	fontspecRequires  = regexp.MustCompile(`The fontspec package requires either XeTeX or LuaTeX.`)
	fontspecCannotUse = regexp.MustCompile(`\{cannot-use-pdftex\}`)

	missfontPresent = regexp.MustCompile(`missfont.log present`)

	rerunHint      = regexp.MustCompile(`rerunfilecheck|rerun`)
	fourPassNotice = regexp.MustCompile(`get arXiv to do 4 passes\: Label\(s\) may have changed`)
	// The oberdiek bundle mentions rerun handling in its own benign output.
	oberdiekPackage = regexp.MustCompile(`oberdiek`)

	missingFilePattern   = regexp.MustCompile(`(?i)file (.*) not found`)
	emergencyStopPattern = regexp.MustCompile(`(?i)emergency stop`)
)

// errorSummary accumulates the HTML list of critical errors. The block is
// opened lazily on the first entry and closed exactly once by String.
type errorSummary struct {
	buf strings.Builder
}

func (s *errorSummary) add(entry string) {
	if s.buf.Len() == 0 {
		s.buf.WriteString("\nSummary of <span class=\"tex-fatal\">Critical Errors:</span>\n\n<ul>\n")
	} else {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(entry)
}

func (s *errorSummary) String() string {
	if s.buf.Len() == 0 {
		return ""
	}
	return s.buf.String() + "</ul>\n"
}

// reportFailureSignatures inspects a line whose filter just fired and adds
// error-summary entries for the recognized failure cases. Every entry is
// gated by a one-shot latch so it appears at most once per transcript.
func reportFailureSignatures(line string, actual, effective Severity, st *scanState, sum *errorSummary, submissionID int64) {
	// XeTeX/LuaTeX via fontspec is the only full-abort case: the entry is
	// added once and the abort latch restricts all later classification.
	if !st.abort && actual == SeverityAbort &&
		(fontspecFatal.MatchString(line) ||
			fontspecRequires.MatchString(line) ||
			fontspecCannotUse.MatchString(line)) {
		sum.add(abortEntry(submissionID))
		st.xetexLuatexAbort = true
		st.abort = true
	}

	if !st.missingFont && effective == SeverityFatal && missfontPresent.MatchString(line) {
		sum.add(missingFontEntry(submissionID))
		st.missingFont = true
	}

	// A rerun request on the final run means the submission needs a forced
	// extra pass. The self-resolving "4 passes" notice and oberdiek's own
	// output are deliberately excluded.
	if !st.rerunNeeded && effective == SeverityDanger &&
		rerunHint.MatchString(line) &&
		!fourPassNotice.MatchString(line) &&
		!oberdiekPackage.MatchString(line) {
		sum.add(rerunEntry)
		// Significant enough to count as a final-run warning.
		st.finalWarnings = true
		st.rerunNeeded = true
	}

	// Missing files are reported whichever run they appear on: transcript
	// truncation can hide the error on the run where it is expected.
	if !st.missingFile && effective == SeverityDanger && missingFilePattern.MatchString(line) {
		sum.add(missingFileEntry(line))
		st.missingFile = true
	}

	// Emergency stops usually accompany a missing file; once that entry
	// exists a second explanation would only add noise.
	if !st.missingFile && !st.emergencyStop && effective == SeverityDanger &&
		emergencyStopPattern.MatchString(line) {
		sum.add(emergencyStopEntry)
		st.emergencyStop = true
	}
}

func abortEntry(submissionID int64) string {
	return fmt.Sprintf(
		"\t<li>At the current time arXiv does not support XeTeX/LuaTeX.\n\n"+
			"\tIf you believe that your submission requires a compilation "+
			"method \n\tunsupported by arXiv, please contact "+
			"<span class=\"tex-help\">help@arxiv.org</span> for "+
			"\n\tmore information and provide us with this "+
			"submit/%d identifier.</li>", submissionID)
}

func missingFontEntry(submissionID int64) string {
	return fmt.Sprintf(
		"\t<li>A font required by your paper is not available. "+
			"You may try to \n\tinclude a non-standard font or "+
			"substitue an alternative font. \n\tSee <span "+
			"class=\"tex-help\"><a href=\"https://arxiv.org/"+
			"help/00README#fontmap\">Custom Fontmaps</a></span>. If "+
			"this is due to a problem with \n\tour system, please "+
			"contact <span class=\"tex-help\">help@arxiv.org</span>"+
			" with details \n\tand provide us with this "+
			"submission identifier: submit/%d.</li>", submissionID)
}

const rerunEntry = "\t<li>Analysis of the compilation log indicates " +
	"your submission \n\tmay need an additional TeX run. " +
	"Please add the following line \n\tto your source in " +
	"order to force an additional TeX run:\n\n" +
	"\t<span class=\"tex-help\">\\typeout{get arXiv " +
	"to do 4 passes: Label(s) may have changed. Rerun}</span>" +
	"\n\n\tAdd the above line just before <span " +
	"class=\"tex-help\">\\end{document}</span> directive." +
	"/li>"

func missingFileEntry(line string) string {
	return fmt.Sprintf(
		"<li>\tA file required by your submission was not found."+
			"\n\t%s\n\tPlease upload any missing files, or "+
			"correct any file naming issues, and then reprocess"+
			" your submission.</li>", line)
}

const emergencyStopEntry = "\t<li>We detected an emergency stop during one of the TeX" +
	" compilation runs. Please review the compilation log" +
	" to determie whether there is a serious issue with " +
	"your submission source.</li>"
