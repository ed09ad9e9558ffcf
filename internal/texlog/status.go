package texlog

// deriveStatus folds the reported compilation outcome together with what the
// scan observed into the display class and message for the status line.
// Failed submissions carry warnings and errors of unknown significance, so
// only the XeTeX/LuaTeX abort refines the message; for successful ones the
// final run's accumulated warnings and errors pick among four refinements.
func deriveStatus(status Status, st *scanState) (Severity, string) {
	switch status {
	case StatusFailed:
		if st.xetexLuatexAbort {
			return SeverityFatal, "Failed: XeTeX/LuaTeX are not supported at current time."
		}
		return SeverityFatal, "Failed"
	case StatusSucceeded:
		switch {
		case st.finalErrors && !st.finalWarnings:
			return SeverityDanger, "Succeeded with possible errors. " +
				"\n\t\tBe sure to carefully inspect log (see below)."
		case !st.finalErrors && st.finalWarnings:
			return SeverityWarning, "Succeeded with warnings. We recommend that you " +
				"\n\t\tinspect the log (see below)."
		case st.finalErrors && st.finalWarnings:
			return SeverityDanger, "Succeeded with (possibly significant) errors and " +
				"warnings. \n\t\tPlease be sure to carefully inspect " +
				"log (see below)."
		default:
			return SeveritySuccess, "Succeeded!"
		}
	default:
		return SeverityWarning, "Succeeded with warnings"
	}
}
