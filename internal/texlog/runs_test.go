package texlog_test

import (
	"strings"
	"testing"

	"autotex/internal/texlog"
)

func TestRunsDiscoversEnginesInOrder(t *testing.T) {
	log := strings.Join([]string{
		banner("htex", "first"),
		banner("tex", "first"),
		banner("tex", "second"),
		"trailing output",
	}, "\n")

	runs := texlog.Runs(log)
	want := []texlog.Run{
		{Engine: "htex", Ordinal: "first"},
		{Engine: "tex", Ordinal: "first"},
		{Engine: "tex", Ordinal: "second"},
	}
	if len(runs) != len(want) {
		t.Fatalf("expected %d runs, got %d: %#v", len(want), len(runs), runs)
	}
	for i, run := range runs {
		if run != want[i] {
			t.Fatalf("run %d: expected %#v, got %#v", i, want[i], run)
		}
	}
}

func TestRunsEmptyForBannerlessLog(t *testing.T) {
	if runs := texlog.Runs("nothing to see here\n"); len(runs) != 0 {
		t.Fatalf("expected no runs, got %#v", runs)
	}
}

func TestAnnotateFifthRunOrdinalStillClassifies(t *testing.T) {
	// Ordinals beyond "fourth" have no position in the activation table;
	// they rank after it so numeric activations keep applying and "last"
	// still matches by equality with the engine's final recorded run.
	log := strings.Join([]string{
		banner("pdflatex", "first"),
		"Package foo warning: early",
		banner("pdflatex", "fifth"),
		"Package foo warning: late",
	}, "\n")

	out := texlog.Annotate(log, 1, texlog.StatusSucceeded)
	if strings.Count(out, `<span class="tex-warning">warning</span>`) != 1 {
		t.Fatalf("expected second-run-onward warning rule active on a fifth run:\n%s", out)
	}
}
