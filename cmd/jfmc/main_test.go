package main

import "testing"

func TestFormatDiagnosticHonorsColorFlag(t *testing.T) {
	plain := formatDiagnostic("a.jfm:1:1: undefined identifier", false)
	if plain != "a.jfm:1:1: undefined identifier" {
		t.Errorf("expected no escapes when color is disabled, got %q", plain)
	}

	colored := formatDiagnostic("a.jfm:1:1: undefined identifier", true)
	if colored == plain {
		t.Errorf("expected colored output to differ from plain output")
	}
}
