package compiler

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// compileAndRun compiles SL source through the full pipeline, writes the
// emitted C to a temp file, compiles it with cc, runs the binary, and
// returns its stdout.
func compileAndRun(t *testing.T, source string) string {
	t.Helper()

	c := New(WithFilename("e2e.jfm"))
	result := c.Compile(source)
	if result.Diags.HasErrors() {
		for _, d := range result.Diags.Diagnostics() {
			t.Errorf("diagnostic: %s", d)
		}
		t.FailNow()
	}

	tmpDir, err := os.MkdirTemp("", "jfmc-e2e-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cFile := filepath.Join(tmpDir, "main.c")
	if err := os.WriteFile(cFile, []byte(result.C), 0644); err != nil {
		t.Fatalf("failed to write C file: %v", err)
	}

	binFile := filepath.Join(tmpDir, "main")
	compileCmd := exec.Command("cc", "-std=c11", "-o", binFile, cFile, "-lm")
	if out, err := compileCmd.CombinedOutput(); err != nil {
		t.Fatalf("cc failed: %v\nOutput: %s\nC code:\n%s", err, out, result.C)
	}

	runCmd := exec.Command(binFile)
	var sb strings.Builder
	runCmd.Stdout = &sb
	runCmd.Stderr = &sb
	if err := runCmd.Run(); err != nil {
		t.Fatalf("execution failed: %v\nOutput: %s", err, sb.String())
	}
	return sb.String()
}
