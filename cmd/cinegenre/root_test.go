package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "cinegenre ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPrepareAndRuns(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "movies.csv")
	csv := "Plot,Genre\n" +
		"\"A soldier leads the final battle\",Action\n" +
		"\"Two lovers meet at a wedding\",\"Romance, Drama\"\n" +
		"\"A detective hunts a killer\",Crime\n"
	if err := os.WriteFile(primary, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CINEGENRE_DATA__DB_PATH", filepath.Join(dir, "corpus.db"))
	t.Setenv("CINEGENRE_MODELS__DIR", filepath.Join(dir, "models"))
	t.Setenv("CINEGENRE_LOGGING__LEVEL", "error")
	t.Setenv("CINEGENRE_TRANSLATE__PROVIDER", "none")

	out, err := execute(t, "prepare", "--primary", primary, "--supplementary", filepath.Join(dir, "missing.csv"))
	if err != nil {
		t.Fatalf("prepare: %v\n%s", err, out)
	}
	if !strings.Contains(out, "total") || !strings.Contains(out, "Action_Adventure") {
		t.Errorf("expected group table, got:\n%s", out)
	}

	out, err = execute(t, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "No runs recorded.") {
		t.Errorf("expected empty run list, got:\n%s", out)
	}
}

func TestPredictWithoutChampion(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CINEGENRE_MODELS__DIR", filepath.Join(dir, "models"))
	t.Setenv("CINEGENRE_LOGGING__LEVEL", "error")
	t.Setenv("CINEGENRE_TRANSLATE__PROVIDER", "none")

	if _, err := execute(t, "predict", "a soldier leads the final battle"); err == nil {
		t.Fatal("expected an error without a trained champion")
	}
}
