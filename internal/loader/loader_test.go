package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"credal/internal/parser"
	"credal/internal/program"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "p.plp", "c(1).\n0.3::a.\n0.5::b(X) :- c(X).\n?- b(1).\n")

	prog, err := New(nil).Load(path)
	require.NoError(t, err)

	if want := "c(1)."; !strings.Contains(prog.Logic, want) {
		t.Errorf("logic %q does not contain %q", prog.Logic, want)
	}
	wantPF := []program.ProbFact{{Prob: "0.3", Atom: "a"}}
	if diff := cmp.Diff(wantPF, prog.ProbFacts); diff != "" {
		t.Errorf("probabilistic facts mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, prog.ProbRules, 1)
	if prog.ProbRules[0].IsProp {
		t.Error("parameterized rule folded as propositional")
	}
	require.Len(t, prog.Queries, 1)
	if diff := cmp.Diff([]string{"b(1)"}, prog.Queries[0].Positive); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDuplicateFileIsIdempotent(t *testing.T) {
	const src = "c(1).\nc(2).\n0.3::a.\n0.5::b(X) :- c(X).\n:- b(2).\n"
	dir := t.TempDir()
	one := writeSource(t, dir, "one.plp", src)
	two := writeSource(t, dir, "two.plp", src)

	single, err := New(nil).Load(one)
	require.NoError(t, err)
	double, err := New(nil).Load(one, two)
	require.NoError(t, err)

	if diff := cmp.Diff(single, double); diff != "" {
		t.Errorf("duplicate merge changed the program (-single +merged):\n%s", diff)
	}
}

func TestMergeIsStructuralNotTextual(t *testing.T) {
	dir := t.TempDir()
	one := writeSource(t, dir, "one.plp", "a :- b, c.\nd(1).\n")
	// Same statements, different layout and spacing.
	two := writeSource(t, dir, "two.plp", "a  :-\n  b,   c.\n\nd( 1 ).\n")

	merged, err := New(nil).Load(one, two)
	require.NoError(t, err)
	alone, err := New(nil).Load(one)
	require.NoError(t, err)

	if diff := cmp.Diff(alone, merged); diff != "" {
		t.Errorf("reformatted duplicates were not merged (-alone +merged):\n%s", diff)
	}
}

func TestMergeAppendsNewStatements(t *testing.T) {
	dir := t.TempDir()
	one := writeSource(t, dir, "one.plp", "0.1::a.\n0.2::b.\n")
	two := writeSource(t, dir, "two.plp", "0.2::b.\n0.3::c.\n")

	prog, err := New(nil).Load(one, two)
	require.NoError(t, err)

	want := []program.ProbFact{
		{Prob: "0.1", Atom: "a"},
		{Prob: "0.2", Atom: "b"},
		{Prob: "0.3", Atom: "c"},
	}
	if diff := cmp.Diff(want, prog.ProbFacts); diff != "" {
		t.Errorf("merged fact order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadString(t *testing.T) {
	prog, err := New(nil).LoadString("0.3::a.", "?- a.")
	require.NoError(t, err)

	require.Len(t, prog.ProbFacts, 1)
	require.Len(t, prog.Queries, 1)
	if diff := cmp.Diff([]string{"a"}, prog.Queries[0].Positive); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadStringJoinsAcrossBlocks(t *testing.T) {
	// A statement split across two blocks must still parse: blocks are
	// joined into one source, not parsed independently.
	prog, err := New(nil).LoadString("a :-", "b.")
	require.NoError(t, err)
	if want := "a :- b."; prog.Logic != want {
		t.Errorf("logic = %q, want %q", prog.Logic, want)
	}
}

func TestNoInput(t *testing.T) {
	if _, err := New(nil).Load(); !errors.Is(err, ErrNoInput) {
		t.Errorf("Load() error = %v, want ErrNoInput", err)
	}
	if _, err := New(nil).LoadString(); !errors.Is(err, ErrNoInput) {
		t.Errorf("LoadString() error = %v, want ErrNoInput", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(nil).Load(filepath.Join(t.TempDir(), "absent.plp"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoadParseErrorIsWrapped(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "bad.plp", "a :- .\n")

	_, err := New(nil).Load(bad)
	require.Error(t, err)
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error chain %v does not contain *parser.ParseError", err)
	}
}
