package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firemesscode/drevorod/pkg/family"
	fio "github.com/firemesscode/drevorod/pkg/io"
	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/rank"
	"github.com/firemesscode/drevorod/pkg/render"
)

// isolate points HOME and the working directory at a temp dir so no user
// config is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []render.Format
		wantErr bool
	}{
		{"", []render.Format{render.FormatSVG}, false},
		{"svg,png", []render.Format{render.FormatSVG, render.FormatPNG}, false},
		{" JSON , dot ", []render.Format{render.FormatJSON, render.FormatDOT}, false},
		{"svg,gif", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormats(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormats(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if strings.Join(formatNames(got), ",") != strings.Join(formatNames(tt.want), ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func formatNames(fs []render.Format) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output string
		format render.Format
		single bool
		want   string
	}{
		{"", render.FormatSVG, true, "family.svg"},
		{"tree.svg", render.FormatSVG, true, "tree.svg"},
		{"tree.out", render.FormatPNG, true, "tree.out"},
		{"tree", render.FormatPNG, true, "tree.png"},
		{"tree.svg", render.FormatPNG, false, "tree.png"},
		{"out/tree", render.FormatGraphviz, false, "out/tree.graphviz.svg"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.format, tt.single); got != tt.want {
			t.Errorf("outputPath(%q, %s, %v) = %q, want %q", tt.output, tt.format, tt.single, got, tt.want)
		}
	}
}

func TestInitAndEdit(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "family.json")

	if err := run(t, "init", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := run(t, "init", path); err == nil {
		t.Fatal("init over an existing file should fail without --force")
	}

	steps := [][]string{
		{"--data", path, "person", "add", "--id", "6", "--last", "Иванова", "--first", "Анна"},
		{"--data", path, "union", "assign", "3", "4", "6"},
		{"--data", path, "person", "edit", "6", "--birth", "2008-04-12"},
		{"--data", path, "rel", "edit", "r4", "--label", "с 1998"},
		{"--data", path, "rel", "rm", "r1"},
	}
	for _, args := range steps {
		if err := run(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	snap, err := fio.ImportFile(path)
	if err != nil {
		t.Fatal(err)
	}
	anna, ok := snap.Person("6")
	if !ok || anna.BirthDate != "2008-04-12" {
		t.Errorf("person 6 = %+v, %v", anna, ok)
	}
	if got := snap.Parents("6"); len(got) != 2 {
		t.Errorf("parents of 6 = %v, want 3 and 4", got)
	}
	if r, _ := snap.Relationship("r4"); r.Label != "с 1998" {
		t.Errorf("r4 label = %q", r.Label)
	}
	if _, ok := snap.Relationship("r1"); ok {
		t.Error("r1 should be removed")
	}

	if err := run(t, "--data", path, "person", "rm", "6"); err != nil {
		t.Fatal(err)
	}
	snap, _ = fio.ImportFile(path)
	if len(snap.RelationshipsOf("6")) != 0 {
		t.Error("removing a person should remove their relationships")
	}
}

func TestEditErrors(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "family.toml")
	if err := run(t, "init", path); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"--data", path, "person", "add", "--first", "Анна"},
		{"--data", path, "rel", "add", "1", "404"},
		{"--data", path, "rel", "add", "1", "2", "--type", "cousin"},
		{"--data", path, "union", "assign", "1", "3", "5"},
		{"--data", path, "person", "edit", "404", "--first", "X"},
	} {
		if err := run(t, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestRender(t *testing.T) {
	dir := isolate(t)
	data := filepath.Join(dir, "family.json")
	if err := run(t, "init", data); err != nil {
		t.Fatal(err)
	}
	base := filepath.Join(dir, "tree")
	if err := run(t, "--data", data, "render", "-e", rank.EngineLayered, "-f", "svg,json,dot", "-o", base); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, ext := range []string{"svg", "json", "dot"} {
		info, err := os.Stat(base + "." + ext)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s.%s not written: %v", base, ext, err)
		}
	}
	svg, _ := os.ReadFile(base + ".svg")
	if !strings.Contains(string(svg), "Иванов") {
		t.Error("svg should contain person names")
	}
}

func TestGenerations(t *testing.T) {
	l, err := layout.Compute(context.Background(), family.Demo(), rank.Layered{})
	if err != nil {
		t.Fatal(err)
	}
	rows := generations(family.Demo(), l)
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	want := map[string]int{"1": 1, "2": 1, "3": 2, "4": 2, "5": 3}
	for _, r := range rows {
		if r.generation != want[r.person.ID] {
			t.Errorf("person %s generation = %d, want %d", r.person.ID, r.generation, want[r.person.ID])
		}
	}
}

func TestBrowseModel(t *testing.T) {
	snap := family.Demo()
	l, err := layout.Compute(context.Background(), snap, rank.Layered{})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var m tea.Model = newBrowseModel(snap, l, now)
	if !strings.Contains(m.View(), "Born in") {
		t.Error("list view should show the table header")
	}

	target := -1
	for i, r := range m.(browseModel).rows {
		if r.person.ID == "3" {
			target = i
		}
	}
	if target < 0 {
		t.Fatal("person 3 not listed")
	}
	for range target {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	for _, want := range []string{"Иванов Алексей Иванович", "age 50", "Иванов Иван Иванович", "Иванов Дмитрий Алексеевич"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(browseModel).detailed {
		t.Error("esc should return to the list")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestRoman(t *testing.T) {
	for n, want := range map[int]string{1: "I", 3: "III", 4: "IV", 9: "IX", 14: "XIV", 0: "0", 40: "40"} {
		if got := roman(n); got != want {
			t.Errorf("roman(%d) = %q, want %q", n, got, want)
		}
	}
}
