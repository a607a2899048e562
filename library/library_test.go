package library_test

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsariola/drumkit"
	"github.com/vsariola/drumkit/doc"
	"github.com/vsariola/drumkit/library"
)

func writeKit(t *testing.T, dir, name, file string, instruments ...string) string {
	t.Helper()
	kitDir := filepath.Join(dir, name)
	if err := os.MkdirAll(kitDir, 0755); err != nil {
		t.Fatal(err)
	}
	kit := &drumkit.Kit{Name: library.DisplayName(name), Author: "tester"}
	for idx, n := range instruments {
		i := drumkit.NewInstrument(idx, n, drumkit.DefaultADSR())
		i.ReplaceLayer(0, drumkit.NewLayer(drumkit.NewSample(strings.ToLower(n)+".wav", nil)), nil)
		kit.Instruments = append(kit.Instruments, i)
	}
	if err := library.WriteKitFile(kit, filepath.Join(kitDir, file)); err != nil {
		t.Fatal(err)
	}
	return kitDir
}

func TestKitPathAndLoad(t *testing.T) {
	user := t.TempDir()
	system := t.TempDir()
	writeKit(t, user, "rock_kit", "drumkit.yml", "Kick", "Snare")
	writeKit(t, system, "rock_kit", "drumkit.xml", "Kick")
	jazz := writeKit(t, system, "jazz", "drumkit.xml", "Ride")
	lib := &library.Library{Dirs: []string{user, system}, Schema: "schema.yml"}

	path, ok := lib.KitPath("rock kit")
	if !ok || path != filepath.Join(user, "rock_kit") {
		t.Fatalf("KitPath(rock kit) = %v %v", path, ok)
	}
	if path, ok := lib.KitPath("jazz"); !ok || path != jazz {
		t.Fatalf("KitPath(jazz) = %v %v", path, ok)
	}
	if _, ok := lib.KitPath("metal"); ok {
		t.Fatal("unknown kit found")
	}
	kit, err := lib.LoadKit(path)
	if err != nil {
		t.Fatalf("could not load kit: %v", err)
	}
	if kit.Name != "Rock Kit" || kit.Path != path || len(kit.Instruments) != 2 {
		t.Fatalf("unexpected kit %+v", kit)
	}
	if _, err := lib.LoadKit(t.TempDir()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestKits(t *testing.T) {
	user := t.TempDir()
	system := t.TempDir()
	writeKit(t, user, "b_kit", "drumkit.xml")
	writeKit(t, system, "b_kit", "drumkit.xml")
	writeKit(t, system, "a_kit", "drumkit.yaml")
	if err := os.MkdirAll(filepath.Join(system, "not_a_kit"), 0755); err != nil {
		t.Fatal(err)
	}
	lib := &library.Library{Dirs: []string{user, system, filepath.Join(user, "missing")}}
	kits := lib.Kits()
	if len(kits) != 2 {
		t.Fatalf("got %d kits, want 2", len(kits))
	}
	if kits[0].Name != "a_kit" || kits[1].Name != "b_kit" || kits[1].Path != filepath.Join(user, "b_kit") {
		t.Fatalf("unexpected kits %+v", kits)
	}
}

func TestSchemaRejectsBrokenKit(t *testing.T) {
	dir := t.TempDir()
	kitDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(kitDir, 0755); err != nil {
		t.Fatal(err)
	}
	content := "<drumkit_info><name>Broken</name><instrumentList><instrument><id>one</id></instrument></instrumentList></drumkit_info>"
	if err := os.WriteFile(filepath.Join(kitDir, "drumkit.xml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	lib := &library.Library{Dirs: []string{dir}, Schema: "schema.yml"}
	if _, err := lib.LoadKit(kitDir); !errors.Is(err, doc.ErrSchemaValidation) {
		t.Fatalf("expected a schema validation error, got %v", err)
	}
	var buf bytes.Buffer
	lib = &library.Library{Dirs: []string{dir}, Log: slog.New(slog.NewTextHandler(&buf, nil))}
	kit, err := lib.LoadKit(kitDir)
	if err != nil {
		t.Fatalf("without a schema the kit should load: %v", err)
	}
	if len(kit.Instruments) != 0 {
		t.Fatal("instrument with an unparsable id should read as empty")
	}
}

func TestDefaultSchemaAcceptsWrittenKits(t *testing.T) {
	s, err := library.DefaultSchema()
	if err != nil {
		t.Fatalf("default schema does not parse: %v", err)
	}
	for _, file := range []string{"drumkit.xml", "drumkit.yml"} {
		dir := writeKit(t, t.TempDir(), "kit", file, "Kick", "Snare", "Hat")
		d, err := doc.ReadFile(filepath.Join(dir, file), "", nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Validate(d.Root); err != nil {
			t.Errorf("%v: %v", file, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	for in, want := range map[string]string{
		"gm_rock_kit": "Gm Rock Kit",
		"TR808":       "Tr808",
		"jazz":        "Jazz",
	} {
		if got := library.DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadInstrumentFromLibrary(t *testing.T) {
	dir := t.TempDir()
	writeKit(t, dir, "rock", "drumkit.xml", "Kick", "Snare")
	lib := &library.Library{Dirs: []string{dir}}
	samples := &countingSamples{}
	i := drumkit.LoadInstrument(lib, "rock", "Snare", samples)
	if i.Name() != "Snare" || i.Layer(0) == nil {
		t.Fatal("snare not loaded")
	}
	if want := filepath.Join(dir, "rock", "snare.wav"); samples.paths[0] != want {
		t.Fatalf("loaded %v, want %v", samples.paths[0], want)
	}
}

type countingSamples struct {
	paths []string
}

func (c *countingSamples) LoadSample(path string) (*drumkit.Sample, error) {
	c.paths = append(c.paths, path)
	return drumkit.NewSample(path, &drumkit.SampleData{SampleRate: 48000, Frames: make(drumkit.AudioBuffer, 1)}), nil
}

func (c *countingSamples) RetainSample(s *drumkit.Sample) (*drumkit.Sample, error) { return s, nil }

func (c *countingSamples) UnloadSample(*drumkit.Sample) error { return nil }
