// Package library finds drum kits in a list of directories. Every kit is a
// directory holding a drumkit.xml or drumkit.yml file and the sample files
// it refers to.
package library

import (
	_ "embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vsariola/drumkit"
	"github.com/vsariola/drumkit/doc"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	// Library searches Dirs in order; a kit found in an earlier directory
	// hides kits of the same name in later ones. Kit files are validated
	// against Schema when it is set.
	Library struct {
		Dirs   []string
		Schema string
		Log    *slog.Logger
	}

	// Entry is a kit found in the library.
	Entry struct {
		Name string // directory name of the kit
		Path string
		File string
	}
)

// KitFiles are the file names a kit directory is recognized by, in order of
// preference.
var KitFiles = []string{"drumkit.xml", "drumkit.yml", "drumkit.yaml"}

const rootName = "drumkit_info"

var _ drumkit.KitLoader = (*Library)(nil)

func (l *Library) logger() *slog.Logger {
	if l.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Log
}

// KitPath returns the directory of the kit called name. Spaces in name match
// underscores in the directory name.
func (l *Library) KitPath(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	candidates := []string{name}
	if alt := strings.ReplaceAll(name, " ", "_"); alt != name {
		candidates = append(candidates, alt)
	}
	for _, dir := range l.Dirs {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if KitFile(p) != "" {
				return p, true
			}
		}
	}
	return "", false
}

// LoadKit reads the kit in directory path.
func (l *Library) LoadKit(path string) (*drumkit.Kit, error) {
	file := KitFile(path)
	if file == "" {
		return nil, fmt.Errorf("no kit file in %v: %w", path, fs.ErrNotExist)
	}
	return ReadKitFile(file, l.Schema, l.logger())
}

// Kits lists the kits of all the directories, sorted by name.
func (l *Library) Kits() []Entry {
	var ret []Entry
	seen := map[string]bool{}
	for _, dir := range l.Dirs {
		entries, err := fs.ReadDir(os.DirFS(dir), ".")
		if err != nil {
			l.logger().Debug("skipping kit directory", "dir", dir, "err", err)
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || seen[e.Name()] {
				continue
			}
			p := filepath.Join(dir, e.Name())
			file := KitFile(p)
			if file == "" {
				continue
			}
			seen[e.Name()] = true
			ret = append(ret, Entry{Name: e.Name(), Path: p, File: file})
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// KitFile returns the kit file in dir, or "" if there is none.
func KitFile(dir string) string {
	for _, name := range KitFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// ReadKitFile reads a kit file, validating it against schema when not empty.
// Sample paths of the kit are relative to the directory of the file. A kit
// file without a name is named after its directory.
func ReadKitFile(file, schema string, log *slog.Logger) (*drumkit.Kit, error) {
	d, err := doc.ReadFile(file, schema, log)
	if err != nil {
		return nil, fmt.Errorf("could not read kit: %w", err)
	}
	if d.Root.Name != rootName {
		return nil, fmt.Errorf("%v: root element is %v, expected %v", file, d.Root.Name, rootName)
	}
	dir := filepath.Dir(file)
	kit := drumkit.ReadKit(d.Root, dir)
	if kit.Name == "" {
		kit.Name = DisplayName(filepath.Base(dir))
	}
	return kit, nil
}

// WriteKitFile writes the kit to file, in the format implied by its
// extension.
func WriteKitFile(kit *drumkit.Kit, file string) error {
	if err := kit.Document().WriteFile(file); err != nil {
		return fmt.Errorf("could not write kit: %w", err)
	}
	return nil
}

// DisplayName turns a directory name like "gm_rock_kit" into "Gm Rock Kit".
func DisplayName(dirname string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(dirname, "_", " "))
}

//go:embed schema.yml
var schemaYAML []byte

// DefaultSchema returns the schema kit files written by this package match.
func DefaultSchema() (*doc.Schema, error) {
	return doc.ParseSchema(schemaYAML)
}
