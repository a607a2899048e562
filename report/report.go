// Package report renders human readable summaries of drum kits with
// text/template.
package report

import (
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/drumkit"
)

type (
	Report struct {
		Template *template.Template
		Name     string
	}

	KitInfo struct {
		Name, Author, Info, License, Path string
		Instruments                       []InstrumentInfo
		SampleCount                       int
	}

	InstrumentInfo struct {
		ID        int
		Name      string
		Gain      float32
		Volume    float32
		Muted     bool
		MuteGroup int
		Layers    []LayerInfo
	}

	LayerInfo struct {
		Slot                     int
		Filename                 string
		Gain, Pitch              float32
		MinVelocity, MaxVelocity float32
		Loaded                   bool
		Frames                   int
		Duration                 time.Duration
	}
)

//go:embed templates/*
var templateFS embed.FS

// New returns a report using the built-in kit template.
func New() (*Report, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.*")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Report{Template: tmpl, Name: "kit.txt"}, nil
}

// NewFromFile returns a report rendered by the template file at path. The
// template sees a KitInfo as its data.
func NewFromFile(path string) (*Report, error) {
	tmpl, err := template.New(filepath.Base(path)).Funcs(sprig.TxtFuncMap()).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on file "%v": %v`, path, err)
	}
	return &Report{Template: tmpl, Name: filepath.Base(path)}, nil
}

func (r *Report) Write(w io.Writer, kit *drumkit.Kit) error {
	if err := r.Template.ExecuteTemplate(w, r.Name, Summarize(kit)); err != nil {
		return fmt.Errorf(`could not execute template "%v": %v`, r.Name, err)
	}
	return nil
}

// Summarize flattens the kit into plain values a template can print.
func Summarize(kit *drumkit.Kit) KitInfo {
	ret := KitInfo{Name: kit.Name, Author: kit.Author, Info: kit.Info, License: kit.License, Path: kit.Path}
	for _, instr := range kit.Instruments {
		info := InstrumentInfo{
			ID:        instr.ID(),
			Name:      instr.Name(),
			Gain:      instr.Gain(),
			Volume:    instr.Volume(),
			Muted:     instr.Muted(),
			MuteGroup: instr.MuteGroup(),
		}
		for slot := 0; slot < drumkit.MaxLayers; slot++ {
			l := instr.Layer(slot)
			if l == nil {
				continue
			}
			low, high := l.VelocityRange()
			s := l.Sample()
			info.Layers = append(info.Layers, LayerInfo{
				Slot:        slot,
				Filename:    s.Filename(),
				Gain:        l.Gain(),
				Pitch:       l.Pitch(),
				MinVelocity: low,
				MaxVelocity: high,
				Loaded:      s.Loaded(),
				Frames:      s.Len(),
				Duration:    s.Duration().Round(time.Millisecond),
			})
			ret.SampleCount++
		}
		ret.Instruments = append(ret.Instruments, info)
	}
	return ret
}
