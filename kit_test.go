package drumkit_test

import (
	"bytes"
	"testing"

	"github.com/vsariola/drumkit"
	"github.com/vsariola/drumkit/doc"
)

func TestKitRoundTrip(t *testing.T) {
	kit := &drumkit.Kit{
		Name:    "Rock",
		Author:  "someone",
		Info:    "<b>loud</b>",
		License: "CC-BY",
		Instruments: drumkit.InstrumentList{
			templateInstrument(1, "Kick", 2),
			templateInstrument(2, "Snare", 1),
		},
	}
	var buf bytes.Buffer
	if err := doc.Encode(&buf, kit.Document().Root, doc.XML); err != nil {
		t.Fatalf("encode error: %v", err)
	}
	root, err := doc.Decode(&buf, doc.XML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	got := drumkit.ReadKit(root, "/kits/rock")
	if got.Name != kit.Name || got.Author != kit.Author || got.Info != kit.Info || got.License != kit.License {
		t.Fatalf("kit metadata differs: %+v", got)
	}
	if got.Path != "/kits/rock" {
		t.Errorf("path = %v", got.Path)
	}
	if len(got.Instruments) != 2 {
		t.Fatalf("got %d instruments, want 2", len(got.Instruments))
	}
	for idx := range kit.Instruments {
		sameInstrument(t, got.Instruments[idx], kit.Instruments[idx])
	}
}

func TestReadKitSkipsEmptyInstruments(t *testing.T) {
	root := doc.NewNode("drumkit_info", nil)
	root.WriteString("name", "Sparse")
	list := root.CreateChild("instrumentList")
	drumkit.EmptyInstrument().SaveTo(list)
	templateInstrument(5, "Clap", 1).SaveTo(list)
	kit := drumkit.ReadKit(root, "")
	if len(kit.Instruments) != 1 || kit.Instruments[0].Name() != "Clap" {
		t.Fatalf("expected only the clap, got %d instruments", len(kit.Instruments))
	}
}

func TestInstrumentListFind(t *testing.T) {
	list := drumkit.InstrumentList{
		templateInstrument(1, "Kick", 0),
		templateInstrument(2, "Snare", 0),
	}
	if i := list.Find("Snare"); i == nil || i.ID() != 2 {
		t.Error("Find(Snare) failed")
	}
	if list.Find("Cowbell") != nil {
		t.Error("Find should return nil for unknown names")
	}
	if i := list.FindByID(1); i == nil || i.Name() != "Kick" {
		t.Error("FindByID(1) failed")
	}
}

func TestKitCopy(t *testing.T) {
	kit := &drumkit.Kit{Name: "Rock", Instruments: drumkit.InstrumentList{templateInstrument(1, "Kick", 1)}}
	c := kit.Copy()
	c.Instruments[0].SetName("Bass Drum")
	if kit.Instruments[0].Name() != "Kick" {
		t.Fatal("copy shares instruments with the original")
	}
}
