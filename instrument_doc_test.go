package drumkit_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/vsariola/drumkit"
	"github.com/vsariola/drumkit/doc"
)

func TestInstrumentRoundTrip(t *testing.T) {
	want := templateInstrument(7, "Ride", 0)
	want.SetStopNotes(true)
	want.SetSoloed(true)
	for idx, v := range []float32{0.1, 0.2, 0.3, 1} {
		want.SetFXLevel(idx, v)
	}
	soft := layerWith("ride_soft.wav", 0.8)
	soft.SetVelocityRange(0, 0.6)
	soft.SetPitch(-1.5)
	hard := layerWith("ride/hard.wav", 1.25)
	hard.SetVelocityRange(0.6, 1)
	hard.SetPitchRange(drumkit.PitchRange{Low: 50, High: 60, Set: true})
	want.ReplaceLayer(0, soft, nil)
	want.ReplaceLayer(3, hard, nil)
	want.SetPeaks(0.5, 0.5)
	want.Enqueue()

	for _, format := range []doc.Format{doc.XML, doc.YAML} {
		t.Run(format.String(), func(t *testing.T) {
			root := doc.NewNode("instrumentList", nil)
			want.SaveTo(root)
			var buf bytes.Buffer
			if err := doc.Encode(&buf, root, format); err != nil {
				t.Fatalf("encode error: %v", err)
			}
			decoded, err := doc.Decode(&buf, format, nil)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}
			got := drumkit.ReadInstrument(decoded.Child("instrument"))
			if got == nil {
				t.Fatal("instrument read as nil")
			}
			// empty slots are not written: slot 3 comes back as slot 1
			if got.LayerCount() != 2 || got.Layer(1) == nil {
				t.Fatalf("expected layers in slots 0 and 1, got %d layers", got.LayerCount())
			}
			packed := want.Copy()
			packed.ReplaceLayer(1, packed.Layer(3).Copy(), nil)
			packed.ReplaceLayer(3, nil, nil)
			sameInstrument(t, got, packed)
			if l, r := got.Peaks(); l != 0 || r != 0 || got.IsQueued() {
				t.Error("transient state should not be persisted")
			}
			if got.Soloed() {
				t.Error("solo state should not be persisted")
			}
		})
	}
}

func TestReadEmptyInstrumentIsNil(t *testing.T) {
	n := doc.NewNode("instrument", nil)
	n.WriteInt("id", drumkit.EmptyInstrumentID)
	n.WriteString("name", "Empty Instrument")
	if i := drumkit.ReadInstrument(n); i != nil {
		t.Fatalf("expected no instrument, got %v", i.Name())
	}
	var buf bytes.Buffer
	missing := doc.NewNode("instrument", testLogger(&buf))
	if i := drumkit.ReadInstrument(missing); i != nil {
		t.Fatal("instrument without id should read as nil")
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("missing id should be reported, log: %q", buf.String())
	}
}

func TestReadInstrumentDefaults(t *testing.T) {
	n := doc.NewNode("instrument", nil)
	n.WriteInt("id", 1)
	i := drumkit.ReadInstrument(n)
	tests := []struct {
		name      string
		got, want any
	}{
		{"name", i.Name(), ""},
		{"volume", i.Volume(), float32(1)},
		{"isMuted", i.Muted(), false},
		{"pan_L", i.PanL(), float32(1)},
		{"pan_R", i.PanR(), float32(1)},
		{"filterActive", i.FilterActive(), true},
		{"filterCutoff", i.FilterCutoff(), float32(1)},
		{"filterResonance", i.FilterResonance(), float32(0)},
		{"randomPitchFactor", i.RandomPitchFactor(), float32(0)},
		{"adsr", i.ADSR(), drumkit.ADSR{Attack: 0, Decay: 0, Sustain: 1, Release: 1000}},
		{"gain", i.Gain(), float32(1)},
		{"muteGroup", i.MuteGroup(), -1},
		{"midiOutChannel", i.MIDIOutChannel(), -1},
		{"midiOutNote", i.MIDIOutNote(), drumkit.MIDIMiddleC},
		{"isStopNote", i.StopNotes(), true},
		{"layers", i.LayerCount(), 0},
	}
	for idx := 0; idx < drumkit.MaxFX; idx++ {
		tests = append(tests, struct {
			name      string
			got, want any
		}{fmt.Sprintf("FX%dLevel", idx+1), i.FXLevel(idx), float32(0)})
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%v: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestReadInstrumentLayerCapacity(t *testing.T) {
	var buf bytes.Buffer
	n := doc.NewNode("instrument", testLogger(&buf))
	n.WriteInt("id", 1)
	for idx := 0; idx < drumkit.MaxLayers+4; idx++ {
		layerWith(fmt.Sprintf("s%d.wav", idx), 1).SaveTo(n)
	}
	i := drumkit.ReadInstrument(n)
	if i.LayerCount() != drumkit.MaxLayers {
		t.Fatalf("got %d layers, want %d", i.LayerCount(), drumkit.MaxLayers)
	}
	last := i.Layer(drumkit.MaxLayers - 1).Sample().Filename()
	if want := fmt.Sprintf("s%d.wav", drumkit.MaxLayers-1); last != want {
		t.Errorf("last layer is %v, want %v", last, want)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("overflow should be logged as an error, log: %q", buf.String())
	}
}

func TestReadInstrumentLegacyFilename(t *testing.T) {
	n := doc.NewNode("instrument", nil)
	n.WriteInt("id", 2)
	n.WriteString("filename", "kick.wav")
	layerWith("ignored.wav", 1).SaveTo(n)
	i := drumkit.ReadInstrument(n)
	if i.LayerCount() != 1 || i.Layer(0).Sample().Filename() != "kick.wav" {
		t.Fatalf("expected a single layer playing kick.wav")
	}

	var buf bytes.Buffer
	empty := doc.NewNode("instrument", testLogger(&buf))
	empty.WriteInt("id", 2)
	empty.WriteString("filename", "")
	i = drumkit.ReadInstrument(empty)
	if i == nil || i.Layer(0) != nil {
		t.Fatal("empty legacy filename should leave slot 0 empty")
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("empty legacy filename should be logged as an error, log: %q", buf.String())
	}
}

func TestReadInstrumentRejectsOutOfRangeValues(t *testing.T) {
	var buf bytes.Buffer
	n := doc.NewNode("instrument", testLogger(&buf))
	n.WriteInt("id", 3)
	n.WriteInt("midiOutChannel", 16)
	n.WriteInt("midiOutNote", 200)
	n.WriteString("volume", "loud")
	i := drumkit.ReadInstrument(n)
	if i.MIDIOutChannel() != -1 || i.MIDIOutNote() != drumkit.MIDIMiddleC || i.Volume() != 1 {
		t.Fatalf("out of range values should leave the defaults, got %v %v %v", i.MIDIOutChannel(), i.MIDIOutNote(), i.Volume())
	}
}

func TestSavedFieldNames(t *testing.T) {
	root := doc.NewNode("instrumentList", nil)
	templateInstrument(1, "Kick", 1).SaveTo(root)
	var names []string
	for _, c := range root.Child("instrument").Children {
		names = append(names, c.Name)
	}
	want := "id name volume isMuted pan_L pan_R randomPitchFactor gain filterActive filterCutoff filterResonance " +
		"Attack Decay Sustain Release muteGroup midiOutChannel midiOutNote isStopNote FX1Level FX2Level FX3Level FX4Level layer"
	if got := strings.Join(names, " "); got != want {
		t.Fatalf("got fields\n%v\nwant\n%v", got, want)
	}
}
