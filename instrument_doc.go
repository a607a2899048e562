package drumkit

import (
	"fmt"

	"github.com/vsariola/drumkit/doc"
)

// ReadInstrument reads an instrument node. A node carrying the empty
// instrument id reads as nil. Samples of the layers are not loaded. The
// instrument logs to the logger of the node.
func ReadInstrument(node *doc.Node) *Instrument {
	id := node.ReadInt("id", EmptyInstrumentID, false, false)
	if id == EmptyInstrumentID {
		return nil
	}
	i := NewInstrument(id, node.ReadString("name", "", true, true), DefaultADSR())
	i.SetLogger(node.Logger())
	i.SetVolume(node.ReadFloat("volume", 1, true, true))
	i.SetMuted(node.ReadBool("isMuted", false, true, true))
	i.SetPanL(node.ReadFloat("pan_L", 1, true, true))
	i.SetPanR(node.ReadFloat("pan_R", 1, true, true))
	i.SetFilterActive(node.ReadBool("filterActive", true, true, false))
	i.SetFilterCutoff(node.ReadFloat("filterCutoff", 1, true, false))
	i.SetFilterResonance(node.ReadFloat("filterResonance", 0, true, false))
	i.SetRandomPitchFactor(node.ReadFloat("randomPitchFactor", 0, true, false))
	i.SetADSR(ADSR{
		Attack:  node.ReadFloat("Attack", 0, true, false),
		Decay:   node.ReadFloat("Decay", 0, true, false),
		Sustain: node.ReadFloat("Sustain", 1, true, false),
		Release: node.ReadFloat("Release", 1000, true, false),
	})
	i.SetGain(node.ReadFloat("gain", 1, true, false))
	i.SetMuteGroup(node.ReadInt("muteGroup", -1, true, false))
	i.SetMIDIOutChannel(node.ReadInt("midiOutChannel", -1, true, false))
	i.SetMIDIOutNote(node.ReadInt("midiOutNote", MIDIMiddleC, true, false))
	i.SetStopNotes(node.ReadBool("isStopNote", true, true, false))
	for idx := 0; idx < MaxFX; idx++ {
		i.SetFXLevel(idx, node.ReadFloat(fxLevelField(idx), 0, true, true))
	}
	if node.Child("filename") != nil {
		i.logger().Debug("reading the layer from the instrument filename field", "instrument", i.name)
		filename := node.ReadString("filename", "", false, true)
		if filename == "" {
			i.logger().Error("instrument filename field is empty", "instrument", i.name)
		} else {
			i.installLayer(0, NewLayer(NewSample(filename, nil)), nil)
		}
		return i
	}
	for n, layerNode := range node.ChildrenNamed("layer") {
		if n >= MaxLayers {
			i.logger().Error("too many layers, ignoring the rest", "instrument", i.name, "max", MaxLayers)
			break
		}
		i.installLayer(n, ReadLayer(layerNode), nil)
	}
	return i
}

// SaveTo appends an instrument node to parent. Empty layer slots are not
// written.
func (i *Instrument) SaveTo(parent *doc.Node) *doc.Node {
	node := parent.CreateChild("instrument")
	node.WriteInt("id", i.id)
	node.WriteString("name", i.name)
	node.WriteFloat("volume", i.volume)
	node.WriteBool("isMuted", i.muted)
	node.WriteFloat("pan_L", i.panL)
	node.WriteFloat("pan_R", i.panR)
	node.WriteFloat("randomPitchFactor", i.randomPitchFactor)
	node.WriteFloat("gain", i.gain)
	node.WriteBool("filterActive", i.filterActive)
	node.WriteFloat("filterCutoff", i.filterCutoff)
	node.WriteFloat("filterResonance", i.filterResonance)
	node.WriteFloat("Attack", i.adsr.Attack)
	node.WriteFloat("Decay", i.adsr.Decay)
	node.WriteFloat("Sustain", i.adsr.Sustain)
	node.WriteFloat("Release", i.adsr.Release)
	node.WriteInt("muteGroup", i.muteGroup)
	node.WriteInt("midiOutChannel", i.midiOutChannel)
	node.WriteInt("midiOutNote", i.midiOutNote)
	node.WriteBool("isStopNote", i.stopNotes)
	for idx, v := range i.fxLevels {
		node.WriteFloat(fxLevelField(idx), v)
	}
	for _, l := range i.layers {
		if l != nil {
			l.SaveTo(node)
		}
	}
	return node
}

func fxLevelField(idx int) string {
	return fmt.Sprintf("FX%dLevel", idx+1)
}
