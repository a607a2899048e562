package drumkit

import (
	"github.com/vsariola/drumkit/doc"
)

type (
	// Kit is a named collection of instrument templates, together with the
	// directory their sample files are relative to.
	Kit struct {
		Name        string
		Author      string
		Info        string
		License     string
		Path        string
		Instruments InstrumentList
	}

	// InstrumentList is the ordered list of instruments of a kit.
	InstrumentList []*Instrument

	// KitLoader finds kits by name and loads them.
	KitLoader interface {
		// KitPath returns the directory of the kit called name, or false if
		// there is no such kit.
		KitPath(name string) (string, bool)
		LoadKit(path string) (*Kit, error)
	}
)

// Find returns the first instrument called name, or nil.
func (l InstrumentList) Find(name string) *Instrument {
	for _, i := range l {
		if i.name == name {
			return i
		}
	}
	return nil
}

// FindByID returns the instrument with the given id, or nil.
func (l InstrumentList) FindByID(id int) *Instrument {
	for _, i := range l {
		if i.id == id {
			return i
		}
	}
	return nil
}

// Copy returns a deep copy of the kit.
func (k *Kit) Copy() *Kit {
	ret := *k
	ret.Instruments = make(InstrumentList, len(k.Instruments))
	for idx, i := range k.Instruments {
		ret.Instruments[idx] = i.Copy()
	}
	return &ret
}

// ReadKit reads a drumkit_info node. Instruments carrying the empty
// instrument id are skipped. path is the directory the sample files of the
// kit are relative to.
func ReadKit(node *doc.Node, path string) *Kit {
	k := &Kit{
		Name:    node.ReadString("name", "", false, true),
		Author:  node.ReadString("author", "", true, true),
		Info:    node.ReadString("info", "", true, true),
		License: node.ReadString("license", "", true, true),
		Path:    path,
	}
	for _, n := range node.Child("instrumentList").ChildrenNamed("instrument") {
		if i := ReadInstrument(n); i != nil {
			k.Instruments = append(k.Instruments, i)
		} else {
			node.Logger().Warn("skipping empty instrument", "kit", k.Name)
		}
	}
	return k
}

// SaveTo fills node, expected to be called drumkit_info, with the kit.
func (k *Kit) SaveTo(node *doc.Node) {
	node.WriteString("name", k.Name)
	node.WriteString("author", k.Author)
	node.WriteString("info", k.Info)
	node.WriteString("license", k.License)
	list := node.CreateChild("instrumentList")
	for _, i := range k.Instruments {
		i.SaveTo(list)
	}
}

// Document returns a new document holding the kit.
func (k *Kit) Document() *doc.Document {
	d := doc.NewDocument("drumkit_info", nil)
	k.SaveTo(d.Root)
	return d
}
