package doc_test

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/vsariola/drumkit/doc"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestGetterFlags(t *testing.T) {
	tests := []struct {
		name     string
		text     *string
		absentOK bool
		emptyOK  bool
		want     float32
		warn     bool
	}{
		{"present", ptr("0.25"), false, false, 0.25, false},
		{"absent tolerated", nil, true, false, 7, false},
		{"absent reported", nil, false, true, 7, true},
		{"empty tolerated", ptr(""), false, true, 7, false},
		{"empty reported", ptr(""), true, false, 7, true},
		{"unparsable", ptr("loud"), true, true, 7, true},
		{"surrounding spaces", ptr(" 2.5\n"), true, true, 2.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n := doc.NewNode("instrument", testLogger(&buf))
			if tt.text != nil {
				n.WriteString("volume", *tt.text)
			}
			if got := n.ReadFloat("volume", 7, tt.absentOK, tt.emptyOK); got != tt.want {
				t.Fatalf("ReadFloat = %v, want %v", got, tt.want)
			}
			if warned := strings.Contains(buf.String(), "level=WARN"); warned != tt.warn {
				t.Errorf("warning logged = %v, want %v; log: %s", warned, tt.warn, buf.String())
			}
		})
	}
}

func TestDefaultIsLoggedAtDebug(t *testing.T) {
	var buf bytes.Buffer
	n := doc.NewNode("instrument", testLogger(&buf))
	if got := n.ReadInt("muteGroup", -1, true, false); got != -1 {
		t.Fatalf("ReadInt = %v, want -1", got)
	}
	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "field=muteGroup") {
		t.Errorf("expected a debug record naming the field, got %q", buf.String())
	}
}

func TestReadBool(t *testing.T) {
	n := doc.NewNode("instrument", nil)
	n.WriteString("a", "true")
	n.WriteString("b", "false")
	n.WriteString("c", "yes")
	n.WriteString("d", "")
	if !n.ReadBool("a", false, false, false) {
		t.Error("a should read true")
	}
	if n.ReadBool("b", true, false, false) {
		t.Error("b should read false")
	}
	if n.ReadBool("c", true, false, false) {
		t.Error("text other than true should read false")
	}
	if !n.ReadBool("d", true, false, true) {
		t.Error("empty field should read the default")
	}
	if !n.ReadBool("missing", true, true, true) {
		t.Error("absent field should read the default")
	}
}

func TestReadFromNilNode(t *testing.T) {
	var n *doc.Node
	if got := n.ReadString("name", "x", false, false); got != "x" {
		t.Errorf("ReadString on nil node = %q, want the default", got)
	}
	if got := n.ReadInt("id", 4, false, false); got != 4 {
		t.Errorf("ReadInt on nil node = %v, want the default", got)
	}
}

func TestFloatRoundTripIsExact(t *testing.T) {
	values := []float32{0, 1, -1, 0.1, 0.3333333, 1e-7, 123456.79, math.MaxFloat32, math.SmallestNonzeroFloat32, 0.70710677}
	for _, v := range values {
		n := doc.NewNode("instrument", nil)
		n.WriteFloat("gain", v)
		if got := n.ReadFloat("gain", 42, false, false); got != v {
			t.Errorf("value %v read back as %v (text %q)", v, got, n.Child("gain").Text)
		}
	}
}

func TestWritersUseCanonicalText(t *testing.T) {
	n := doc.NewNode("instrument", nil)
	n.WriteFloat("gain", 1)
	n.WriteFloat("pan_L", 0.5)
	n.WriteInt("muteGroup", -1)
	n.WriteBool("isMuted", true)
	want := map[string]string{"gain": "1", "pan_L": "0.5", "muteGroup": "-1", "isMuted": "true"}
	for name, text := range want {
		if got := n.Child(name).Text; got != text {
			t.Errorf("%v written as %q, want %q", name, got, text)
		}
	}
}

func ptr(s string) *string {
	return &s
}
