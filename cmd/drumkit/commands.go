package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/vsariola/drumkit"
	"github.com/vsariola/drumkit/config"
	"github.com/vsariola/drumkit/doc"
	"github.com/vsariola/drumkit/library"
	"github.com/vsariola/drumkit/oto"
	"github.com/vsariola/drumkit/player"
	"github.com/vsariola/drumkit/report"
	"github.com/vsariola/drumkit/sample"
	"gitlab.com/gomidi/midi/v2"
	"gopkg.in/yaml.v2"
)

var (
	templatePath string
	loadSamples  bool
	schemaPath   string
	velocity     float32
	note         int
	showMIDI     bool
	exportPath   string
	initConfig   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the kits in the kit directories",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var infoCmd = &cobra.Command{
	Use:   "info <kit>",
	Short: "Print a summary of a kit",
	Long:  `Prints a summary of a kit, given as a kit name, a kit directory or a kit file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a document between XML and YAML",
	Long: `Converts a document between the XML and YAML forms; the formats are implied
by the file extensions. Kit files are re-encoded through the kit model, which
fills in the defaults of missing fields; other documents are copied as is.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate kit files against a schema",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var playCmd = &cobra.Command{
	Use:   "play <kit> <instrument>",
	Short: "Play one note of an instrument of a kit in the library",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlay,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	infoCmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file used to render the summary")
	infoCmd.Flags().BoolVarP(&loadSamples, "load", "l", false, "Load the samples to report their lengths")

	validateCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema file (default is the configured schema, or the built-in one)")

	playCmd.Flags().Float32Var(&velocity, "velocity", 1, "Note velocity, 0 to 1")
	playCmd.Flags().IntVar(&note, "note", drumkit.MIDIMiddleC, "MIDI note of the trigger, used to pick layers with a pitch range")
	playCmd.Flags().BoolVar(&showMIDI, "midi", false, "Print the MIDI out messages of the instrument")
	playCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Render to a .wav file instead of the audio device")

	configCmd.Flags().BoolVar(&initConfig, "init", false, "Write the configuration to the user config file if it does not exist")

	rootCmd.AddCommand(listCmd, infoCmd, convertCmd, validateCmd, playCmd, configCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	kits := lib.Kits()
	if len(kits) == 0 {
		fmt.Println(pathStyle.Render(fmt.Sprintf("no kits found in %v", lib.Dirs)))
		return nil
	}
	for _, k := range kits {
		fmt.Println(nameStyle.Render(library.DisplayName(k.Name)) + pathStyle.Render(k.Path))
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	kit, err := openKit(args[0])
	if err != nil {
		return err
	}
	if loadSamples {
		store := sample.NewStore(log)
		for _, instr := range kit.Instruments {
			instr.SetLogger(log)
			if err := instr.LoadSamples(kit.Path, store, nil); err != nil {
				log.Warn("could not load all samples", "instrument", instr.Name(), "err", err)
			}
		}
	}
	r, err := report.New()
	if templatePath != "" {
		r, err = report.NewFromFile(templatePath)
	}
	if err != nil {
		return err
	}
	return r.Write(os.Stdout, kit)
}

func runConvert(cmd *cobra.Command, args []string) error {
	d, err := doc.ReadFile(args[0], cfg.Schema, log)
	if err != nil {
		return err
	}
	if d.Root.Name == "drumkit_info" {
		kit, err := library.ReadKitFile(args[0], "", log)
		if err != nil {
			return err
		}
		d = kit.Document()
	}
	if err := d.WriteFile(args[1]); err != nil {
		return err
	}
	log.Info("converted", "from", args[0], "to", args[1], "format", doc.FormatOf(args[1]))
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	failed := 0
	for _, file := range args {
		d, err := doc.ReadFile(file, "", log)
		if err == nil {
			err = schema.Validate(d.Root)
		}
		if err != nil {
			failed++
			fmt.Println(errorStyle.Render("FAIL") + " " + file + ": " + err.Error())
			continue
		}
		fmt.Println(okStyle.Render("ok") + "   " + file)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}

func loadSchema() (*doc.Schema, error) {
	path := schemaPath
	if path == "" {
		path = cfg.Schema
	}
	if path == "" {
		return library.DefaultSchema()
	}
	return doc.LoadSchema(path)
}

func runPlay(cmd *cobra.Command, args []string) error {
	store := sample.NewStore(log)
	p := player.New(cfg.SampleRate, log)
	instr := drumkit.EmptyInstrument()
	instr.SetLogger(log)
	p.SetInstruments(drumkit.InstrumentList{instr})
	if !instr.LoadFromLibrary(lib, args[0], args[1], store, p.RenderLock()) {
		return fmt.Errorf("instrument %q of kit %q not found", args[1], args[0])
	}
	defer unload(instr, p.RenderLock())
	midiOut := make(chan midi.Message, 16)
	if showMIDI {
		p.SetMIDIOut(midiOut)
	}
	length := 100 * time.Millisecond
	for idx := 0; idx < drumkit.MaxLayers; idx++ {
		if l := instr.Layer(idx); l != nil {
			length = max(length, l.Sample().Duration()+100*time.Millisecond)
		}
	}
	p.Trigger(player.Trigger{Instrument: instr, Note: note, Velocity: velocity})
	fmt.Println(titleStyle.Render(instr.Name()) + pathStyle.Render(fmt.Sprintf(" velocity %.2f, %v", velocity, length)))
	if exportPath != "" {
		if err := export(p, length); err != nil {
			return err
		}
	} else {
		context, err := oto.NewContext(cfg.SampleRate, cfg.BufferSize)
		if err != nil {
			return err
		}
		output := context.Play(p)
		time.Sleep(length)
		if err := output.Close(); err != nil {
			return err
		}
	}
	for {
		select {
		case msg := <-midiOut:
			fmt.Println(pathStyle.Render("midi out: ") + msg.String())
		default:
			return nil
		}
	}
}

// unload gives back the samples of instr, reporting a failure as a warning.
func unload(instr *drumkit.Instrument, lock sync.Locker) {
	if err := instr.UnloadSamples(lock); err != nil {
		log.Warn("could not unload samples", "instrument", instr.Name(), "err", err)
	}
}

func export(p *player.Player, length time.Duration) error {
	buf := make(drumkit.AudioBuffer, int(length.Seconds()*float64(p.SampleRate())))
	p.Process(buf)
	f, err := os.Create(exportPath)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	if err := sample.Encode(f, &drumkit.SampleData{SampleRate: p.SampleRate(), Frames: buf}, 16); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	if !initConfig {
		return nil
	}
	path := configPath
	if path == "" {
		if path, err = config.UserPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%v already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("wrote " + filepath.Clean(path)))
	return nil
}
