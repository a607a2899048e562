// Command drumkit lists, inspects, converts and plays drum kits.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vsariola/drumkit"
	"github.com/vsariola/drumkit/config"
	"github.com/vsariola/drumkit/library"
	"github.com/vsariola/drumkit/version"
)

var (
	configPath string
	extraDirs  []string
	verbose    bool

	cfg config.Config
	log *slog.Logger
	lib *library.Library
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "drumkit",
	Short: "Work with Hydrogen style drum kits",
	Long: `drumkit finds drum kits in the kit directories of the configuration,
and reads and writes their drumkit.xml and drumkit.yml files.

Examples:
  drumkit list
  drumkit info "GMRockKit" --load
  drumkit convert drumkit.xml drumkit.yml
  drumkit validate drumkit.xml
  drumkit play GMRockKit "Kick" --velocity 0.8`,
	Version:           version.VersionOrHash,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default is the user config file)")
	rootCmd.PersistentFlags().StringSliceVarP(&extraDirs, "kits", "k", nil, "Kit directories searched before the configured ones")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(configPath); err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	lib = &library.Library{
		Dirs:   append(append([]string{}, extraDirs...), cfg.KitDirs...),
		Schema: cfg.Schema,
		Log:    log,
	}
	return nil
}

// openKit accepts a kit directory, a kit file or the name of a kit in the
// library.
func openKit(arg string) (*drumkit.Kit, error) {
	info, err := os.Stat(arg)
	switch {
	case err == nil && info.IsDir():
		return lib.LoadKit(arg)
	case err == nil:
		return library.ReadKitFile(arg, cfg.Schema, log)
	}
	path, ok := lib.KitPath(arg)
	if !ok {
		return nil, fmt.Errorf("kit %q not found in %v", arg, lib.Dirs)
	}
	kit, err := lib.LoadKit(path)
	if err != nil {
		return nil, err
	}
	if kit.Path == "" {
		kit.Path = filepath.Clean(path)
	}
	return kit, nil
}
