// Package main is the entry point for the ledcostume CLI
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/ledcostume/pkg/api"
	"github.com/james-see/ledcostume/pkg/audio"
	"github.com/james-see/ledcostume/pkg/config"
	"github.com/james-see/ledcostume/pkg/converter"
	"github.com/james-see/ledcostume/pkg/debug"
	"github.com/james-see/ledcostume/pkg/document"
	"github.com/james-see/ledcostume/pkg/generate"
	"github.com/james-see/ledcostume/pkg/merge"
	"github.com/james-see/ledcostume/pkg/resolve"
	"github.com/james-see/ledcostume/pkg/show"
	"github.com/james-see/ledcostume/pkg/timeline"
	"github.com/james-see/ledcostume/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	outputFile string
	serverPort int
	atTime     int64
	ledIDs     []string
	patterns   []string

	costumeFile string
	musicFile   string
	durationMs  int64
	blockMs     int64
	seed        uint64

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ledcostume",
	Short: "Author and preview light sequences for LED costumes",
	Long: `ledcostume resolves, merges and previews timed color patterns for
LED costumes and converts them to and from MIDI.

Examples:
  ledcostume resolve patterns/intro.json --at 1500
  ledcostume merge show.json
  ledcostume frame show.json --at 12000
  ledcostume convert patterns/intro.json -o intro.mid
  ledcostume generate --costume costumes/hero.json --duration 180000 -o patterns/auto.json
  ledcostume tui
  ledcostume serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <pattern.json>",
	Short: "Print the color of each LED at a point in time",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var mergeCmd = &cobra.Command{
	Use:   "merge <scenario.json>",
	Short: "Compose a scenario and print each costume's timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runMerge,
}

var frameCmd = &cobra.Command{
	Use:   "frame <scenario.json>",
	Short: "Print every costume's colors at a point in a scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runFrame,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert between pattern documents and MIDI",
	Long:  `Detects formats from the file extensions: .json pattern documents and .mid/.midi files.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List patterns, costumes and music in the data directory",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

var redeclareCmd = &cobra.Command{
	Use:   "redeclare <costume.json> <part> <count>",
	Short: "Change a body part's LED count",
	Long: `Re-declares the number of LEDs of a body part, spreading the positions evenly.
Patterns given with --pattern lose memberships of LEDs that no longer exist.`,
	Args: cobra.ExactArgs(3),
	RunE: runRedeclare,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a pattern for a costume",
	Long: `Fills every body part of a costume with effects until the track ends.
Heads pulse, hands cycle random hues and other parts fade through gradients.
The length comes from --duration, or from the --music track when it is omitted.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cfg)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/ledcostume/config.yaml)")

	resolveCmd.Flags().Int64VarP(&atTime, "at", "t", 0, "Time in milliseconds")
	resolveCmd.Flags().StringSliceVar(&ledIDs, "led", nil, "LEDs to resolve (default: every LED in the pattern)")

	frameCmd.Flags().Int64VarP(&atTime, "at", "t", 0, "Time in milliseconds")

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	redeclareCmd.Flags().StringSliceVarP(&patterns, "pattern", "p", nil, "Pattern files to prune")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from config)")

	generateCmd.Flags().StringVar(&costumeFile, "costume", "", "Costume file (required)")
	generateCmd.Flags().StringVarP(&musicFile, "music", "m", "", "Track the pattern plays along with")
	generateCmd.Flags().Int64VarP(&durationMs, "duration", "d", 0, "Pattern length in milliseconds")
	generateCmd.Flags().Int64Var(&blockMs, "block", 0, "Effect length in milliseconds (default random 3000-6000)")
	generateCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default random)")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output pattern file (required)")
	_ = generateCmd.MarkFlagRequired("costume")
	_ = generateCmd.MarkFlagRequired("output")

	// Add commands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(redeclareCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Debug {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		if err := debug.Enable(dir); err != nil {
			return fmt.Errorf("failed to enable debug log: %w", err)
		}
	}
	debug.Log("cli", "%s with data dir %s", cmd.Name(), cfg.DataDir)
	return nil
}

// store reads documents named on the command line relative to the working directory
func store() document.Store {
	return document.NewFileStore("")
}

func composeScenario(path string) (*show.Show, error) {
	sc, err := document.LoadScenario(store(), path)
	if err != nil {
		return nil, err
	}
	composer := &show.Composer{
		Store:    document.NewFileStore(cfg.DataDir),
		MusicDir: cfg.MusicDir(),
		Probe:    audio.Duration,
		Cache:    merge.NewCache(cfg.CacheSize),
	}
	return composer.Compose(sc)
}

func printColors(colors map[timeline.LedID]timeline.Color) {
	ids := make([]string, 0, len(colors))
	for id := range colors {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  %-16s %s\n", id, colors[timeline.LedID(id)])
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	doc, err := document.LoadPattern(store(), args[0])
	if err != nil {
		return err
	}

	leds := doc.Pattern.Leds()
	if len(ledIDs) > 0 {
		leds = make([]timeline.LedID, len(ledIDs))
		for i, id := range ledIDs {
			leds[i] = timeline.LedID(id)
		}
	}

	t := timeline.Milliseconds(atTime)
	fmt.Printf("%s at %s:\n", filepath.Base(args[0]), t)
	printColors(resolve.All(doc.Pattern, leds, t))
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	sh, err := composeScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d costumes, %s\n", filepath.Base(args[0]), len(sh.Rows), sh.Duration)
	for _, r := range sh.Rows {
		fmt.Printf("\n%s (%d LEDs) %s\n", r.CostumePath, len(r.Leds), r.Composite.TotalDuration)
		for i, name := range r.Patterns {
			fmt.Printf("  %-24s @ %s\n", name, r.Composite.Offsets[i])
		}
	}
	return nil
}

func runFrame(cmd *cobra.Command, args []string) error {
	sh, err := composeScenario(args[0])
	if err != nil {
		return err
	}

	t := timeline.Milliseconds(atTime)
	for _, f := range sh.Frame(t) {
		fmt.Printf("%s at %s:\n", f.Costume, t)
		printColors(f.Colors)
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv := converter.New(cfg.Export.Resolution, cfg.Export.Tempo)

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := document.ReadCatalog(cfg.DataDir)
	if err != nil {
		return err
	}

	sections := []struct {
		title   string
		entries []document.Entry
	}{
		{"Patterns", cat.Patterns},
		{"Costumes", cat.Costumes},
		{"Music", cat.Music},
	}
	for _, s := range sections {
		fmt.Printf("%s (%d)\n", s.title, len(s.entries))
		for _, e := range s.entries {
			fmt.Printf("  %-20s %s\n", e.Name, e.Filename)
		}
	}
	return nil
}

func runRedeclare(cmd *cobra.Command, args []string) error {
	path, part := args[0], args[1]
	count, err := strconv.Atoi(args[2])
	if err != nil || count < 0 {
		return fmt.Errorf("invalid LED count %q", args[2])
	}

	costume, err := document.LoadCostume(store(), path)
	if err != nil {
		return err
	}
	if !costume.Redeclare(part, count, document.Frame{Width: 1, Height: 1}) {
		return fmt.Errorf("costume %s has no body part %q", path, part)
	}
	if err := document.SaveCostume(store(), path, costume); err != nil {
		return err
	}
	fmt.Printf("%s: %s now has %d LEDs\n", path, part, count)

	for _, p := range patterns {
		doc, err := document.LoadPattern(store(), p)
		if err != nil {
			return err
		}
		removed := doc.Pattern.PruneLeds(part, count)
		if len(removed) == 0 {
			continue
		}
		if err := document.SavePattern(store(), p, doc); err != nil {
			return err
		}
		ids := make([]string, len(removed))
		for i, id := range removed {
			ids[i] = string(id)
		}
		fmt.Printf("%s: removed %s\n", p, strings.Join(ids, ", "))
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	costume, err := document.LoadCostume(store(), costumeFile)
	if err != nil {
		return err
	}

	duration := timeline.Milliseconds(durationMs)
	if duration <= 0 {
		if musicFile == "" {
			return fmt.Errorf("either --duration or --music is required")
		}
		if duration, err = audio.Duration(document.MusicPath(cfg.MusicDir(), musicFile)); err != nil {
			return err
		}
	}

	opts := generate.Options{Duration: duration, Block: timeline.Milliseconds(blockMs)}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(seed, seed))
	}
	doc := &document.PatternDocument{
		Music:   document.Music{Filename: musicFile},
		Pattern: generate.New(opts).Pattern(costume),
	}
	if err := document.SavePattern(store(), outputFile, doc); err != nil {
		return err
	}
	fmt.Printf("%s: %d groups over %s\n", outputFile, len(doc.Pattern.Seqs), duration)
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return err
		}
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	fmt.Printf("Starting API server on %s...\n", cfg.Addr())
	return api.StartServer(cfg)
}
