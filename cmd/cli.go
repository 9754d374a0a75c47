// SPDX-License-Identifier: MIT
// Package cmd parses the command line into the options main acts on.
package cmd

import (
	"fmt"
	"time"

	"gtuner/internal/config"
	"gtuner/pkg/build"

	"github.com/spf13/cobra"
)

// Commands main dispatches on. The empty command runs the tuner.
const (
	CommandTune    = ""
	CommandList    = "list"
	CommandAnalyze = "analyze"
	CommandDemo    = "demo"
)

// Options is the parsed command line with the configuration it selects.
type Options struct {
	Command string
	Config  *config.Config

	ConfigPath  string
	Interactive bool    // list: pick a device, then tune with it
	AnalyzeFile string  // analyze: WAV file to replay
	JSON        bool    // analyze: print events as JSON lines
	DemoFreq    float64 // demo: tone frequency
	Headless    bool    // log readings instead of drawing the terminal UI
	Verbose     bool
	Record      bool
	OutputFile  string
	Serve       bool
	UDP         bool

	device     int
	sampleRate float64
	window     int
}

// ParseArgs parses args (without the program name). It returns nil
// options when cobra handled the invocation itself, e.g. --help.
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	opts := &Options{}
	ran := false

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Long:          buildInfo.Description + ".\nPlay one open string at a time and bring the needle to the centre.",
		Version:       buildInfo.String(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandTune
			ran = true
			return nil
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available input devices",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = CommandList
			ran = true
		},
	}
	listCmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false,
		"Pick a device and sample rate, then start tuning with it")
	rootCmd.AddCommand(listCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Run a WAV recording through the tuner, one line per window",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = CommandAnalyze
			opts.AnalyzeFile = args[0]
			ran = true
		},
	}
	analyzeCmd.Flags().BoolVar(&opts.JSON, "json", false, "Print display events as JSON lines")
	rootCmd.AddCommand(analyzeCmd)

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Tune a synthetic tone instead of the microphone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(opts.DemoFreq > 0) {
				return fmt.Errorf("--freq must be positive")
			}
			opts.Command = CommandDemo
			ran = true
			return nil
		},
	}
	demoCmd.Flags().Float64VarP(&opts.DemoFreq, "freq", "f", 110, "Tone frequency in Hz")
	rootCmd.AddCommand(demoCmd)

	// Configuration
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "",
		"Configuration file (default "+config.DefaultPath+" if present)")

	// Audio Device Configuration
	pf.IntVarP(&opts.device, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	pf.Float64VarP(&opts.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&opts.window, "window", "w", config.DefaultWindowSize,
		"Samples per analysis window (power of two)")

	// Recording Configuration
	pf.BoolVarP(&opts.Record, "record", "r", false,
		"Record audio from the input device while tuning")
	pf.StringVarP(&opts.OutputFile, "output", "o", "",
		"Output file name. Default is recording-DD-MM-YYYY-HHMMSS.wav in the recording directory")

	// Outputs
	pf.BoolVar(&opts.Serve, "serve", false, "Serve the tuner page and WebSocket events")
	pf.BoolVar(&opts.UDP, "udp", false, "Publish readings as UDP packets")
	pf.BoolVar(&opts.Headless, "headless", false, "Log readings instead of drawing the terminal UI")

	// Debug Configuration
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show verbose output")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	if !ran {
		return nil, nil
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := opts.apply(cfg, rootCmd); err != nil {
		return nil, err
	}
	opts.Config = cfg
	return opts, nil
}

// apply lets explicitly set flags override the file and environment.
func (o *Options) apply(cfg *config.Config, root *cobra.Command) error {
	pf := root.PersistentFlags()
	if pf.Changed("device") {
		cfg.Audio.InputDevice = o.device
	}
	if pf.Changed("sample-rate") {
		cfg.Audio.SampleRate = o.sampleRate
	}
	if pf.Changed("window") {
		cfg.Audio.WindowSize = o.window
	}
	if o.Record {
		cfg.Recording.Enabled = true
	}
	if o.Serve {
		cfg.Transport.WebSocketEnabled = true
	}
	if o.UDP {
		cfg.Transport.UDPEnabled = true
	}
	if o.Verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	if o.OutputFile == "" {
		o.OutputFile = defaultRecordingName(time.Now())
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func defaultRecordingName(t time.Time) string {
	return "recording-" + t.UTC().Format("02-01-2006-150405") + ".wav"
}
