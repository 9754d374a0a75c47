// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"gtuner/cmd"
	"gtuner/internal/audio"
	"gtuner/internal/config"
	"gtuner/internal/display"
	applog "gtuner/internal/log"
	"gtuner/internal/transport"
	"gtuner/internal/transport/udp"
	"gtuner/internal/tui"
	"gtuner/internal/tuner"
	"gtuner/pkg/build"

	tea "github.com/charmbracelet/bubbletea"
)

// main is the entry point for the tuner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//   - Open the input and the display sinks
//
// 2. Concurrent Phase (Hot Path):
//   - Start the tuner session
//   - Run the terminal UI, or log readings when headless
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop the session and release the input
//   - Stop recording if active and close the transports
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}

	// Limit OS threads: one for the analysis loop, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if opts == nil {
		return // help or version was printed
	}
	configureLogging(opts.Config)

	// Handle one-off commands that don't run the live tuner
	switch opts.Command {
	case cmd.CommandList:
		if !opts.Interactive {
			if err := listDevices(); err != nil {
				applog.Fatalf("%v", err)
			}
			return
		}
		sel, ok, err := tui.PickDevice()
		if err != nil {
			applog.Fatalf("%v", err)
		}
		if !ok {
			return
		}
		opts.Config.Audio.InputDevice = sel.Device.ID
		opts.Config.Audio.SampleRate = sel.SampleRate

	case cmd.CommandAnalyze:
		if err := analyzeFile(opts); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	if err := run(opts); err != nil {
		applog.Fatalf("%v", err)
	}
}

func configureLogging(cfg *config.Config) {
	level, ok := applog.ParseLevel(cfg.LogLevel)
	if !ok {
		applog.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = applog.LevelInfo
	}
	if cfg.Debug {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)
}

// run tunes from the microphone, or from a synthetic tone for demo.
func run(opts *cmd.Options) error {
	cfg := opts.Config
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The terminal UI owns the screen, so logs go to a file.
	if !opts.Headless {
		logPath := filepath.Join(os.TempDir(), "gtuner.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		applog.SetOutput(f)
		defer applog.SetOutput(os.Stderr)
	}

	var (
		acquirer audio.Acquirer
		source   string
		recorder *audio.Recorder
	)
	if opts.Command == cmd.CommandDemo {
		acquirer = &audio.SineAcquirer{Frequency: opts.DemoFreq}
		source = fmt.Sprintf("demo tone %.2f Hz", opts.DemoFreq)
	} else {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()

		if cfg.Recording.Enabled {
			recorder = audio.NewRecorder()
		}
		acquirer = &audio.PortAudioAcquirer{Recorder: recorder}
		source = describeInput(cfg.Audio.InputDevice)
	}

	sinks, closeSinks, err := openSinks(cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	var tuiSink *tui.Sink
	if opts.Headless {
		sinks = append(sinks, display.NewLog())
	} else {
		tuiSink = &tui.Sink{}
		sinks = append(sinks, tuiSink)
	}

	session, err := tuner.NewSession(tuner.FromConfig(cfg), acquirer, sinks)
	if err != nil {
		return err
	}

	if recorder != nil {
		path, err := recordingPath(cfg.Recording.OutputDir, opts.OutputFile)
		if err != nil {
			return err
		}
		if err := recorder.Start(path, cfg.Audio.SampleRate, cfg.Recording.BitDepth); err != nil {
			return fmt.Errorf("failed to start recording: %w", err)
		}
		defer func() {
			if err := recorder.Stop(); err != nil {
				applog.Errorf("Error stopping recording: %v", err)
				return
			}
			fmt.Printf("Recording saved to: %s\n", path)
		}()
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if opts.Headless {
		if err := session.Start(ctx); err != nil {
			return err
		}
		applog.Infof("Tuning from %s, press Ctrl+C to stop", source)
		<-ctx.Done()
	} else {
		p := tea.NewProgram(tui.NewTunerModel(ctx, session, source),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)
		tuiSink.Attach(p)
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			session.Stop()
			return err
		}
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	return session.Stop()
}

// openSinks starts the network outputs enabled in cfg.
func openSinks(cfg *config.Config) (display.Multi, func(), error) {
	var (
		sinks   display.Multi
		closers []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				applog.Errorf("Error closing output: %v", err)
			}
		}
	}

	if cfg.Transport.WebSocketEnabled {
		wst := transport.NewWebSocketTransport()
		if err := wst.Listen(cfg.Transport.WebSocketAddress); err != nil {
			wst.Close()
			return nil, nil, err
		}
		closers = append(closers, wst.Close)
		sinks = append(sinks, display.NewBroadcast(wst))
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, sender.Close)

		publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		publisher.Start()
		closers = append(closers, publisher.Close)
		sinks = append(sinks, publisher)
	}

	return sinks, closeAll, nil
}

func describeInput(id int) string {
	dev, err := audio.InputDevice(id)
	if err != nil {
		return fmt.Sprintf("input %d", id)
	}
	return dev.Name
}

func recordingPath(dir, name string) (string, error) {
	if filepath.Dir(name) != "." {
		return name, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recording directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

func listDevices() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return audio.ListDevices(os.Stdout)
}

// analyzeFile replays a WAV file through the tuner and prints one line
// per window, or the display events as JSON lines.
func analyzeFile(opts *cmd.Options) error {
	acq := &audio.WavAcquirer{Path: opts.AnalyzeFile}
	cfg := tuner.FromConfig(opts.Config)
	cfg.Scheduler = &tuner.ManualScheduler{}

	var sink display.Sink = display.Discard{}
	if opts.JSON {
		sink = display.NewBroadcast(transport.NewJSONLines(os.Stdout))
	}
	session, err := tuner.NewSession(cfg, acq, sink)
	if err != nil {
		return err
	}

	capture, err := acq.Acquire(cfg.Constraints)
	if err != nil {
		return err
	}
	defer capture.Close()

	return session.Replay(context.Background(), capture, 0, func(at time.Duration, out tuner.Outcome) {
		if opts.JSON {
			return
		}
		if out.Kind != tuner.Pitched {
			fmt.Printf("%8.3fs  %-11s rms %.4f\n", at.Seconds(), out.Kind, out.RMS)
			return
		}
		r := out.Reading
		fmt.Printf("%8.3fs  %7.2f Hz  %-3s  %s %+6.1f¢  %s\n",
			at.Seconds(), r.Frequency, r.Detected, r.Target.Label, r.Cents, r.Direction)
	})
}
