// Command echoplay plays a plucked test signal through the echo processor
// on the default audio device and lets the delay length and feedback be
// adjusted from a terminal UI.
//
// Usage:
//
//	echoplay [flags]
//
// Examples:
//
//	echoplay
//	echoplay -length 0.3 -feedback 0.7
//	echoplay -no-tui -duration 10
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/echo"
)

func main() {
	rate := flag.Int("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in samples")
	length := flag.Float64("length", 0.4, "delay length in seconds")
	feedback := flag.Float64("feedback", echo.DefaultFeedback, "feedback gain")
	interval := flag.Float64("interval", 2, "seconds between plucks")
	gain := flag.Float64("gain", 0.3, "pluck amplitude")
	noTUI := flag.Bool("no-tui", false, "play without the interactive TUI")
	duration := flag.Duration("duration", 10*time.Second, "playback time with -no-tui")
	logFile := flag.String("log", "echoplay.log", "log file path")
	flag.Parse()

	file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open log file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	slog.Info("Starting echoplay", "args", os.Args)

	if err := run(logger, options{
		config:   core.ApplyProcessorOptions(core.WithSampleRate(float64(*rate)), core.WithBlockSize(*block)),
		length:   *length,
		feedback: *feedback,
		interval: *interval,
		gain:     *gain,
		tui:      !*noTUI,
		duration: *duration,
	}); err != nil {
		slog.Error("echoplay failed", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	config   core.ProcessorConfig
	length   float64
	feedback float64
	interval float64
	gain     float64
	tui      bool
	duration time.Duration
}

func run(logger *slog.Logger, opts options) error {
	proc := echo.New(echo.WithLogger(logger))
	if !proc.IsOutputEnabled() {
		slog.Warn("Self-test failed, processor output is muted")
	}
	proc.SetDelayLength(opts.length)
	proc.SetFeedback(opts.feedback)

	source := newPluckSource(opts.config.SampleRate, opts.interval, opts.gain)
	h, err := newHost(proc, source, opts.config)
	if err != nil {
		return err
	}
	defer h.close()
	slog.Info("Processor prepared",
		"sampleRate", opts.config.SampleRate,
		"blockSize", opts.config.BlockSize,
		"activeSamples", proc.ActiveLength(0),
		"capacity", proc.Capacity(0))

	out, err := newOtoOutput(int(opts.config.SampleRate), proc.Channels())
	if err != nil {
		return err
	}
	defer func() {
		if err := out.close(); err != nil {
			slog.Warn("Closing audio output", "error", err)
		}
	}()
	out.start(h)
	slog.Info("Playback started")

	if opts.tui {
		return runTUI(h, proc.TestLog())
	}

	for _, e := range proc.TestLog() {
		fmt.Printf("%-20s %-5v %s\n", e.Name, e.Passed, e.Message)
	}
	time.Sleep(opts.duration)
	return nil
}
