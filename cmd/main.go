package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/rapidmidiex/rmxsynth"
	"github.com/rapidmidiex/rmxsynth/blockstat"
	"github.com/rapidmidiex/rmxsynth/config"
	"github.com/rapidmidiex/rmxsynth/jamrec"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/soundfont"
	"github.com/rapidmidiex/rmxsynth/synth"
	"github.com/rapidmidiex/rmxsynth/vpiano"
)

var (
	configVar    string
	soundfontVar string
	loopVar      bool
	notesVar     string
	octaveVar    string
	stepVar      time.Duration
	jamVar       string
	recordVar    time.Duration
	renderVar    string
)

func init() {
	flag.StringVar(&configVar, "config", "", "YAML configuration file")
	flag.StringVar(&soundfontVar, "soundfont", "", "SF2 soundfont, overrides the config")
	flag.BoolVar(&loopVar, "loop", false, "Restart MIDI files when they end")
	flag.StringVar(&notesVar, "notes", "", "Play keys typed on the virtual piano, ie: \"asdf.g\"")
	flag.StringVar(&octaveVar, "octave", "C4", "Octave of the virtual piano")
	flag.DurationVar(&stepVar, "step", 250*time.Millisecond, "Length of each virtual piano note")
	flag.StringVar(&jamVar, "jam", "", "Jam Session websocket URL to record from")
	flag.DurationVar(&recordVar, "record", 10*time.Second, "How long to record the Jam Session")
	flag.StringVar(&renderVar, "render", "", "Render every input to WAV files in this directory and exit")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: rmxsynth [flags] [file.mid|file.json|dir ...]\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logOut, closeLog, err := logWriter(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()
	log := newLogger(logOut, cfg.Log.Level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := installSoundfont(cfg.Soundfont); err != nil {
		log.Error("soundfont", "path", cfg.Soundfont, "err", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	library, queue, err := collectInputs(ctx, log)
	if err != nil {
		log.Error("inputs", "err", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if renderVar != "" {
		if err := render(ctx, cfg, log, queue); err != nil {
			log.Error("render", "err", err)
			return 1
		}
		return 0
	}

	if library == "" && len(queue) == 0 {
		flag.Usage()
		return 2
	}
	if err := rmxsynth.Run(cfg, library, queue); err != nil {
		fmt.Printf("Uh oh, there was an error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configVar != "" {
		var err error
		if cfg, err = config.Load(configVar); err != nil {
			return nil, err
		}
	}
	if soundfontVar != "" {
		cfg.Soundfont = soundfontVar
	}
	if loopVar {
		cfg.Playback.Loop = true
	}
	if cfg.Soundfont == "" {
		return nil, errors.New("no soundfont: pass -soundfont or set soundfont in the config")
	}
	if renderVar != "" && cfg.Playback.Loop {
		return nil, errors.New("looped playback never ends and cannot be rendered")
	}
	return cfg, nil
}

// logWriter picks where logs go. The terminal UI owns stdout, so outside
// render mode logs go to log.file or nowhere.
func logWriter(cfg *config.Config) (io.Writer, func(), error) {
	if renderVar != "" {
		return os.Stderr, func() {}, nil
	}
	if cfg.Log.File == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func newLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.Level()}))
}

func installSoundfont(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return rmxsynth.Plugin{Soundfont: f}.Build()
}

// collectInputs loads every file argument into the queue, followed by the
// virtual piano notes and the jam recording. The first directory argument
// becomes the library.
func collectInputs(ctx context.Context, log *slog.Logger) (string, []rmxsynth.Audio, error) {
	var (
		library string
		queue   []rmxsynth.Audio
	)
	for _, arg := range flag.Args() {
		info, err := os.Stat(arg)
		if err != nil {
			return "", nil, err
		}
		if info.IsDir() {
			if library == "" {
				library = arg
			}
			continue
		}
		a, err := rmxsynth.LoadFile(ctx, arg)
		if err != nil {
			return "", nil, err
		}
		queue = append(queue, a)
	}

	if notesVar != "" {
		octave, err := vpiano.ParseOctave(octaveVar)
		if err != nil {
			return "", nil, err
		}
		keys := vpiano.MakeOctaveNotes(octave).ToBindingMap()
		seq, err := keys.Sequence(notesVar, stepVar, midi.DefaultNote().Velocity)
		if err != nil {
			return "", nil, err
		}
		queue = append(queue, rmxsynth.Audio{Name: "notes", Source: seq})
	}

	if jamVar != "" {
		seq, err := recordJam(ctx, log)
		if err != nil {
			return "", nil, err
		}
		queue = append(queue, rmxsynth.Audio{Name: "jam", Source: seq})
	}
	return library, queue, nil
}

func recordJam(ctx context.Context, log *slog.Logger) (midi.Sequence, error) {
	ctx, cancel := context.WithTimeout(ctx, recordVar)
	defer cancel()

	ws, err := jamrec.Dial(ctx, jamVar)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	fmt.Fprintf(os.Stderr, "recording %s for %s\n", jamVar, recordVar)
	rec := jamrec.Recorder{Conn: ws, Logger: log}
	seq, err := rec.Record(ctx)
	if err != nil {
		return nil, fmt.Errorf("record jam: %w", err)
	}
	log.Info("jam recorded", "url", jamVar, "notes", len(seq))
	return seq, nil
}

func render(ctx context.Context, cfg *config.Config, log *slog.Logger, queue []rmxsynth.Audio) error {
	h, err := soundfont.Shared()
	if err != nil {
		return err
	}
	start := time.Now()
	r := rmxsynth.Renderer{
		Factory: synth.NewMeltyFactory(h),
		Options: rmxsynth.DecoderOptions(cfg, log),
		Logger:  log,
	}
	if err := r.RenderAll(ctx, renderVar, queue); err != nil {
		return err
	}

	var audio time.Duration
	for _, a := range queue {
		if seq, ok := a.Source.(midi.Sequence); ok {
			audio += blockstat.AudioLength(seq.Frames(midi.SampleRate), midi.SampleRate)
		}
	}
	log.Info("render finished", "files", len(queue), "dir", renderVar,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"sequence_audio", audio)
	return nil
}
