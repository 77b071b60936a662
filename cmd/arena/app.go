package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/hexaflex/arena/cpu"
	"github.com/hexaflex/arena/tournament"
	"github.com/hexaflex/arena/war"
)

// App defines application context.
type App struct {
	config *Config       // Application configuration.
	log    *logrus.Entry // Root logger.
	view   *View         // Terminal view, if enabled.
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config) *App {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch {
	case config.PrintTrace:
		logger.SetLevel(logrus.TraceLevel)
	case config.Verbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	var a App
	a.config = config
	a.log = logrus.NewEntry(logger).WithField("app", AppName)
	return &a
}

// Run runs the tournament, either once or every time the warrior
// directory changes, and does not return until it is finished.
func (a *App) Run(ctx context.Context) error {
	a.log.Info(Version())

	if a.config.View {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			a.log.Warn("stdout is not a terminal; view disabled")
			a.config.View = false
		} else {
			view, err := NewView()
			if err != nil {
				return err
			}
			defer view.Close()
			a.view = view

			var cancel context.CancelFunc
			ctx, cancel = context.WithCancel(ctx)
			defer cancel()
			go view.PollQuit(cancel)

			// The log would scribble over the view.
			a.log.Logger.SetOutput(view)
		}
	}

	if a.config.Watch {
		return a.watch(ctx)
	}

	return a.runOnce(ctx)
}

// runOnce loads the warriors and plays a full tournament.
func (a *App) runOnce(ctx context.Context) error {
	teams, err := tournament.LoadDir(a.config.Dir)
	if err != nil {
		return err
	}

	cfg := tournament.Config{
		WarsPerCombination: a.config.Wars,
		TeamsPerWar:        a.config.Teams,
		Seed:               a.config.Seed,
		MaxRounds:          a.config.Rounds,
		Parallel:           a.config.Parallel,
		Observe:            a.observe,
	}

	if a.view != nil {
		cfg.Pacer = a.pace
	}

	if a.config.PrintTrace {
		cfg.Trace = a.printTrace
	}

	start := time.Now()
	sb, err := tournament.Run(ctx, cfg, teams, a.log)

	if a.view != nil {
		a.view.Close()
		a.view = nil
		a.log.Logger.SetOutput(os.Stderr)
	}

	if sb.Wars() > 0 {
		fmt.Printf("\n%d wars in %s, seed %d\n\n", sb.Wars(), time.Since(start).Round(time.Millisecond), a.config.Seed)
		if _, werr := sb.WriteTo(os.Stdout); werr != nil {
			return werr
		}
	}

	return err
}

// observe attaches the view and snapshot writer to a war about to be played.
func (a *App) observe(w *war.War) {
	if a.view != nil {
		a.view.Attach(w)
	}

	if a.config.SnapshotDir != "" {
		w.AddListener(&snapshotWriter{war: w, dir: a.config.SnapshotDir, log: a.log})
	}
}

// pace slows a viewed war down to a watchable speed.
func (a *App) pace(round int) {
	if a.config.Delay > 0 {
		time.Sleep(a.config.Delay)
	}
}

// printTrace logs a single executed instruction.
func (a *App) printTrace(w *war.Warrior, i *cpu.Instruction) {
	a.log.WithFields(logrus.Fields{
		"warrior": w.Name,
		"ip":      i.IP.String(),
		"opcode":  fmt.Sprintf("%02x", i.Opcode),
	}).Trace(i.Name())
}

// snapshotWriter saves the war's memory once it is over.
type snapshotWriter struct {
	war.BaseListener
	war *war.War
	dir string
	log *logrus.Entry
}

func (s *snapshotWriter) OnWarEnd(r war.Result) {
	if r.Reason == war.Aborted {
		return
	}

	if err := s.save(); err != nil {
		s.log.WithError(err).Error("snapshot failed")
	}
}

func (s *snapshotWriter) save() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	file := filepath.Join(s.dir, fmt.Sprintf("war-%d.snap", s.war.Seed()))
	fd, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := s.war.Memory().Save(fd); err != nil {
		fd.Close()
		return errors.Wrapf(err, "snapshot %s", file)
	}

	s.log.WithField("file", file).Debug("snapshot written")
	return fd.Close()
}
