package tournament

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hexaflex/arena/cpu"
	"github.com/hexaflex/arena/war"
)

// Config defines tournament settings.
type Config struct {
	WarsPerCombination int   // Wars played for every team combination.
	TeamsPerWar        int   // Teams loaded into each war.
	Seed               int64 // Base seed; war i uses Seed+i.
	MaxRounds          int   // Round cap per war; war.MaxRounds when zero.
	Parallel           int   // Concurrent wars; unlimited when < 1.

	// Observe, when set, is called for every war before it runs.
	// It may attach listeners.
	Observe func(w *war.War)

	// Pacer and Trace are copied into every war's configuration.
	Pacer func(round int)
	Trace func(w *war.Warrior, i *cpu.Instruction)
}

// Run plays every combination of TeamsPerWar teams WarsPerCombination
// times. Independent wars run concurrently.
//
// A combination size larger than the number of teams is logged and
// skipped; the returned scoreboard is then empty. Wars that fail to load
// are skipped and reported together in the returned error.
func Run(ctx context.Context, cfg Config, teams []war.Team, log *logrus.Entry) (*Scoreboard, error) {
	sb := NewScoreboard()

	combos, err := Combinations(len(teams), cfg.TeamsPerWar)
	if err != nil {
		log.WithError(err).Error("skipping tournament")
		return sb, nil
	}

	wars := cfg.WarsPerCombination
	if wars < 1 {
		wars = 1
	}

	log.WithFields(logrus.Fields{
		"teams":        len(teams),
		"combinations": len(combos),
		"wars":         len(combos) * wars,
	}).Info("tournament start")

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Parallel > 0 {
		g.SetLimit(cfg.Parallel)
	}

	var mu sync.Mutex
	var errs war.ErrorSet

	id := 0
	for _, combo := range combos {
		group := make([]war.Team, len(combo))
		for i, t := range combo {
			group[i] = teams[t]
		}

		for n := 0; n < wars; n++ {
			seed := cfg.Seed + int64(id)
			entry := log.WithField("war", id)
			id++

			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}

				w, err := war.New(war.Config{
					Seed:      seed,
					MaxRounds: cfg.MaxRounds,
					Pacer:     cfg.Pacer,
					Trace:     cfg.Trace,
				}, group)
				if err != nil {
					mu.Lock()
					errs.Append(errors.Wrapf(err, "war seed %d", seed))
					mu.Unlock()
					return nil
				}

				w.AddListener(war.NewLogListener(entry))
				if cfg.Observe != nil {
					cfg.Observe(w)
				}

				res := w.Run(gctx)
				if res.Reason != war.Aborted {
					sb.Add(w)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return sb, err
	}

	if ctx.Err() != nil {
		errs.Append(ctx.Err())
	}

	log.WithField("wars", sb.Wars()).Info("tournament end")
	return sb, errs.Err()
}
