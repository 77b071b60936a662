package war

import (
	"context"
	"math/rand"
	"sync/atomic"

	"github.com/hexaflex/arena/devices"
	"github.com/hexaflex/arena/devices/bomb"
	"github.com/hexaflex/arena/devices/drain"
	"github.com/hexaflex/arena/memory"
)

// Result describes the outcome of a war.
type Result struct {
	Reason  Reason
	Winners []string // Names of the surviving warriors, in load order.
	Rounds  int      // Number of rounds played.
}

// War is a single game between a fixed set of warriors. It is not safe
// for concurrent use, except for Abort. Independent wars share nothing and
// may run in parallel.
type War struct {
	cfg      Config
	mem      *memory.RealModeMemory
	access   *memory.AccessControl
	devices  *devices.Map
	rng      *rand.Rand
	events   multicaster
	warriors []*Warrior
	nextFree int // Bump allocator for stacks and shared blocks.
	round    int
	turn     int // Index of the warrior currently executing, or -1.
	alive    int
	deaths   int
	started  bool
	ended    bool
	result   Result
	abort    atomic.Bool
}

// New creates a war and loads the given teams. Loader errors are fatal
// to the war; no round may be played.
func New(cfg Config, teams []Team) (*War, error) {
	access := memory.NewAccessControl(memory.DefaultRegionCapacity)

	w := &War{
		cfg:      cfg,
		access:   access,
		mem:      memory.New(access),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		nextFree: allocBase,
		turn:     -1,
		devices: devices.NewMap(
			bomb.NewHeavy(),
			bomb.NewSmart(ArenaSegment, ArenaSize),
			drain.New(),
		),
	}

	if err := w.load(teams); err != nil {
		return nil, err
	}

	w.mem.SetListener(w.onWrite)
	return w, nil
}

// AddListener attaches an observer. Listeners added from inside a
// callback start receiving events after the current one.
func (w *War) AddListener(l Listener) {
	w.events.Add(l)
}

// Memory returns the war's memory bank.
func (w *War) Memory() *memory.RealModeMemory {
	return w.mem
}

// Access returns the war's permission table.
func (w *War) Access() *memory.AccessControl {
	return w.access
}

// Warriors returns the warriors in load order.
func (w *War) Warriors() []*Warrior {
	return w.warriors
}

// Seed returns the seed the war was created with.
func (w *War) Seed() int64 {
	return w.cfg.Seed
}

// Round returns the number of rounds started so far.
func (w *War) Round() int {
	return w.round
}

// CurrentTurn returns the index of the warrior whose turn it is, or -1
// between turns.
func (w *War) CurrentTurn() int {
	return w.turn
}

// Alive returns the number of living warriors.
func (w *War) Alive() int {
	return w.alive
}

// Deaths returns the number of warriors killed so far.
func (w *War) Deaths() int {
	return w.deaths
}

// Ended returns true once the war is over.
func (w *War) Ended() bool {
	return w.ended
}

// Result returns the outcome. It is only meaningful after the war ended.
func (w *War) Result() Result {
	return w.result
}

// Abort requests the war to stop at the next round boundary. It may be
// called from any goroutine.
func (w *War) Abort() {
	w.abort.Store(true)
}

// Run plays the war to completion. Cancelling ctx aborts it at the next
// round boundary.
func (w *War) Run(ctx context.Context) Result {
	if ctx.Err() != nil {
		w.Abort()
	}
	stop := context.AfterFunc(ctx, w.Abort)
	defer stop()

	for w.NextRound() {
	}
	return w.result
}

// NextRound plays one round. Returns false once the war has ended.
func (w *War) NextRound() bool {
	if w.ended {
		return false
	}

	if !w.started {
		w.start()
		if w.alive < 2 {
			w.end(SingleWinner)
			return false
		}
	}

	if w.abort.Load() {
		w.end(Aborted)
		return false
	}

	w.round++
	if w.cfg.Pacer != nil {
		w.cfg.Pacer(w.round)
	}
	w.events.each(func(l Listener) { l.OnRound(w.round) })

	decay := w.round%DecelerationRounds == 0
	for i, wr := range w.warriors {
		if !wr.alive {
			continue
		}
		w.turn = i
		w.play(wr, decay)
	}
	w.turn = -1

	switch {
	case w.alive < 2:
		w.end(SingleWinner)
	case w.round >= w.cfg.roundCap():
		w.end(RoundCap)
	}

	return !w.ended
}

func (w *War) start() {
	w.started = true
	w.events.each(func(l Listener) { l.OnWarStart(w) })
	for _, wr := range w.warriors {
		w.events.each(func(l Listener) { l.OnWarriorBirth(wr) })
	}
}

// play runs one turn for a warrior: its mandatory instruction, then
// possibly a bonus one drawn with probability speed/MaxSpeed.
func (w *War) play(wr *Warrior, decay bool) {
	c := wr.CPU
	if decay && c.Energy() > 0 {
		c.SetEnergy(c.Energy() - 1)
	}

	if err := c.Step(); err != nil {
		w.kill(wr, err)
		return
	}

	speed := Speed(c.Energy())
	if speed == 0 || w.rng.Intn(MaxSpeed) >= speed {
		return
	}

	if err := c.Step(); err != nil {
		w.kill(wr, err)
	}
}

func (w *War) kill(wr *Warrior, reason error) {
	if !wr.kill(reason) {
		return
	}
	w.alive--
	w.deaths++
	w.events.each(func(l Listener) { l.OnWarriorDeath(wr, reason) })
}

func (w *War) end(reason Reason) {
	w.ended = true
	w.result = Result{Reason: reason, Rounds: w.round}

	for _, wr := range w.warriors {
		if wr.alive {
			w.result.Winners = append(w.result.Winners, wr.Name)
		}
	}

	w.events.each(func(l Listener) { l.OnWarEnd(w.result) })
}

func (w *War) onWrite(addr memory.Address) {
	if w.events.Len() == 0 {
		return
	}
	w.events.each(func(l Listener) { l.OnMemoryWrite(addr) })
}

// Scores returns each warrior's share of the win, in load order:
// 1/alive for every survivor and zero for the dead.
func (w *War) Scores() []float64 {
	scores := make([]float64, len(w.warriors))
	if w.alive == 0 {
		return scores
	}

	share := 1 / float64(w.alive)
	for i, wr := range w.warriors {
		if wr.alive {
			scores[i] = share
		}
	}
	return scores
}
