package war

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/arena/cpu"
	"github.com/hexaflex/arena/memory"
)

// span is a placed code range within the arena, in arena offsets.
type span struct {
	start, end int
}

// validate checks every program before anything is placed, so all
// problems are reported together.
func validate(teams []Team) error {
	if len(teams) == 0 {
		return ErrNoTeams
	}

	var errs ErrorSet
	for _, t := range teams {
		for _, p := range t.Members {
			switch {
			case len(p.Code) == 0:
				errs.Append(errors.Wrapf(ErrEmpty, "%s", p.Name))
			case len(p.Code) > MaxWarriorSize:
				errs.Append(errors.Wrapf(ErrTooLarge, "%s: %d bytes", p.Name, len(p.Code)))
			}
		}
	}
	return errs.Err()
}

// load places all teams into the arena and installs access grants.
func (w *War) load(teams []Team) error {
	if err := validate(teams); err != nil {
		return err
	}

	w.mem.Fill(ArenaSegment<<memory.ParagraphShift, ArenaSize, ArenaByte)
	if err := w.access.Grant(ArenaSegment<<memory.ParagraphShift, ArenaSize, memory.PermRWX); err != nil {
		return errors.Wrap(err, "arena")
	}

	var placed []span
	for _, t := range teams {
		shared, err := w.alloc(SharedMemorySize)
		if err != nil {
			return errors.Wrapf(err, "team %s", t.Name)
		}

		for _, p := range t.Members {
			off, err := w.place(placed, len(p.Code))
			if err != nil {
				return errors.Wrapf(err, "%s", p.Name)
			}
			placed = append(placed, span{off, off + len(p.Code)})

			stack, err := w.alloc(StackSize)
			if err != nil {
				return errors.Wrapf(err, "%s", p.Name)
			}

			wr := &Warrior{
				Name:   p.Name,
				Team:   t.Name,
				Size:   len(p.Code),
				Load:   memory.NewAddress(ArenaSegment, uint16(off)),
				Stack:  stack,
				Shared: shared,
				alive:  true,
			}

			wr.CPU = cpu.New(w.mem, w.devices, w.tracer(wr))
			wr.init(w.cfg.Energy)
			w.mem.Load(wr.Load.Linear(), p.Code)
			w.warriors = append(w.warriors, wr)
		}
	}

	w.alive = len(w.warriors)
	return nil
}

// place picks a random arena offset for a program of the given size.
// Offsets closer than MinGap to an arena edge or to a placed program are
// rejected and redrawn, up to MaxLoadingTries times.
func (w *War) place(placed []span, size int) (int, error) {
	for try := 0; try < MaxLoadingTries; try++ {
		off := w.rng.Intn(ArenaSize - size + 1)
		if fits(placed, off, size) {
			return off, nil
		}
	}
	return 0, errors.Wrapf(ErrPlacement, "after %d attempts", MaxLoadingTries)
}

// fits returns true if [off, off+size) keeps MinGap to the arena edges
// and to every placed span.
func fits(placed []span, off, size int) bool {
	end := off + size
	if off < MinGap || end > ArenaSize-MinGap {
		return false
	}

	for _, s := range placed {
		if off < s.end+MinGap && end+MinGap > s.start {
			return false
		}
	}
	return true
}

// alloc hands out a paragraph-aligned RW block above the arena.
func (w *War) alloc(size int) (memory.Address, error) {
	base := w.nextFree
	if base+size > memory.MemorySize {
		return memory.Address{}, errors.Errorf("out of memory allocating %d bytes", size)
	}

	if err := w.access.Grant(base, size, memory.PermRW); err != nil {
		return memory.Address{}, err
	}

	w.nextFree = (base + size + memory.ParagraphSize - 1) &^ (memory.ParagraphSize - 1)
	return memory.NewAddress(uint16(base>>memory.ParagraphShift), 0), nil
}

func (w *War) tracer(wr *Warrior) cpu.TraceFunc {
	if w.cfg.Trace == nil {
		return nil
	}
	return func(i *cpu.Instruction) {
		w.cfg.Trace(wr, i)
	}
}
