package war

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexaflex/arena/cpu"
	"github.com/hexaflex/arena/memory"
)

var (
	jmpSelf  = []byte{0xeb, 0xfe}             // JMP $
	divZero  = []byte{0x31, 0xdb, 0xf7, 0xf3} // XOR BX, BX; DIV BX
	badWrite = []byte{0xa2, 0x00, 0x00}       // MOV [0], AL with DS = 0
)

func solo(name string, code []byte) Team {
	return Team{Name: name, Members: []Program{{Name: name, Code: code}}}
}

// recorder counts the events it sees.
type recorder struct {
	BaseListener
	starts, rounds, births int
	deaths                 []string
	ends                   []Result
	writes                 int
}

func (r *recorder) OnWarStart(*War) { r.starts++ }
func (r *recorder) OnRound(int) { r.rounds++ }
func (r *recorder) OnWarriorBirth(*Warrior) { r.births++ }
func (r *recorder) OnWarEnd(res Result) { r.ends = append(r.ends, res) }
func (r *recorder) OnMemoryWrite(memory.Address) { r.writes++ }

func (r *recorder) OnWarriorDeath(w *Warrior, _ error) {
	r.deaths = append(r.deaths, w.Name)
}

func TestRoundCap(t *testing.T) {
	w, err := New(Config{Seed: 1}, []Team{solo("a", jmpSelf), solo("b", jmpSelf)})
	require.NoError(t, err)

	var rec recorder
	w.AddListener(&rec)

	res := w.Run(context.Background())
	assert.Equal(t, RoundCap, res.Reason)
	assert.Equal(t, MaxRounds, res.Rounds)
	assert.Equal(t, []string{"a", "b"}, res.Winners)
	assert.Equal(t, 2, w.Alive())
	assert.Len(t, rec.ends, 1)
	assert.Equal(t, MaxRounds, rec.rounds)

	for _, wr := range w.Warriors() {
		assert.True(t, wr.Alive())
		assert.Equal(t, wr.Load.Offset, wr.CPU.IP)
	}

	assert.Equal(t, []float64{0.5, 0.5}, w.Scores())
}

func TestSingleWinner(t *testing.T) {
	w, err := New(Config{Seed: 2}, []Team{solo("loser", divZero), solo("winner", jmpSelf)})
	require.NoError(t, err)

	var rec recorder
	w.AddListener(&rec)

	res := w.Run(context.Background())
	assert.Equal(t, SingleWinner, res.Reason)
	assert.Equal(t, 2, res.Rounds)
	assert.Equal(t, []string{"winner"}, res.Winners)
	assert.Equal(t, []string{"loser"}, rec.deaths)
	assert.Len(t, rec.ends, 1)

	loser := w.Warriors()[0]
	f, ok := cpu.IsFault(loser.Death())
	require.True(t, ok)
	assert.Equal(t, cpu.Division, f.Kind)

	assert.Equal(t, []float64{0, 1}, w.Scores())
}

func TestPrefixFloodEnds(t *testing.T) {
	flood := []byte{
		0xfc,             // CLD
		0x8c, 0xc8,       // MOV AX, CS
		0x8e, 0xc0,       // MOV ES, AX
		0xb0, 0xf3,       // MOV AL, F3h
		0x31, 0xff,       // XOR DI, DI
		0xaa,             // STOSB
		0xb9, 0xff, 0xff, // MOV CX, FFFFh
		0xf3, 0xaa,       // REP STOSB
	}

	w, err := New(Config{Seed: 9, MaxRounds: 100}, []Team{solo("flood", flood), solo("victim", jmpSelf)})
	require.NoError(t, err)

	done := make(chan Result, 1)
	go func() { done <- w.Run(context.Background()) }()

	var res Result
	select {
	case res = <-done:
	case <-time.After(10 * time.Second):
		w.Abort()
		t.Fatal("war did not finish")
	}

	assert.Equal(t, SingleWinner, res.Reason)
	assert.Equal(t, 8, res.Rounds)
	assert.Equal(t, []string{"flood"}, res.Winners)

	f, ok := cpu.IsFault(w.Warriors()[1].Death())
	require.True(t, ok)
	assert.Equal(t, cpu.InvalidOpcode, f.Kind)
	assert.Equal(t, byte(0xf3), f.Opcode)
}

func TestMemoryFaultKills(t *testing.T) {
	w, err := New(Config{Seed: 3}, []Team{solo("a", badWrite), solo("b", jmpSelf), solo("c", jmpSelf)})
	require.NoError(t, err)

	w.Warriors()[0].CPU.SetDS(0)

	require.True(t, w.NextRound())
	assert.False(t, w.Warriors()[0].Alive())
	assert.Equal(t, 2, w.Alive())
	assert.Equal(t, 1, w.Deaths())

	f, ok := memory.IsFault(w.Warriors()[0].Death())
	require.True(t, ok)
	assert.Equal(t, memory.Write, f.Channel)
}

func TestDeathsPlusAlive(t *testing.T) {
	programs := [][]byte{jmpSelf, divZero, {0x0f}, {0xf4}, jmpSelf, {0x90, 0x90, 0xcd, 0x21}}

	var teams []Team
	for i, code := range programs {
		teams = append(teams, solo(fmt.Sprintf("w%d", i), code))
	}

	w, err := New(Config{Seed: 4, MaxRounds: 100}, teams)
	require.NoError(t, err)

	var rec recorder
	w.AddListener(&rec)

	for w.NextRound() {
		assert.Equal(t, len(programs), w.Alive()+len(rec.deaths))
	}

	assert.Equal(t, len(programs), w.Alive()+w.Deaths())
	assert.Equal(t, RoundCap, w.Result().Reason)
	assert.Len(t, rec.ends, 1)
	assert.Equal(t, len(programs), rec.births)
	assert.Equal(t, 1, rec.starts)
}

func TestAbort(t *testing.T) {
	w, err := New(Config{Seed: 5}, []Team{solo("a", jmpSelf), solo("b", jmpSelf)})
	require.NoError(t, err)

	var rec recorder
	w.AddListener(&rec)

	require.True(t, w.NextRound())
	w.Abort()
	assert.False(t, w.NextRound())
	assert.False(t, w.NextRound())

	assert.Equal(t, Aborted, w.Result().Reason)
	assert.Equal(t, 1, w.Result().Rounds)
	assert.Len(t, rec.ends, 1)
}

func TestRunCancelled(t *testing.T) {
	w, err := New(Config{Seed: 6}, []Team{solo("a", jmpSelf), solo("b", jmpSelf)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := w.Run(ctx)
	assert.Equal(t, Aborted, res.Reason)
	assert.Less(t, res.Rounds, MaxRounds)
}

func TestSingleWarrior(t *testing.T) {
	w, err := New(Config{Seed: 7}, []Team{solo("a", jmpSelf)})
	require.NoError(t, err)

	res := w.Run(context.Background())
	assert.Equal(t, SingleWinner, res.Reason)
	assert.Equal(t, 0, res.Rounds)
	assert.Equal(t, []string{"a"}, res.Winners)
}

func TestRegisterInit(t *testing.T) {
	team := Team{Name: "t", Members: []Program{
		{Name: "t1", Code: jmpSelf},
		{Name: "t2", Code: jmpSelf},
	}}

	w, err := New(Config{Seed: 8}, []Team{team, solo("x", jmpSelf)})
	require.NoError(t, err)
	require.Len(t, w.Warriors(), 3)

	t1, t2, x := w.Warriors()[0], w.Warriors()[1], w.Warriors()[2]
	assert.Equal(t, t1.Shared, t2.Shared)
	assert.NotEqual(t, t1.Shared, x.Shared)
	assert.NotEqual(t, t1.Stack, t2.Stack)

	for _, wr := range w.Warriors() {
		c := wr.CPU
		assert.Equal(t, uint16(ArenaSegment), c.CS())
		assert.Equal(t, uint16(ArenaSegment), c.DS())
		assert.Equal(t, wr.Stack.Segment, c.SS())
		assert.Equal(t, uint16(StackSize), c.SP())
		assert.Equal(t, wr.Shared.Segment, c.ES())
		assert.Equal(t, wr.Load.Offset, c.AX())
		assert.Equal(t, wr.Load.Offset, c.IP)
		assert.Equal(t, uint16(0), c.BX())
		assert.Equal(t, uint16(0), c.Flags)
		assert.Equal(t, uint16(0), c.Energy())

		for i, v := range InitialBombs {
			assert.Equal(t, v, c.Bomb(i))
		}

		assert.Equal(t, uint16(0), wr.Stack.Offset)
		assert.GreaterOrEqual(t, wr.Stack.Linear(), allocBase)
	}
}

func TestGrants(t *testing.T) {
	w, err := New(Config{Seed: 9}, []Team{solo("a", jmpSelf), solo("b", jmpSelf)})
	require.NoError(t, err)

	ac := w.Access()
	arena := ArenaSegment << memory.ParagraphShift
	assert.True(t, ac.Check(arena, ArenaSize, memory.PermRWX))
	assert.False(t, ac.Check(arena-1, 1, memory.PermRead))

	for _, wr := range w.Warriors() {
		assert.True(t, ac.Check(wr.Stack.Linear(), StackSize, memory.PermRW))
		assert.False(t, ac.CheckExecute(wr.Stack.Linear()))
		assert.True(t, ac.Check(wr.Shared.Linear(), SharedMemorySize, memory.PermRW))
	}

	// The interrupt vector table is off limits.
	assert.False(t, ac.CheckRead(0))
}

func TestArenaFill(t *testing.T) {
	w, err := New(Config{Seed: 10}, []Team{solo("a", jmpSelf), solo("b", divZero)})
	require.NoError(t, err)

	data := w.Memory().Bytes()
	arena := ArenaSegment << memory.ParagraphShift

	var code int
	for i := 0; i < ArenaSize; i++ {
		if data[arena+i] != ArenaByte {
			code++
		}
	}
	assert.Equal(t, len(jmpSelf)+len(divZero), code)

	for _, wr := range w.Warriors() {
		l := wr.Load.Linear()
		assert.Equal(t, data[l:l+wr.Size], map[string][]byte{"a": jmpSelf, "b": divZero}[wr.Name])
	}
}

func TestPlacementGap(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		var teams []Team
		for i := 0; i < 8; i++ {
			teams = append(teams, solo(fmt.Sprintf("w%d", i), bytes.Repeat([]byte{0x90}, MaxWarriorSize)))
		}

		w, err := New(Config{Seed: seed}, teams)
		if errors.Is(err, ErrPlacement) {
			continue
		}
		require.NoError(t, err)

		ws := w.Warriors()
		for i, a := range ws {
			start := int(a.Load.Offset)
			assert.GreaterOrEqual(t, start, MinGap)
			assert.LessOrEqual(t, start+a.Size, ArenaSize-MinGap)

			for _, b := range ws[i+1:] {
				other := int(b.Load.Offset)
				gap := start - (other + b.Size)
				if other > start {
					gap = other - (start + a.Size)
				}
				assert.GreaterOrEqual(t, gap, MinGap, "%s vs %s", a.Name, b.Name)
			}
		}
	}
}

func TestPlacementExhausted(t *testing.T) {
	var teams []Team
	for i := 0; i < 60; i++ {
		teams = append(teams, solo(fmt.Sprintf("w%d", i), bytes.Repeat([]byte{0x90}, MaxWarriorSize)))
	}

	_, err := New(Config{Seed: 11}, teams)
	assert.True(t, errors.Is(err, ErrPlacement), "%v", err)
}

func TestLoaderValidation(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.True(t, errors.Is(err, ErrNoTeams))

	_, err = New(Config{}, []Team{
		solo("big", make([]byte, MaxWarriorSize+1)),
		solo("empty", nil),
		solo("ok", jmpSelf),
	})
	require.Error(t, err)

	var set ErrorSet
	require.True(t, errors.As(err, &set))
	require.Equal(t, 2, set.Len())
	assert.True(t, errors.Is(set[0], ErrTooLarge))
	assert.True(t, errors.Is(set[1], ErrEmpty))
}

func TestDeterministic(t *testing.T) {
	run := func() ([]memory.Address, Result) {
		w, err := New(Config{Seed: 42, MaxRounds: 1000, Energy: 0xffff}, []Team{
			solo("a", jmpSelf), solo("b", jmpSelf), solo("c", divZero),
		})
		require.NoError(t, err)

		res := w.Run(context.Background())

		var loads []memory.Address
		for _, wr := range w.Warriors() {
			loads = append(loads, wr.Load)
		}
		return loads, res
	}

	l1, r1 := run()
	l2, r2 := run()
	assert.Equal(t, l1, l2)
	assert.Equal(t, r1, r2)
}

func TestEnergyDecay(t *testing.T) {
	w, err := New(Config{Seed: 12, Energy: 3}, []Team{solo("a", jmpSelf), solo("b", jmpSelf)})
	require.NoError(t, err)

	for i := 0; i < DecelerationRounds-1; i++ {
		require.True(t, w.NextRound())
	}
	assert.Equal(t, uint16(3), w.Warriors()[0].CPU.Energy())

	require.True(t, w.NextRound())
	assert.Equal(t, uint16(2), w.Warriors()[0].CPU.Energy())

	for i := 0; i < 10*DecelerationRounds; i++ {
		require.True(t, w.NextRound())
	}
	assert.Equal(t, uint16(0), w.Warriors()[0].CPU.Energy())
}

func TestMaxSpeedRunsTwice(t *testing.T) {
	// INC AX, repeated. At full speed every turn executes two instructions.
	code := bytes.Repeat([]byte{0x40}, 64)

	w, err := New(Config{Seed: 13, Energy: 0xffff}, []Team{solo("a", code), solo("b", jmpSelf)})
	require.NoError(t, err)

	a := w.Warriors()[0]
	start := a.CPU.AX()

	for i := 0; i < DecelerationRounds-1; i++ {
		require.True(t, w.NextRound())
	}
	assert.Equal(t, start+2*(DecelerationRounds-1), a.CPU.AX())
}

func TestSpeed(t *testing.T) {
	assert.Equal(t, 0, Speed(0))
	assert.Equal(t, 1, Speed(1))
	assert.Equal(t, 2, Speed(2))
	assert.Equal(t, 2, Speed(3))
	assert.Equal(t, 3, Speed(4))
	assert.Equal(t, 16, Speed(0x8000))
	assert.Equal(t, MaxSpeed, Speed(0xffff))

	prev := 0
	for e := 0; e <= 0xffff; e++ {
		s := Speed(uint16(e))
		assert.GreaterOrEqual(t, s, prev)
		assert.LessOrEqual(t, s, MaxSpeed)
		prev = s
	}
}

func TestMemoryWriteEvents(t *testing.T) {
	// MOV [DI], AX; JMP $
	code := []byte{0x89, 0x05, 0xeb, 0xfe}

	w, err := New(Config{Seed: 14}, []Team{solo("a", code), solo("b", jmpSelf)})
	require.NoError(t, err)

	var rec recorder
	w.AddListener(&rec)

	require.True(t, w.NextRound())
	assert.Equal(t, 2, rec.writes)
}

// lateAdder attaches another listener while an event is in flight.
type lateAdder struct {
	BaseListener
	w     *War
	late  *recorder
	added bool
}

func (l *lateAdder) OnRound(int) {
	if !l.added {
		l.added = true
		l.w.AddListener(l.late)
	}
}

func TestListenerAddedDuringDispatch(t *testing.T) {
	w, err := New(Config{Seed: 15, MaxRounds: 3}, []Team{solo("a", jmpSelf), solo("b", jmpSelf)})
	require.NoError(t, err)

	late := &recorder{}
	w.AddListener(&lateAdder{w: w, late: late})
	w.Run(context.Background())

	// The round that added it is not delivered to it.
	assert.Equal(t, 2, late.rounds)
	assert.Len(t, late.ends, 1)
}

func TestMulticasterOrder(t *testing.T) {
	var m multicaster
	var got []int

	for i := 0; i < 3; i++ {
		i := i
		m.Add(&funcListener{round: func(int) { got = append(got, i) }})
	}

	m.each(func(l Listener) { l.OnRound(1) })
	assert.Equal(t, []int{0, 1, 2}, got)
}

type funcListener struct {
	BaseListener
	round func(int)
}

func (f *funcListener) OnRound(r int) { f.round(r) }

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.InfoLevel)

	w, err := New(Config{Seed: 16}, []Team{solo("loser", divZero), solo("winner", jmpSelf)})
	require.NoError(t, err)

	w.AddListener(NewLogListener(logrus.NewEntry(log)))
	w.Run(context.Background())

	out := buf.String()
	assert.Contains(t, out, "warrior died")
	assert.Contains(t, out, "loser")
	assert.Contains(t, out, "war end")
	assert.Contains(t, out, "single-winner")
}
