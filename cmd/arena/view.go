package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/hexaflex/arena/memory"
	"github.com/hexaflex/arena/war"
)

const arenaBase = war.ArenaSegment << memory.ParagraphShift

// Warrior colors, by load order.
var palette = [...]tcell.Color{
	tcell.ColorRed,
	tcell.ColorGreen,
	tcell.ColorYellow,
	tcell.ColorBlue,
	tcell.ColorFuchsia,
	tcell.ColorAqua,
	tcell.ColorOrange,
	tcell.ColorWhite,
}

// View draws the arena of the war being played into the terminal.
// Each screen cell covers a slice of the arena and is colored by the
// warrior that last wrote into it. Instruction pointers are drawn on top.
type View struct {
	war.BaseListener
	screen tcell.Screen
	war    *war.War
	owner  []int8 // Last writer per arena byte, or -1.
	mu     sync.Mutex
	status string // Last log line.
	once   sync.Once
}

var _ war.Listener = &View{}

// NewView takes over the terminal.
func NewView() (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}

	if err := screen.Init(); err != nil {
		return nil, err
	}

	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	screen.Clear()

	return &View{
		screen: screen,
		owner:  make([]int8, war.ArenaSize),
	}, nil
}

// Close restores the terminal. It is safe to call more than once.
func (v *View) Close() {
	v.once.Do(v.screen.Fini)
}

// PollQuit calls quit when the user presses escape, q or ctrl-c.
// It returns once the view is closed.
func (v *View) PollQuit(quit func()) {
	for {
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				quit()
			}
		}
	}
}

// Write keeps the last log line for the status bar.
func (v *View) Write(p []byte) (int, error) {
	v.mu.Lock()
	v.status = strings.TrimSpace(string(p))
	v.mu.Unlock()
	return len(p), nil
}

// Attach starts following w.
func (v *View) Attach(w *war.War) {
	v.war = w
	for i := range v.owner {
		v.owner[i] = -1
	}
	w.AddListener(v)
}

func (v *View) OnWarriorBirth(w *war.Warrior) {
	id := v.indexOf(w)
	off := w.Load.Linear() - arenaBase
	for i := 0; i < w.Size; i++ {
		v.owner[off+i] = int8(id)
	}
	v.draw()
}

func (v *View) OnMemoryWrite(addr memory.Address) {
	off := addr.Linear() - arenaBase
	if off < 0 || off >= war.ArenaSize {
		return
	}
	v.owner[off] = int8(v.war.CurrentTurn())
}

func (v *View) OnRound(round int) {
	v.draw()
}

func (v *View) OnWarEnd(r war.Result) {
	v.draw()
}

func (v *View) indexOf(w *war.Warrior) int {
	for i, wr := range v.war.Warriors() {
		if wr == w {
			return i
		}
	}
	return -1
}

// draw renders the arena map, a legend and the status line.
func (v *View) draw() {
	width, height := v.screen.Size()
	rows := height - 2 - len(v.war.Warriors())
	if width < 1 || rows < 1 {
		return
	}

	cells := width * rows
	per := (war.ArenaSize + cells - 1) / cells

	ips := make(map[int]int)
	for i, wr := range v.war.Warriors() {
		off := memory.NewAddress(wr.CPU.CS(), wr.CPU.IP).Linear() - arenaBase
		if wr.Alive() && off >= 0 && off < war.ArenaSize {
			ips[off/per] = i
		}
	}

	v.screen.Clear()

	for cell := 0; cell < cells && cell*per < war.ArenaSize; cell++ {
		x, y := cell%width, cell/width

		if id, ok := ips[cell]; ok {
			v.screen.SetContent(x, y, '@', nil, tcell.StyleDefault.Foreground(color(id)).Bold(true))
			continue
		}

		id := v.dominant(cell*per, per)
		if id < 0 {
			v.screen.SetContent(x, y, '.', nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
			continue
		}
		v.screen.SetContent(x, y, '#', nil, tcell.StyleDefault.Foreground(color(id)))
	}

	y := rows
	for i, wr := range v.war.Warriors() {
		state := "alive"
		if !wr.Alive() {
			state = fmt.Sprintf("dead: %v", wr.Death())
		}
		line := fmt.Sprintf("%-16s %-12s energy %5d  %s", wr.Name, wr.Team, wr.CPU.Energy(), state)
		v.text(0, y, line, tcell.StyleDefault.Foreground(color(i)))
		y++
	}

	header := fmt.Sprintf("seed %d  round %d  alive %d", v.war.Seed(), v.war.Round(), v.war.Alive())
	v.text(0, y, header, tcell.StyleDefault.Bold(true))

	v.mu.Lock()
	status := v.status
	v.mu.Unlock()
	v.text(0, y+1, status, tcell.StyleDefault.Foreground(tcell.ColorGray))

	v.screen.Show()
}

// dominant returns the warrior owning most bytes in [off, off+n), or -1.
func (v *View) dominant(off, n int) int {
	var counts [len(palette)]int
	best, most := -1, 0
	for i := off; i < off+n && i < war.ArenaSize; i++ {
		id := int(v.owner[i])
		if id < 0 {
			continue
		}
		id %= len(palette)
		counts[id]++
		if counts[id] > most {
			best, most = id, counts[id]
		}
	}
	return best
}

func (v *View) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func color(id int) tcell.Color {
	return palette[id%len(palette)]
}
