package tournament

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"golang.org/x/exp/slices"

	"github.com/hexaflex/arena/war"
)

// Score is one row of the score table.
type Score struct {
	Name  string
	Team  string
	Score float64
	Wars  int
}

// Scoreboard accumulates warrior scores over many wars. It is safe for
// concurrent use.
type Scoreboard struct {
	mu     sync.Mutex
	scores map[string]*Score
	wars   int
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{scores: make(map[string]*Score)}
}

// Add records the outcome of a finished war.
func (sb *Scoreboard) Add(w *war.War) {
	scores := w.Scores()

	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.wars++
	for i, wr := range w.Warriors() {
		s, ok := sb.scores[wr.Name]
		if !ok {
			s = &Score{Name: wr.Name, Team: wr.Team}
			sb.scores[wr.Name] = s
		}
		s.Score += scores[i]
		s.Wars++
	}
}

// Wars returns the number of wars recorded.
func (sb *Scoreboard) Wars() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.wars
}

// Warriors returns the per-warrior scores, best first.
func (sb *Scoreboard) Warriors() []Score {
	sb.mu.Lock()
	out := make([]Score, 0, len(sb.scores))
	for _, s := range sb.scores {
		out = append(out, *s)
	}
	sb.mu.Unlock()

	sortScores(out)
	return out
}

// Teams returns the per-team scores, best first. A team's score is the
// sum of its members' scores.
func (sb *Scoreboard) Teams() []Score {
	teams := make(map[string]*Score)
	for _, s := range sb.Warriors() {
		t, ok := teams[s.Team]
		if !ok {
			t = &Score{Name: s.Team, Team: s.Team, Wars: s.Wars}
			teams[s.Team] = t
		}
		t.Score += s.Score
	}

	out := make([]Score, 0, len(teams))
	for _, t := range teams {
		out = append(out, *t)
	}

	sortScores(out)
	return out
}

func sortScores(s []Score) {
	slices.SortFunc(s, func(a, b Score) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Name < b.Name
	})
}

// WriteTo writes the team and warrior tables to w.
func (sb *Scoreboard) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "TEAM\tSCORE\tWARS\n")
	for _, s := range sb.Teams() {
		fmt.Fprintf(tw, "%s\t%.3f\t%d\n", s.Name, s.Score, s.Wars)
	}

	fmt.Fprintf(tw, "\nWARRIOR\tSCORE\tWARS\n")
	for _, s := range sb.Warriors() {
		fmt.Fprintf(tw, "%s\t%.3f\t%d\n", s.Name, s.Score, s.Wars)
	}

	err := tw.Flush()
	return cw.n, err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
