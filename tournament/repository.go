// Package tournament loads warriors from disk and plays every combination
// of teams against each other.
package tournament

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/hexaflex/arena/war"
)

// ErrPairing is returned when a paired warrior has no partner.
var ErrPairing = errors.New("malformed team pairing")

// LoadDir reads every regular file in dir as one warrior. Files named
// <team>1 and <team>2 form a two-warrior team; any other file is a team
// of its own. Hidden files are ignored.
func LoadDir(dir string) ([]war.Team, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", dir)
	}

	programs := make(map[string]war.Program)
	var names []string

	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		code, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", e.Name())
		}

		programs[e.Name()] = war.Program{Name: e.Name(), Code: code}
		names = append(names, e.Name())
	}

	slices.Sort(names)
	return Pair(programs, names)
}

// Pair groups programs into teams. names gives the order of the result.
func Pair(programs map[string]war.Program, names []string) ([]war.Team, error) {
	var teams []war.Team
	var errs war.ErrorSet

	for _, name := range names {
		base, n, ok := splitPair(name)
		if !ok {
			teams = append(teams, war.Team{Name: name, Members: []war.Program{programs[name]}})
			continue
		}

		if n == '2' {
			if _, ok := programs[base+"1"]; !ok {
				errs.Append(errors.Wrapf(ErrPairing, "%s has no %s1", name, base))
			}
			continue
		}

		mate, ok := programs[base+"2"]
		if !ok {
			errs.Append(errors.Wrapf(ErrPairing, "%s has no %s2", name, base))
			continue
		}

		teams = append(teams, war.Team{Name: base, Members: []war.Program{programs[name], mate}})
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

// splitPair splits a name like "zombie1" into "zombie" and '1'.
func splitPair(name string) (string, byte, bool) {
	if len(name) < 2 {
		return "", 0, false
	}

	n := name[len(name)-1]
	if n != '1' && n != '2' {
		return "", 0, false
	}
	return name[:len(name)-1], n, true
}
