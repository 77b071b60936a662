package tournament

import "github.com/pkg/errors"

// ErrConfig is returned for requests that cannot be satisfied by the
// available teams.
var ErrConfig = errors.New("invalid configuration")

// Combinations returns every k-element subset of [0, n) in lexicographic
// order.
func Combinations(n, k int) ([][]int, error) {
	if k < 1 || k > n {
		return nil, errors.Wrapf(ErrConfig, "%d teams per war with %d teams available", k, n)
	}

	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	for {
		out = append(out, append([]int(nil), idx...))

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out, nil
		}

		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
