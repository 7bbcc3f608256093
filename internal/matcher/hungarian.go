package matcher

import (
	"fmt"
	"math"
)

// Assign solves the assignment problem for a rectangular score matrix and
// returns, for each row, the column it is assigned to or -1 if the row is
// left unassigned. The total score of the assignment is maximal.
func Assign(scores [][]int) ([]int, error) {
	rows := len(scores)
	if rows == 0 {
		return nil, nil
	}
	cols := len(scores[0])
	maxScore := 0
	for i, row := range scores {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedMatrix, i, len(row), cols)
		}
		for j, s := range row {
			if s < 0 {
				return nil, fmt.Errorf("%w: negative score %d at (%d,%d)", ErrMalformedMatrix, s, i, j)
			}
			maxScore = max(maxScore, s)
		}
	}

	// Maximizing score is minimizing maxScore-score. Dummy cells score 0.
	n := max(rows, cols)
	cost := make([][]int, n)
	for i := range cost {
		cost[i] = make([]int, n)
		for j := range cost[i] {
			cost[i][j] = maxScore
			if i < rows && j < cols {
				cost[i][j] = maxScore - scores[i][j]
			}
		}
	}

	square := hungarian(cost)
	assign := make([]int, rows)
	for i := range assign {
		assign[i] = -1
		if j := square[i]; j < cols {
			assign[i] = j
		}
	}
	return assign, nil
}

// hungarian runs the O(n³) Kuhn-Munkres algorithm with potentials on a
// square cost matrix and returns the column assigned to each row. Ties go to
// the lowest column index.
func hungarian(cost [][]int) []int {
	n := len(cost)
	const inf = math.MaxInt / 2

	u := make([]int, n+1)
	v := make([]int, n+1)
	p := make([]int, n+1) // p[j]: row matched to column j, 1-based
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]int, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] != 0 {
			assign[p[j]-1] = j - 1
		}
	}
	return assign
}
