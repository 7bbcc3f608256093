package matcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForce returns the best total score over all partial injections of
// rows into columns.
func bruteForce(scores [][]int) int {
	cols := len(scores[0])
	used := make([]bool, cols)
	var rec func(row int) int
	rec = func(row int) int {
		if row == len(scores) {
			return 0
		}
		best := rec(row + 1) // leave row unassigned
		for j := 0; j < cols; j++ {
			if used[j] {
				continue
			}
			used[j] = true
			best = max(best, scores[row][j]+rec(row+1))
			used[j] = false
		}
		return best
	}
	return rec(0)
}

func total(scores [][]int, assign []int) int {
	sum := 0
	for i, j := range assign {
		if j >= 0 {
			sum += scores[i][j]
		}
	}
	return sum
}

func assertValidAssignment(t *testing.T, scores [][]int, assign []int) {
	t.Helper()
	require.Len(t, assign, len(scores))
	seen := make(map[int]bool)
	for _, j := range assign {
		if j < 0 {
			continue
		}
		assert.Less(t, j, len(scores[0]))
		assert.False(t, seen[j], "column %d assigned twice", j)
		seen[j] = true
	}
}

// ---------------------------------------------------------------------------
// Optimality
// ---------------------------------------------------------------------------

func TestAssign_Optimal(t *testing.T) {
	tests := []struct {
		name   string
		scores [][]int
	}{
		{"3x3 diagonal", [][]int{{5, 0, 0}, {0, 5, 0}, {0, 0, 5}}},
		{"3x3 crossed", [][]int{{1, 9, 2}, {8, 1, 3}, {2, 3, 7}}},
		{"3x3 greedy trap", [][]int{{10, 9, 0}, {9, 0, 0}, {0, 0, 1}}},
		{"3x3 ties", [][]int{{2, 2, 2}, {2, 2, 2}, {2, 2, 2}}},
		{"4x3 tall", [][]int{{4, 1, 3}, {2, 0, 5}, {3, 2, 2}, {6, 1, 1}}},
		{"3x4 wide", [][]int{{4, 2, 3, 6}, {1, 0, 2, 1}, {3, 5, 2, 1}}},
		{"all zero", [][]int{{0, 0}, {0, 0}}},
		{"single", [][]int{{7}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assign, err := Assign(tc.scores)
			require.NoError(t, err)
			assertValidAssignment(t, tc.scores, assign)
			assert.Equal(t, bruteForce(tc.scores), total(tc.scores, assign))
		})
	}
}

func TestAssign_ExhaustiveSmallMatrices(t *testing.T) {
	// Every 3x3 matrix over {0,1,2} with a fixed first row pattern.
	for mask := 0; mask < 729; mask++ {
		scores := [][]int{{1, 0, 2}, make([]int, 3), make([]int, 3)}
		v := mask
		for i := 1; i < 3; i++ {
			for j := 0; j < 3; j++ {
				scores[i][j] = v % 3
				v /= 3
			}
		}
		assign, err := Assign(scores)
		require.NoError(t, err)
		require.Equal(t, bruteForce(scores), total(scores, assign), "matrix %v", scores)
	}
}

func TestAssign_Deterministic(t *testing.T) {
	scores := [][]int{{3, 3}, {3, 3}}
	first, err := Assign(scores)
	require.NoError(t, err)
	for range 10 {
		again, err := Assign(scores)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// ---------------------------------------------------------------------------
// Edge cases
// ---------------------------------------------------------------------------

func TestAssign_Empty(t *testing.T) {
	assign, err := Assign(nil)
	require.NoError(t, err)
	assert.Empty(t, assign)
}

func TestAssign_TallMatrixLeavesRowsUnassigned(t *testing.T) {
	assign, err := Assign([][]int{{1}, {5}, {2}})
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 0, -1}, assign)
}

func TestAssign_MalformedMatrix(t *testing.T) {
	_, err := Assign([][]int{{1, 2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedMatrix))

	_, err = Assign([][]int{{1, -2}})
	assert.ErrorIs(t, err, ErrMalformedMatrix)
}
