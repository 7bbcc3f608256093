package calc

// Answer returns the final answer.
func Answer() int {
	return 1
}
