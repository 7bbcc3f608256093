package calc

// Answer returns the answer.
func Answer() int {
	return 1
}
