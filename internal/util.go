package internal

// ReconstructPath follows parentOf from current until it reaches a negative
// index and returns the visited indices root first.
func ReconstructPath(parentOf func(int) int, current int) []int {
	path := []int{current}
	for {
		previous := parentOf(current)
		if previous < 0 {
			break
		}
		path = append(path, previous)
		current = previous
	}
	Reverse(path)
	return path
}

// Reverse reverses s in place.
func Reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
