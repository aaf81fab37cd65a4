package diag

// MaxSuggestionDistance is the largest edit distance for which Suggest still
// proposes a candidate.
const MaxSuggestionDistance = 2

// Suggest returns the candidate closest to name by edit distance, or "" when
// nothing is within MaxSuggestionDistance. A candidate is never suggested if
// reaching it means rewriting all of name. Ties go to the lexicographically
// smaller candidate.
func Suggest(name string, candidates []string) string {
	if name == "" {
		return ""
	}

	nameLen := len([]rune(name))

	best, bestDist := "", -1
	for _, c := range candidates {
		if c == name || c == "" {
			continue
		}

		d := levenshtein(name, c)
		if d > MaxSuggestionDistance || d >= nameLen {
			continue
		}

		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}

	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i

		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}

		prev, cur = cur, prev
	}

	return prev[len(rb)]
}
