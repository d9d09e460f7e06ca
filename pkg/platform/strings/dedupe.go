// Package strings provides the text normalisation used by policy matching.
package strings

// DedupeFolded folds each value (see Fold), drops values that fold to
// nothing and keeps the first of each folded duplicate, so "Teeth Whitening"
// and "teeth-whitening" collapse into one entry. Order is preserved. Policy
// lists are normalised with it once at load time.
func DedupeFolded(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := Fold(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}
	return result
}
