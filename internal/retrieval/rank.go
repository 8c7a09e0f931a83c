package retrieval

import (
	"math"
	"strings"
)

// queryAliases expands shorthand and lay phrasing so candidate pooling sees
// the clinical vocabulary the care paths are written in.
var queryAliases = map[string][]string{
	"sob":                 {"shortness of breath", "breathless", "trouble breathing"},
	"short of breath":     {"shortness of breath", "sob"},
	"dysuria":             {"burning urination", "painful urination"},
	"burning when peeing": {"burning urination", "painful urination", "dysuria"},
	"uti":                 {"urinary tract infection", "urinary symptoms", "dysuria"},
	"mi":                  {"heart attack", "chest pain"},
	"worst headache":      {"thunderclap headache", "sudden severe headache"},
}

// aliasKeys fixes the iteration order so expansion output is deterministic.
var aliasKeys = []string{
	"sob", "short of breath", "dysuria", "burning when peeing", "uti", "mi",
	"worst headache",
}

// ExpandQuery returns the original query followed by its alias expansions,
// lowercased, trimmed and deduplicated, original first.
func ExpandQuery(q string) []string {
	ql := strings.ToLower(strings.TrimSpace(q))
	out := []string{ql}
	for _, key := range aliasKeys {
		if strings.Contains(ql, key) {
			out = append(out, queryAliases[key]...)
		}
	}
	seen := make(map[string]bool, len(out))
	uniq := out[:0]
	for _, s := range out {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		uniq = append(uniq, s)
	}
	return uniq
}

// Cosine returns the cosine similarity of a and b.  Zero vectors and
// mismatched lengths score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// DefaultLambda is the relevance weight for MMR selection; 0.9 biases
// strongly toward relevance over diversity.
const DefaultLambda = 0.9

// MMRSelect greedily picks up to k candidate indices maximizing
//
//	lambda*cos(query, doc) - (1-lambda)*max over selected cos(doc, sel)
//
// The first pick is by pure query similarity.  Ties resolve to the lowest
// index, so selection is deterministic for identical inputs.
func MMRSelect(query []float32, docs [][]float32, k int, lambda float64) []int {
	n := len(docs)
	if n == 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}

	qsim := make([]float64, n)
	for i, d := range docs {
		qsim[i] = Cosine(query, d)
	}

	selected := make([]int, 0, k)
	used := make([]bool, n)
	for len(selected) < k {
		best, bestScore := -1, math.Inf(-1)
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			score := qsim[i]
			if len(selected) > 0 {
				diversity := math.Inf(-1)
				for _, s := range selected {
					if sim := Cosine(docs[i], docs[s]); sim > diversity {
						diversity = sim
					}
				}
				score = lambda*qsim[i] - (1-lambda)*diversity
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		selected = append(selected, best)
	}
	return selected
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
