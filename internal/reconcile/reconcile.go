package reconcile

import (
	"sort"

	"github.com/temirov/etl-agents/internal/tabular"
)

// DefaultMinSimilarity is the pairing floor used when Options leaves the
// threshold unset. Pairs scoring below it are reported unmatched instead of
// being forced into a low-confidence correspondence.
const DefaultMinSimilarity = 0.6

// Pair maps one target row to one source row with the similarity that
// justified the pairing.
type Pair struct {
	Target     int
	Source     int
	Similarity float64
}

// Mapping is a best-effort row correspondence between two datasets lacking a
// shared key. It is partial: rows without a confident counterpart appear in
// the unmatched lists, never silently dropped.
type Mapping struct {
	Pairs           []Pair
	UnmatchedSource []int
	UnmatchedTarget []int
}

// SourceFor returns the source row mapped to the given target row.
func (m Mapping) SourceFor(target int) (int, bool) {
	for _, pair := range m.Pairs {
		if pair.Target == target {
			return pair.Source, true
		}
	}
	return 0, false
}

type Options struct {
	MinSimilarity float64
}

// Reconcile computes a one-to-one row correspondence between source and
// target. Exact matches (after cell normalization) pair first and leave the
// pool, so a looser fuzzy match elsewhere can never steal an exact row; the
// remainder is matched greedily, highest similarity first, subject to the
// threshold.
func Reconcile(source, target *tabular.Dataset, opts Options) Mapping {
	threshold := opts.MinSimilarity
	if threshold <= 0 {
		threshold = DefaultMinSimilarity
	}

	sourceUsed := make([]bool, source.RowCount())
	targetUsed := make([]bool, target.RowCount())
	var pairs []Pair

	// Phase 1: exact matching. Duplicate rows pair in file order.
	sourceByKey := make(map[string][]int, source.RowCount())
	for index, row := range source.Rows {
		key := rowKey(row)
		sourceByKey[key] = append(sourceByKey[key], index)
	}
	for targetIndex, row := range target.Rows {
		key := rowKey(row)
		queue := sourceByKey[key]
		if len(queue) == 0 {
			continue
		}
		sourceIndex := queue[0]
		sourceByKey[key] = queue[1:]
		sourceUsed[sourceIndex] = true
		targetUsed[targetIndex] = true
		pairs = append(pairs, Pair{Target: targetIndex, Source: sourceIndex, Similarity: 1})
	}

	// Phase 2: greedy fuzzy matching of the remainder.
	type scored struct {
		target     int
		source     int
		similarity float64
	}
	var candidates []scored
	for targetIndex := range target.Rows {
		if targetUsed[targetIndex] {
			continue
		}
		for sourceIndex := range source.Rows {
			if sourceUsed[sourceIndex] {
				continue
			}
			similarity := rowSimilarity(source.Rows[sourceIndex], target.Rows[targetIndex])
			if similarity >= threshold {
				candidates = append(candidates, scored{target: targetIndex, source: sourceIndex, similarity: similarity})
			}
		}
	}
	// Stable order: best similarity first, then lowest indices, so repeated
	// runs produce the same mapping.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		if candidates[i].target != candidates[j].target {
			return candidates[i].target < candidates[j].target
		}
		return candidates[i].source < candidates[j].source
	})
	for _, candidate := range candidates {
		if targetUsed[candidate.target] || sourceUsed[candidate.source] {
			continue
		}
		targetUsed[candidate.target] = true
		sourceUsed[candidate.source] = true
		pairs = append(pairs, Pair{Target: candidate.target, Source: candidate.source, Similarity: candidate.similarity})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Target < pairs[j].Target })

	mapping := Mapping{Pairs: pairs}
	for index, used := range sourceUsed {
		if !used {
			mapping.UnmatchedSource = append(mapping.UnmatchedSource, index)
		}
	}
	for index, used := range targetUsed {
		if !used {
			mapping.UnmatchedTarget = append(mapping.UnmatchedTarget, index)
		}
	}
	return mapping
}
