// Package donor indexes base examples for the caption-swap operators.
//
// The index is built once per run and is read-only afterwards, so a single *Index is shared by
// every generator worker without locking.
package donor

import (
	"errors"
	"fmt"
	"sort"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/family"
)

// ErrDonorSearchExhausted reports that no donor satisfied the hard-swap constraints.
var ErrDonorSearchExhausted = errors.New("donor_search_exhausted")

// Entry is the cached donor view of one base example.
type Entry struct {
	ExampleID     string
	SourceImageID int64
	Family        dataset.Family
	AnswerType    dataset.AnswerType
	CaptionText   string
	Tokens        map[string]struct{}
}

// Range is an inclusive Jaccard similarity interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type bucketKey struct {
	family     dataset.Family
	answerType dataset.AnswerType
}

type bucket struct {
	entries  []*Entry
	postings map[string][]int
	empty    []int
}

type imageSpan struct {
	lo, hi int
}

// Index is the read-only donor index.
type Index struct {
	seed    int64
	pool    []*Entry
	byID    map[string]*Entry
	images  map[int64]imageSpan
	buckets map[bucketKey]*bucket
}

// NewIndex builds the index over bases. Base ids must be unique.
func NewIndex(bases []dataset.BaseExample, rules family.Rules, seed int64) (*Index, error) {
	idx := &Index{
		seed:    seed,
		byID:    make(map[string]*Entry, len(bases)),
		images:  map[int64]imageSpan{},
		buckets: map[bucketKey]*bucket{},
	}
	lex := rules.Lexicon()
	for _, base := range bases {
		if _, dup := idx.byID[base.ExampleID]; dup {
			return nil, fmt.Errorf("donor index: duplicate base id %s", base.ExampleID)
		}
		handler, err := rules.For(base.Family)
		if err != nil {
			return nil, fmt.Errorf("donor index: %w", err)
		}
		entry := &Entry{
			ExampleID:     base.ExampleID,
			SourceImageID: base.SourceImageID,
			Family:        base.Family,
			AnswerType:    handler.AnswerType(),
			CaptionText:   base.SupportCaptionText,
			Tokens:        lex.ContentTokens(base.SupportCaptionText),
		}
		idx.byID[entry.ExampleID] = entry
		idx.pool = append(idx.pool, entry)
	}

	sort.Slice(idx.pool, func(i, j int) bool {
		if idx.pool[i].SourceImageID != idx.pool[j].SourceImageID {
			return idx.pool[i].SourceImageID < idx.pool[j].SourceImageID
		}
		return idx.pool[i].ExampleID < idx.pool[j].ExampleID
	})
	for i, entry := range idx.pool {
		span, ok := idx.images[entry.SourceImageID]
		if !ok {
			span.lo = i
		}
		span.hi = i + 1
		idx.images[entry.SourceImageID] = span
	}

	byID := append([]*Entry(nil), idx.pool...)
	sort.Slice(byID, func(i, j int) bool { return byID[i].ExampleID < byID[j].ExampleID })
	for _, entry := range byID {
		key := bucketKey{family: entry.Family, answerType: entry.AnswerType}
		b, ok := idx.buckets[key]
		if !ok {
			b = &bucket{postings: map[string][]int{}}
			idx.buckets[key] = b
		}
		pos := len(b.entries)
		b.entries = append(b.entries, entry)
		if len(entry.Tokens) == 0 {
			b.empty = append(b.empty, pos)
		}
		for token := range entry.Tokens {
			b.postings[token] = append(b.postings[token], pos)
		}
	}
	return idx, nil
}

// Len returns the number of indexed base examples.
func (idx *Index) Len() int {
	return len(idx.pool)
}

// Lookup returns the entry for a base id.
func (idx *Index) Lookup(exampleID string) (*Entry, bool) {
	entry, ok := idx.byID[exampleID]
	return entry, ok
}

// EasyDonor draws a donor uniformly from the pool excluding the base's source image. Entries
// of one image are contiguous in the pool, so the draw skips that span in constant time. ok is
// false when every indexed example shares the base's image.
func (idx *Index) EasyDonor(base dataset.BaseExample) (*Entry, bool) {
	span := idx.images[base.SourceImageID]
	width := span.hi - span.lo
	eligible := len(idx.pool) - width
	if eligible <= 0 {
		return nil, false
	}
	r := dataset.SeedPick(eligible, idx.seed, base.ExampleID, string(dataset.OperatorSwapEasy))
	if r >= span.lo {
		r += width
	}
	return idx.pool[r], true
}

// HardDonor returns a donor from the base's bucket, on another image, whose caption token
// Jaccard similarity with the base caption lies in bounds. Qualifying donors are ordered by id
// and one is chosen by seeded hash. Without a qualifying donor it returns
// ErrDonorSearchExhausted.
func (idx *Index) HardDonor(base dataset.BaseExample, bounds Range) (*Entry, error) {
	self, ok := idx.Lookup(base.ExampleID)
	if !ok {
		return nil, fmt.Errorf("donor index: unknown base %s", base.ExampleID)
	}
	b := idx.buckets[bucketKey{family: self.Family, answerType: self.AnswerType}]
	var qualifying []int
	for _, pos := range b.candidates(self.Tokens, bounds) {
		donor := b.entries[pos]
		if donor.ExampleID == self.ExampleID || donor.SourceImageID == self.SourceImageID {
			continue
		}
		if bounds.Contains(Jaccard(self.Tokens, donor.Tokens)) {
			qualifying = append(qualifying, pos)
		}
	}
	if len(qualifying) == 0 {
		return nil, fmt.Errorf("base %s: %w", base.ExampleID, ErrDonorSearchExhausted)
	}
	sort.Ints(qualifying)
	pick := dataset.SeedPick(len(qualifying), idx.seed, base.ExampleID, string(dataset.OperatorSwapHard))
	return b.entries[qualifying[pick]], nil
}

// candidates narrows the bucket to entries that can reach the lower bound. With a positive
// lower bound a donor must share a token, or both token sets must be empty.
func (b *bucket) candidates(tokens map[string]struct{}, bounds Range) []int {
	if bounds.Min <= 0 {
		all := make([]int, len(b.entries))
		for i := range all {
			all[i] = i
		}
		return all
	}
	if len(tokens) == 0 {
		return b.empty
	}
	seen := map[int]struct{}{}
	var out []int
	for token := range tokens {
		for _, pos := range b.postings[token] {
			if _, dup := seen[pos]; dup {
				continue
			}
			seen[pos] = struct{}{}
			out = append(out, pos)
		}
	}
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets are identical and score 1.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for token := range small {
		if _, ok := large[token]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
