package store

import (
	"hash/fnv"
	"math"
	"sort"

	"github.com/cayleygraph/kgl/label"
)

// defaultSimilarityDims is the vector width used by HashEmbed when no
// override is supplied.
const defaultSimilarityDims = 64

// Embedder turns a label into a fixed-width vector for the similarity
// index backing the "~" (near) node flag. Implementations need not be
// semantically meaningful -- the grammar only promises "nodes whose
// embedding is closest by inner product", not a trained model -- but must
// be deterministic so repeated queries return stable results.
type Embedder interface {
	Embed(l label.Label) []float64
	Dims() int
}

// HashEmbed is a deterministic, dependency-free embedder: it hashes
// overlapping trigrams of the label with FNV-1a and scatters each hash
// into one dimension of the output vector, then L2-normalizes. Two labels
// sharing trigrams land closer together under inner product than two that
// share none, which is the only property the grammar's "~" flag relies on.
type HashEmbed struct {
	dims int
}

// NewHashEmbed constructs a HashEmbed with the given vector width. A
// non-positive dims selects defaultSimilarityDims.
func NewHashEmbed(dims int) HashEmbed {
	if dims <= 0 {
		dims = defaultSimilarityDims
	}
	return HashEmbed{dims: dims}
}

func (h HashEmbed) Dims() int { return h.dims }

func (h HashEmbed) Embed(l label.Label) []float64 {
	v := make([]float64, h.dims)
	s := string(l)
	trigrams := trigramsOf(s)
	for _, tg := range trigrams {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(tg))
		sum := hasher.Sum64()
		dim := int(sum % uint64(h.dims))
		sign := 1.0
		if (sum>>63)&1 == 1 {
			sign = -1.0
		}
		v[dim] += sign
	}
	normalize(v)
	return v
}

func trigramsOf(s string) []string {
	if len(s) < 3 {
		return []string{s}
	}
	out := make([]string, 0, len(s)-2)
	for i := 0; i+3 <= len(s); i++ {
		out = append(out, s[i:i+3])
	}
	return out
}

func normalize(v []float64) {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// similarityEntry is one triple's contribution to the similarity index:
// the embedding of its object, and the subject that triple resolves back
// to. Grounded on original_source/kgl/graph.py's add_node, which appends
// one embedding per triple to a flat faiss index and a parallel
// index_by_connection list, then resolves a nearest-neighbor's ordinal
// position back to `index_by_connection[i][0]` (the subject).
type similarityEntry struct {
	vector  []float64
	subject label.Label
}

// similarityIndex holds exactly one entry per indexed triple -- its size
// must equal the namespace's triple log size (spec invariant: "the
// similarity index size equals the triple log size"), so it deliberately
// does not deduplicate by label the way substringIndex does. Store.Remove
// does not touch it, so after a removal it holds more entries than the log.
type similarityIndex struct {
	embedder Embedder
	entries  []similarityEntry
}

func newSimilarityIndex(e Embedder) *similarityIndex {
	if e == nil {
		e = NewHashEmbed(defaultSimilarityDims)
	}
	return &similarityIndex{embedder: e}
}

// index records one triple's contribution: the embedding of its object,
// tagged with its subject for later resolution.
func (idx *similarityIndex) index(subject, object label.Label) {
	idx.entries = append(idx.entries, similarityEntry{
		vector:  idx.embedder.Embed(object),
		subject: subject,
	})
}

type scoredEntry struct {
	subject label.Label
	score   float64
	pos     int
}

// knn embeds l and returns the subjects of the k triples whose object
// embedding has the highest inner product to it, ranked by score then by
// first-insertion order, resolving each nearest vector's ordinal position
// back through the triple log the way index_by_connection[i][0] does. The
// same subject may appear more than once if more than one of its triples
// ranks in the top k -- the reference implementation never deduplicates
// this result either.
func (idx *similarityIndex) knn(l label.Label, k int) []label.Label {
	if k <= 0 || len(idx.entries) == 0 {
		return nil
	}
	target := idx.embedder.Embed(l)
	scored := make([]scoredEntry, len(idx.entries))
	for i, e := range idx.entries {
		scored[i] = scoredEntry{subject: e.subject, score: dot(target, e.vector), pos: i}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].pos < scored[j].pos
	})
	if k > len(scored) {
		k = len(scored)
	}
	out := make([]label.Label, k)
	for i := 0; i < k; i++ {
		out[i] = scored[i].subject
	}
	return out
}
