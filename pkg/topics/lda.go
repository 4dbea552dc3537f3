package topics

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
)

// GibbsLDA is latent Dirichlet allocation fitted with collapsed Gibbs sampling.
type GibbsLDA struct {
	NumTopics  int
	Iterations int
	TopTerms   int
	Alpha      float64
	Beta       float64
}

// NewGibbsLDA returns a sampler with symmetric priors alpha = 50/K and beta = 0.01.
func NewGibbsLDA(numTopics, iterations, topTerms int) *GibbsLDA {
	alpha := 0.1
	if numTopics > 0 {
		alpha = 50.0 / float64(numTopics)
	}

	return &GibbsLDA{
		NumTopics:  numTopics,
		Iterations: iterations,
		TopTerms:   topTerms,
		Alpha:      alpha,
		Beta:       0.01,
	}
}

type vocabulary struct {
	ids   map[string]int
	terms []string
}

func buildVocabulary(docs [][]string) (vocabulary, [][]int) {
	v := vocabulary{ids: make(map[string]int)}
	encoded := make([][]int, len(docs))

	for d, doc := range docs {
		encoded[d] = make([]int, len(doc))

		for i, term := range doc {
			id, ok := v.ids[term]
			if !ok {
				id = len(v.terms)
				v.ids[term] = id
				v.terms = append(v.terms, term)
			}

			encoded[d][i] = id
		}
	}

	return v, encoded
}

// Fit samples topic assignments for docs. Empty documents receive a uniform
// topic distribution.
func (g *GibbsLDA) Fit(docs [][]string, seed uint64) (Model, error) {
	k := g.NumTopics
	if k <= 0 {
		return Model{}, fmt.Errorf("fit lda: %w", ErrNoTopics)
	}

	if g.Alpha <= 0 || g.Beta <= 0 {
		return Model{}, fmt.Errorf("fit lda: %w", ErrInvalidPrior)
	}

	vocab, words := buildVocabulary(docs)
	if len(vocab.terms) == 0 {
		return Model{}, fmt.Errorf("fit lda: %w", ErrEmptyCorpus)
	}

	numTerms := len(vocab.terms)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	docTopic := make([][]int, len(words))
	topicTerm := make([][]int, k)
	topicTotal := make([]int, k)
	assign := make([][]int, len(words))

	for t := range k {
		topicTerm[t] = make([]int, numTerms)
	}

	for d, doc := range words {
		docTopic[d] = make([]int, k)
		assign[d] = make([]int, len(doc))

		for i, w := range doc {
			t := rng.IntN(k)
			assign[d][i] = t
			docTopic[d][t]++
			topicTerm[t][w]++
			topicTotal[t]++
		}
	}

	vBeta := float64(numTerms) * g.Beta
	weights := make([]float64, k)

	for range g.Iterations {
		for d, doc := range words {
			for i, w := range doc {
				old := assign[d][i]
				docTopic[d][old]--
				topicTerm[old][w]--
				topicTotal[old]--

				sum := 0.0
				for t := range k {
					p := (float64(docTopic[d][t]) + g.Alpha) *
						(float64(topicTerm[t][w]) + g.Beta) / (float64(topicTotal[t]) + vBeta)
					sum += p
					weights[t] = sum
				}

				u := rng.Float64() * sum
				next, _ := slices.BinarySearch(weights, u)
				next = min(next, k-1)

				assign[d][i] = next
				docTopic[d][next]++
				topicTerm[next][w]++
				topicTotal[next]++
			}
		}
	}

	return Model{
		DocTopics:  g.theta(docTopic, words),
		TopicTerms: g.phi(topicTerm, topicTotal, vocab, vBeta),
	}, nil
}

func (g *GibbsLDA) theta(docTopic [][]int, words [][]int) [][]float64 {
	k := g.NumTopics
	kAlpha := float64(k) * g.Alpha
	out := make([][]float64, len(words))

	for d := range words {
		out[d] = make([]float64, k)
		denom := float64(len(words[d])) + kAlpha

		for t := range k {
			out[d][t] = (float64(docTopic[d][t]) + g.Alpha) / denom
		}
	}

	return out
}

func (g *GibbsLDA) phi(topicTerm [][]int, topicTotal []int, vocab vocabulary, vBeta float64) [][]TermWeight {
	top := g.TopTerms
	if top <= 0 || top > len(vocab.terms) {
		top = len(vocab.terms)
	}

	out := make([][]TermWeight, g.NumTopics)

	for t := range g.NumTopics {
		terms := make([]TermWeight, len(vocab.terms))
		denom := float64(topicTotal[t]) + vBeta

		for w, term := range vocab.terms {
			terms[w] = TermWeight{Term: term, Weight: (float64(topicTerm[t][w]) + g.Beta) / denom}
		}

		// Ties break on the term so output does not depend on vocabulary order.
		slices.SortFunc(terms, func(a, b TermWeight) int {
			if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
				return c
			}

			return cmp.Compare(a.Term, b.Term)
		})

		out[t] = terms[:top]
	}

	return out
}
