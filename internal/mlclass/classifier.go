// Package mlclass implements the statistical description classifier: a
// multinomial naive Bayes model over unigrams and bigrams, trained in-process
// from a seed corpus and retrainable when user corrections accumulate.
package mlclass

import (
	"math"
	"sort"
	"sync"

	"github.com/nkhandelwal/rupeewise/internal/normalize"
)

// RetrainThreshold is the number of accumulated corrections after which a
// retrain is worthwhile.
const RetrainThreshold = 20

const (
	// topCandidates bounds the posterior normalization to the strongest
	// labels; the long tail of no-signal labels stays out of the denominator.
	topCandidates = 5
	// sharpen is the exponent applied to posterior ratios before
	// normalizing, widening the gap between token-overlap labels and the
	// smoothing floor.
	sharpen = 2.0
)

// Prediction is the classifier's estimate for one description.
type Prediction struct {
	Category    string
	Subcategory string
	Confidence  float64
}

type labelStats struct {
	tokenCounts map[string]float64
	category    string
	subcategory string
	docCount    float64
	totalTokens float64
}

// Classifier is a multinomial naive Bayes text classifier. Inference is
// stateless and safe for concurrent use; Retrain swaps the model atomically.
type Classifier struct {
	labels map[string]*labelStats
	vocab  map[string]struct{}
	extra  []Example
	docs   float64
	mu     sync.RWMutex
}

// New trains a classifier on the shipped seed corpus.
func New() *Classifier {
	c := &Classifier{}
	c.train(seedExamples)
	return c
}

// NewFromExamples trains a classifier on a caller-supplied corpus.
func NewFromExamples(examples []Example) *Classifier {
	c := &Classifier{}
	c.train(examples)
	return c
}

// Predict estimates a (category, subcategory) pair for a description.
// Confidence is the sharpened posterior mass of the winning category across
// the top candidate labels; an empty or unrecognizable description gets zero
// confidence, never an error. Labels are scored in sorted key order so
// identical inputs always produce identical predictions.
func (c *Classifier) Predict(description string) Prediction {
	features := featurize(description)
	if len(features) == 0 {
		return Prediction{Category: "", Confidence: 0}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.labels) == 0 {
		return Prediction{Confidence: 0}
	}

	keys := make([]string, 0, len(c.labels))
	for key := range c.labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	vocabSize := float64(len(c.vocab))
	known := 0
	for _, tok := range features {
		if _, ok := c.vocab[tok]; ok {
			known++
		}
	}

	type candidate struct {
		stats *labelStats
		lp    float64
	}
	candidates := make([]candidate, 0, len(keys))
	for _, key := range keys {
		stats := c.labels[key]
		lp := math.Log(stats.docCount / c.docs)
		for _, tok := range features {
			count := stats.tokenCounts[tok]
			// Laplace smoothing keeps unseen tokens from zeroing the label.
			lp += math.Log((count + 1) / (stats.totalTokens + vocabSize))
		}
		candidates = append(candidates, candidate{stats: stats, lp: lp})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].lp > candidates[j].lp
	})
	if len(candidates) > topCandidates {
		candidates = candidates[:topCandidates]
	}

	best := candidates[0]
	var denom, categoryMass float64
	for _, cand := range candidates {
		p := math.Exp((cand.lp - best.lp) * sharpen)
		denom += p
		if cand.stats.category == best.stats.category {
			categoryMass += p
		}
	}
	confidence := categoryMass / denom

	// A description sharing no vocabulary with the corpus carries no signal;
	// the posterior is then just the prior and must not look confident.
	if known == 0 {
		confidence = math.Min(confidence, 0.10)
	}

	return Prediction{
		Category:    best.stats.category,
		Subcategory: best.stats.subcategory,
		Confidence:  confidence,
	}
}

// Learn queues a corrected example and retrains once enough have accumulated.
// Returns true when a retrain happened.
func (c *Classifier) Learn(example Example) bool {
	c.mu.Lock()
	c.extra = append(c.extra, example)
	pending := len(c.extra)
	var corpus []Example
	if pending >= RetrainThreshold {
		corpus = append(append(corpus, seedExamples...), c.extra...)
	}
	c.mu.Unlock()

	if corpus == nil {
		return false
	}
	c.train(corpus)
	return true
}

func (c *Classifier) train(examples []Example) {
	labels := make(map[string]*labelStats)
	vocab := make(map[string]struct{})
	var docs float64

	for _, ex := range examples {
		features := featurize(ex.Description)
		if len(features) == 0 {
			continue
		}
		key := ex.Category + " > " + ex.Subcategory
		stats, ok := labels[key]
		if !ok {
			stats = &labelStats{
				tokenCounts: make(map[string]float64),
				category:    ex.Category,
				subcategory: ex.Subcategory,
			}
			labels[key] = stats
		}
		stats.docCount++
		docs++
		for _, tok := range features {
			stats.tokenCounts[tok]++
			stats.totalTokens++
			vocab[tok] = struct{}{}
		}
	}

	c.mu.Lock()
	c.labels = labels
	c.vocab = vocab
	c.docs = docs
	c.mu.Unlock()
}

// featurize produces unigram and bigram features from a description.
func featurize(description string) []string {
	tokens := normalize.Tokens(description)
	features := make([]string, 0, len(tokens)*2)
	features = append(features, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		features = append(features, tokens[i]+" "+tokens[i+1])
	}
	return features
}
