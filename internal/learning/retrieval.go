package learning

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ShayCichocki/cadre/pkg/models"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 10

// BM25 parameters - standard values from literature
const (
	bm25K1 = 1.2  // Term frequency saturation parameter
	bm25B  = 0.75 // Length normalization parameter
)

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_]*`)

// ScoredPattern is a search hit with its combined relevance score.
type ScoredPattern struct {
	Pattern models.LearningPattern `json:"pattern"`
	Score   float64                `json:"score"`
}

// Retriever ranks learning patterns against a free-text query.
// A Retriever holds no per-query state and is safe for concurrent use.
type Retriever struct {
	now func() time.Time
}

// NewRetriever creates a Retriever. A nil clock uses time.Now.
func NewRetriever(now func() time.Time) *Retriever {
	if now == nil {
		now = time.Now
	}
	return &Retriever{now: now}
}

// Search returns the patterns matching at least one query keyword, best
// first. limit <= 0 uses DefaultSearchLimit. Ties keep input order.
func (r *Retriever) Search(patterns []models.LearningPattern, query string, limit int) []ScoredPattern {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryTerms := extractKeywords(query)
	if len(queryTerms) == 0 || len(patterns) == 0 {
		return []ScoredPattern{}
	}
	avgDocLen, docFreqs := computeCorpusStats(patterns)
	totalDocs := len(patterns)

	now := r.now()
	hits := []ScoredPattern{}
	for _, p := range patterns {
		bm25 := bm25Score(p, queryTerms, avgDocLen, docFreqs, totalDocs)
		if bm25 <= 0 {
			continue
		}
		hits = append(hits, ScoredPattern{Pattern: p.Clone(), Score: calculateScore(p, bm25, now)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// recencyHalfLife is the age at which a pattern's recency factor halves.
const recencyHalfLife = 7 * 24 * time.Hour

// calculateScore combines text relevance with pattern quality:
//
//	(1 + BM25) * max(0.1, confidence) * recencyFactor
func calculateScore(p models.LearningPattern, bm25 float64, now time.Time) float64 {
	return (1 + bm25) * math.Max(0.1, p.Confidence) * recencyFactor(p.CreatedAt, now)
}

// recencyFactor is 0.5^(age/halfLife). Undated and future patterns count as new.
func recencyFactor(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 1
	}
	age := now.Sub(createdAt)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(recencyHalfLife))
}

// extractKeywords extracts meaningful keywords from text.
// It removes common stop words and returns unique, lowercase keywords.
func extractKeywords(text string) []string {
	if text == "" {
		return nil
	}

	stopWords := map[string]bool{
		"a": true, "an": true, "and": true, "are": true, "as": true,
		"at": true, "be": true, "by": true, "for": true, "from": true,
		"has": true, "have": true, "in": true, "is": true, "it": true,
		"its": true, "of": true, "on": true, "or": true, "that": true,
		"the": true, "this": true, "to": true, "was": true, "will": true,
		"with": true, "not": true, "but": true, "can": true, "do": true,
		"if": true, "then": true, "when": true, "where": true, "which": true,
		"what": true, "how": true, "why": true, "all": true, "any": true,
	}

	seen := make(map[string]bool)
	keywords := make([]string, 0)
	for _, word := range wordPattern.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if len(lower) < 2 || stopWords[lower] || seen[lower] {
			continue
		}
		seen[lower] = true
		keywords = append(keywords, lower)
	}
	return keywords
}

// documentText flattens the searchable parts of a pattern.
func documentText(p models.LearningPattern) string {
	var b strings.Builder
	b.WriteString(string(p.Kind))
	for _, payload := range []models.Payload{p.Input, p.Output} {
		for _, k := range payload.Keys() {
			b.WriteString(" ")
			b.WriteString(k)
			b.WriteString(" ")
			b.WriteString(payload.Data[k])
		}
	}
	for _, c := range p.Contexts {
		b.WriteString(" ")
		b.WriteString(c)
	}
	return b.String()
}

// bm25Score computes a BM25 relevance score for a pattern against query terms.
func bm25Score(p models.LearningPattern, queryTerms []string, avgDocLen float64, docFreqs map[string]int, totalDocs int) float64 {
	if len(queryTerms) == 0 || totalDocs == 0 {
		return 0
	}

	docTerms := tokenize(documentText(p))
	docLen := float64(len(docTerms))
	if docLen == 0 {
		return 0
	}

	termFreqs := make(map[string]int)
	for _, term := range docTerms {
		termFreqs[term]++
	}

	score := 0.0
	for _, term := range queryTerms {
		tf := float64(termFreqs[term])
		if tf == 0 {
			continue
		}

		df := docFreqs[term]
		if df == 0 {
			df = 1
		}

		// IDF component: log((N - df + 0.5) / (df + 0.5) + 1)
		idf := math.Log((float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5) + 1)

		lengthNorm := 1 - bm25B + bm25B*(docLen/avgDocLen)
		tfNorm := (tf * (bm25K1 + 1)) / (tf + bm25K1*lengthNorm)

		score += idf * tfNorm
	}
	return score
}

// tokenize splits text into lowercase tokens for BM25 scoring.
// Hyphenated tags such as "meta-learning" yield one token per part.
func tokenize(text string) []string {
	words := wordPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		lower := strings.ToLower(word)
		if len(lower) >= 2 {
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

// computeCorpusStats computes document frequencies and average document length.
func computeCorpusStats(patterns []models.LearningPattern) (avgDocLen float64, docFreqs map[string]int) {
	docFreqs = make(map[string]int)
	totalLen := 0

	for _, p := range patterns {
		tokens := tokenize(documentText(p))
		totalLen += len(tokens)

		seen := make(map[string]bool)
		for _, token := range tokens {
			if !seen[token] {
				seen[token] = true
				docFreqs[token]++
			}
		}
	}

	if len(patterns) > 0 {
		avgDocLen = float64(totalLen) / float64(len(patterns))
	}
	return avgDocLen, docFreqs
}
