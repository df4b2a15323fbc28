package contextengine

import (
	"math"
	"sort"
	"strings"
)

// BM25 parameters: the standard term-frequency saturation and length
// normalisation constants.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	words := []string{
		"the", "and", "for", "with", "that", "from", "this", "have", "will", "into",
		"when", "where", "what", "your", "their", "about", "which", "there", "been",
		"while", "without", "should", "could", "would", "using", "used", "they", "them",
		"then", "than", "only", "also", "over", "under", "after", "before", "each",
		"every", "more", "most", "some", "such", "within", "between", "because", "again",
		"almost", "always", "never", "being", "having", "through", "across", "please",
		"however", "though", "whereas", "among", "amongst", "whose", "ourselves", "yourselves",
		"themselves", "itself", "hers", "his", "herself", "himself", "it", "its",
		"you", "we", "our", "ours", "can", "cannot", "can't", "cant",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func isStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}

// bm25Document is one indexed entry: a document ID, its term-frequency map
// and total term count.
type bm25Document struct {
	id     string
	terms  map[string]int
	length int
}

// BM25Index is a lexical search index scored with the standard Okapi BM25
// formula.
type BM25Index struct {
	documents    []bm25Document
	avgDocLength float64
	idfCache     map[string]float64
}

// NewBM25Index returns an empty index.
func NewBM25Index() *BM25Index {
	return &BM25Index{idfCache: make(map[string]float64)}
}

// AddDocument tokenizes content and adds it to the index under id (the
// chunk's path-with-suffix key). Adding a document invalidates the IDF
// cache until Finalize runs again.
func (idx *BM25Index) AddDocument(id string, content string) {
	terms := tokenize(content)
	freq := make(map[string]int, len(terms))
	for _, t := range terms {
		freq[t]++
	}
	idx.documents = append(idx.documents, bm25Document{id: id, terms: freq, length: len(terms)})
	idx.idfCache = make(map[string]float64)
}

// Finalize computes average document length and per-term IDF scores. It
// must be called after indexing and before Search; it is cheap to call
// repeatedly (e.g. after every AddDocument batch) since it always
// recomputes from scratch.
func (idx *BM25Index) Finalize() {
	if len(idx.documents) == 0 {
		idx.avgDocLength = 0
		return
	}

	total := 0
	for _, d := range idx.documents {
		total += d.length
	}
	idx.avgDocLength = float64(total) / float64(len(idx.documents))

	docFreq := make(map[string]int)
	for _, d := range idx.documents {
		for term := range d.terms {
			docFreq[term]++
		}
	}

	numDocs := float64(len(idx.documents))
	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		idf[term] = math.Log1p((numDocs - float64(df) + 0.5) / (float64(df) + 0.5))
	}
	idx.idfCache = idf
}

// BM25Result is one scored document from Search.
type BM25Result struct {
	ID    string
	Score float64
}

// Search scores every document against query's tokenized terms and returns
// the top K by descending score, omitting zero scores.
func (idx *BM25Index) Search(query string, topK int) []BM25Result {
	queryTerms := tokenize(query)
	var results []BM25Result
	for _, doc := range idx.documents {
		score := idx.scoreDocument(doc, queryTerms)
		if score > 0 {
			results = append(results, BM25Result{ID: doc.id, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

func (idx *BM25Index) scoreDocument(doc bm25Document, queryTerms []string) float64 {
	if idx.avgDocLength == 0 {
		return 0
	}
	var score float64
	for _, term := range queryTerms {
		tf := float64(doc.terms[term])
		if tf == 0 {
			continue
		}
		idf := idx.idfCache[term]
		docLenNorm := float64(doc.length) / idx.avgDocLength

		numerator := tf * (bm25K1 + 1)
		denominator := bm25K1*(1-bm25B+bm25B*docLenNorm) + tf
		score += idf * (numerator / denominator)
	}
	return score
}

// Len returns the number of indexed documents.
func (idx *BM25Index) Len() int { return len(idx.documents) }

// IsEmpty reports whether the index has no documents.
func (idx *BM25Index) IsEmpty() bool { return len(idx.documents) == 0 }

// tokenize splits text into BM25 terms: special `::`-qualified and
// `--`-prefixed tokens pass through whole (and `::` tokens are additionally
// split into their non-stopword components), alphanumeric+underscore
// cleaned words over two characters that aren't stopwords, and adjacent-word
// bigrams for every window of two source words whose cleaned forms both
// qualify.
func tokenize(text string) []string {
	words := strings.Fields(text)
	var terms []string

	for _, word := range words {
		lower := strings.ToLower(word)

		hasDoubleColon := strings.Contains(lower, "::")
		hasDoubleDash := strings.HasPrefix(lower, "--")
		hasSpecial := hasDoubleColon || hasDoubleDash

		if hasSpecial && len(lower) > 2 {
			terms = append(terms, lower)
			if hasDoubleColon {
				for _, component := range strings.Split(lower, "::") {
					if len(component) > 2 && !isStopword(component) {
						terms = append(terms, component)
					}
				}
			}
		}

		clean := cleanToken(lower)
		if len(clean) > 2 && !isStopword(clean) && (!hasSpecial || clean != lower) {
			terms = append(terms, clean)
		}
	}

	for i := 0; i+1 < len(words); i++ {
		c0 := cleanToken(strings.ToLower(words[i]))
		c1 := cleanToken(strings.ToLower(words[i+1]))
		if len(c0) > 2 && len(c1) > 2 && !isStopword(c0) && !isStopword(c1) {
			terms = append(terms, c0+"_"+c1)
		}
	}

	return terms
}

func cleanToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
