// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package similarity

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultTokenPattern is the scikit-learn default token pattern.
const DefaultTokenPattern = `(?u)\b\w\w+\b`

// defaultTokenRE matches runs of two or more Unicode word characters, the
// RE2 equivalent of DefaultTokenPattern.
var defaultTokenRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Norm is the row normalization applied after weighting.
type Norm string

// Supported norms.
const (
	NormL2   Norm = "l2"
	NormL1   Norm = "l1"
	NormNone Norm = "none"
)

// ErrInvalidVectorizer is returned when fitted parameters are inconsistent.
var ErrInvalidVectorizer = errors.New("invalid vectorizer")

// VectorizerParams are the fitted parameters of a TF-IDF vectorizer.
type VectorizerParams struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    bool           `json:"lowercase"`
	NgramRange   [2]int         `json:"ngram_range"`
	StopWords    []string       `json:"stop_words"`
	SublinearTF  bool           `json:"sublinear_tf"`
	Norm         Norm           `json:"norm"`
	TokenPattern string         `json:"token_pattern"`
}

// Vectorizer maps text onto the fitted vocabulary. It is read-only after
// construction and safe for concurrent use.
type Vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	lowercase   bool
	ngramMin    int
	ngramMax    int
	stopWords   map[string]struct{}
	sublinearTF bool
	norm        Norm
	token       *regexp.Regexp
}

// NewVectorizer validates p and builds a Vectorizer.
func NewVectorizer(p VectorizerParams) (*Vectorizer, error) {
	if len(p.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrInvalidVectorizer)
	}
	if len(p.IDF) != len(p.Vocabulary) {
		return nil, fmt.Errorf("%w: idf length %d does not match vocabulary size %d",
			ErrInvalidVectorizer, len(p.IDF), len(p.Vocabulary))
	}
	for term, idx := range p.Vocabulary {
		if idx < 0 || idx >= len(p.IDF) {
			return nil, fmt.Errorf("%w: term %q has out-of-range index %d", ErrInvalidVectorizer, term, idx)
		}
	}

	lo, hi := p.NgramRange[0], p.NgramRange[1]
	if lo == 0 && hi == 0 {
		lo, hi = 1, 1
	}
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("%w: bad ngram range [%d, %d]", ErrInvalidVectorizer, lo, hi)
	}

	norm := p.Norm
	switch norm {
	case "":
		norm = NormL2
	case NormL2, NormL1, NormNone:
	default:
		return nil, fmt.Errorf("%w: unsupported norm %q", ErrInvalidVectorizer, p.Norm)
	}

	token, err := compileTokenPattern(p.TokenPattern)
	if err != nil {
		return nil, err
	}

	stop := make(map[string]struct{}, len(p.StopWords))
	for _, w := range p.StopWords {
		stop[w] = struct{}{}
	}

	return &Vectorizer{
		vocabulary:  p.Vocabulary,
		idf:         p.IDF,
		lowercase:   p.Lowercase,
		ngramMin:    lo,
		ngramMax:    hi,
		stopWords:   stop,
		sublinearTF: p.SublinearTF,
		norm:        norm,
		token:       token,
	}, nil
}

// compileTokenPattern maps Python regex syntax onto RE2. The default pattern
// gets a Unicode-aware translation; custom patterns only lose the (?u) flag.
func compileTokenPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" || pattern == DefaultTokenPattern {
		return defaultTokenRE, nil
	}
	re, err := regexp.Compile(strings.TrimPrefix(pattern, "(?u)"))
	if err != nil {
		return nil, fmt.Errorf("%w: token pattern: %v", ErrInvalidVectorizer, err)
	}
	return re, nil
}

// Dimensions is the vocabulary size.
func (v *Vectorizer) Dimensions() int {
	return len(v.idf)
}

// Tokens splits text into analyzed terms: lowercased, tokenized, stop words
// removed and expanded to the configured n-gram range.
func (v *Vectorizer) Tokens(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	raw := v.token.FindAllString(text, -1)
	words := raw[:0]
	for _, w := range raw {
		if _, stop := v.stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}

	if v.ngramMin == 1 && v.ngramMax == 1 {
		return words
	}

	var terms []string
	if v.ngramMin == 1 {
		terms = append(terms, words...)
	}
	start := v.ngramMin
	if start == 1 {
		start = 2
	}
	for n := start; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

// Transform returns the normalized TF-IDF vector of text. Unknown terms are
// ignored, so empty or fully out-of-vocabulary text yields an empty vector.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]float64)
	for _, term := range v.Tokens(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	for _, idx := range vec.Indices {
		tf := counts[idx]
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec.Values = append(vec.Values, tf*v.idf[idx])
	}

	switch v.norm {
	case NormL2:
		vec.scale(vec.Norm())
	case NormL1:
		var sum float64
		for _, x := range vec.Values {
			sum += math.Abs(x)
		}
		vec.scale(sum)
	}
	return vec
}

// Vector is a sparse vector with ascending indices.
type Vector struct {
	Indices []int
	Values  []float64
}

// Norm is the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Empty reports whether the vector has no non-zero entries.
func (v Vector) Empty() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

func (v Vector) scale(divisor float64) {
	if divisor == 0 {
		return
	}
	for i := range v.Values {
		v.Values[i] /= divisor
	}
}
