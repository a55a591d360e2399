package view

import (
	"strings"
	"unicode"

	"github.com/azdash-dev/azdash/pkg/types"
)

// Relatedness weights. Repository/author points are exclusive tiers; the
// shared-word bonus stacks on top.
const (
	sameRepoAndAuthorPoints = 50
	sameRepoPoints          = 15
	sameAuthorPoints        = 10
	sharedWordsPoints       = 20
	relatedThreshold        = 30
	minSharedWords          = 3
	minWordLength           = 4
)

// Scorer rates how related two pull requests are. The default weights are
// hand-tuned; keeping the strategy behind an interface lets them be replaced
// without touching the aggregation core.
type Scorer interface {
	Score(a, b types.EnrichedPullRequest) int
}

// WeightedScorer is the default point-scoring strategy.
type WeightedScorer struct{}

// Score rates the relatedness of two pull requests.
func (WeightedScorer) Score(a, b types.EnrichedPullRequest) int {
	sameRepo := a.Repository.Name == b.Repository.Name
	sameAuthor := a.CreatedBy.UniqueName == b.CreatedBy.UniqueName

	score := 0
	switch {
	case sameRepo && sameAuthor:
		score += sameRepoAndAuthorPoints
	case sameRepo:
		score += sameRepoPoints
	case sameAuthor:
		score += sameAuthorPoints
	}

	if sharedWordCount(a.Title, b.Title) >= minSharedWords {
		score += sharedWordsPoints
	}
	return score
}

// TopRelated returns the single best match for target among candidates, or
// false when nothing clears the threshold. The target itself never matches.
func TopRelated(candidates []types.EnrichedPullRequest, target types.EnrichedPullRequest, scorer Scorer) (types.EnrichedPullRequest, bool) {
	var best types.EnrichedPullRequest
	bestScore := 0
	for _, candidate := range candidates {
		if candidate.Repository.Name == target.Repository.Name && candidate.PullRequestID == target.PullRequestID {
			continue
		}
		if score := scorer.Score(target, candidate); score >= relatedThreshold && score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore > 0
}

// stopwords excluded from title matching; common connective words carry no
// relatedness signal.
var stopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true,
	"into": true, "when": true, "have": true, "will": true,
	"merge": true, "branch": true, "update": true,
}

// sharedWordCount counts the distinct significant words two titles share.
// A significant word is a lowercased alphanumeric token of at least
// minWordLength runes that is not a stopword.
func sharedWordCount(titleA, titleB string) int {
	wordsA := significantWords(titleA)
	if len(wordsA) == 0 {
		return 0
	}
	shared := 0
	for word := range significantWords(titleB) {
		if wordsA[word] {
			shared++
		}
	}
	return shared
}

func significantWords(title string) map[string]bool {
	words := make(map[string]bool)
	tokens := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		if len([]rune(token)) < minWordLength || stopwords[token] {
			continue
		}
		words[token] = true
	}
	return words
}
