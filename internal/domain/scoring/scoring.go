// Package scoring decides whether a venue candidate is a genuine nightlife
// venue.
//
// The engine is a pure function over a candidate snapshot plus a fixed
// ruleset: no I/O, no mutation, deterministic, and total over its input
// domain. Missing or malformed fields contribute nothing; they never fail
// the evaluation.
package scoring

import (
	"regexp"
	"strings"

	"github.com/okian/nitecap/internal/domain/venue"
)

// Signal weights and the acceptance threshold.
const (
	nightlifeFlagWeight = 40 // enrichment provider marked the place nightlife
	nightlifeTypeWeight = 25 // provider machine tag in {bar, night_club}
	firstNameHitWeight  = 20 // first positive keyword hit in the name
	extraNameHitWeight  = 5  // each additional name hit, diminishing
	categoryHitWeight   = 10 // per positive keyword hit across categories
	socialProfileWeight = 15 // social-profile validator vouched for the site
	lateHoursWeight     = 10 // closes in the late-night band on some day
	acceptThreshold     = 30
)

// Result is the scoring outcome. Score is kept for diagnostics and tests;
// Accept is the decision.
type Result struct {
	Score  int
	Accept bool
}

// SocialValidator reports whether a website belongs to a social profile
// whose content reads like a nightlife business. Implementations own their
// transport, timeout, and failure policy; the engine only consumes the
// boolean.
type SocialValidator interface {
	Validate(website string) bool
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSocialValidator injects the social-profile capability. Without it the
// social signal contributes nothing.
func WithSocialValidator(v SocialValidator) Option {
	return func(e *Engine) {
		e.social = v
	}
}

// Engine scores candidates against the fixed ruleset.
type Engine struct {
	whitelist map[string]struct{}
	nightlife map[string]struct{}
	words     []*regexp.Regexp // word-boundary matchers for single-word keywords
	phrases   []string
	social    SocialValidator
}

// New builds an Engine, precompiling the keyword matchers.
func New(opts ...Option) *Engine {
	e := &Engine{
		whitelist: make(map[string]struct{}, len(whitelistNames)),
		nightlife: make(map[string]struct{}, len(nightlifeTypes)),
	}
	for _, name := range whitelistNames {
		e.whitelist[name] = struct{}{}
	}
	for _, t := range nightlifeTypes {
		e.nightlife[t] = struct{}{}
	}
	for _, kw := range positiveKeywords {
		if strings.Contains(kw, " ") {
			e.phrases = append(e.phrases, kw)
			continue
		}
		e.words = append(e.words, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Score classifies a candidate. The order of checks matters: the whitelist
// wins outright, then hard negatives and the beauty-salon rule reject before
// any points accumulate.
func (e *Engine) Score(v venue.Venue) Result {
	name := strings.ToLower(strings.TrimSpace(v.Name))
	types := lowered(v.Types)
	cats := lowered(v.Categories)

	parts := append([]string{name}, types...)
	parts = append(parts, cats...)
	blob := strings.Join(parts, " ")

	if _, ok := e.whitelist[name]; ok {
		return Result{Score: acceptThreshold, Accept: true}
	}

	if e.hasNegative(blob) && e.countKeywords(blob) == 0 {
		return Result{}
	}

	if isBeautySalon(blob) {
		return Result{}
	}

	score := 0

	if v.IsNightlife {
		score += nightlifeFlagWeight
	}

	for _, t := range types {
		if _, ok := e.nightlife[t]; ok {
			score += nightlifeTypeWeight
			break
		}
	}

	if hits := e.countKeywords(name); hits > 0 {
		score += firstNameHitWeight + (hits-1)*extraNameHitWeight
	}
	score += e.countKeywords(strings.Join(cats, " ")) * categoryHitWeight

	if v.Website != "" && e.social != nil && e.social.Validate(v.Website) {
		score += socialProfileWeight
	}

	if v.Hours.HasLateClose() {
		score += lateHoursWeight
	}

	return Result{Score: score, Accept: score >= acceptThreshold}
}

// countKeywords counts positive keyword hits in text: word-boundary matches
// for single words, plain substring matches for phrases.
func (e *Engine) countKeywords(text string) int {
	hits := 0
	for _, re := range e.words {
		if re.MatchString(text) {
			hits++
		}
	}
	for _, p := range e.phrases {
		if strings.Contains(text, p) {
			hits++
		}
	}
	return hits
}

func (e *Engine) hasNegative(blob string) bool {
	for _, kw := range negativeKeywords {
		if strings.Contains(blob, kw) {
			return true
		}
	}
	return false
}

func isBeautySalon(blob string) bool {
	if !strings.Contains(blob, "salon") {
		return false
	}
	for _, t := range beautyTerms {
		if strings.Contains(blob, t) {
			return true
		}
	}
	return false
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
