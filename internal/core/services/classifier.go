package services

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// Classifier maps free text onto the closed topic set.
// It is pure and safe for concurrent use.
type Classifier struct {
	rules    []domain.TopicRule
	delivery []string
}

// NewClassifier creates a classifier over the given rule table.
// A nil or empty table selects domain.DefaultTopicRules.
func NewClassifier(rules []domain.TopicRule) *Classifier {
	if len(rules) == 0 {
		rules = domain.DefaultTopicRules()
	}
	return &Classifier{
		rules:    normaliseRules(rules),
		delivery: domain.DeliveryKeywords(),
	}
}

// Classify returns the first topic, in rule order, whose keyword occurs in
// the question. Matching is case-insensitive substring containment over
// folded text. Questions matching no rule, including the empty string, are General.
func (c *Classifier) Classify(question string) domain.Topic {
	lowered := fold(question)
	for _, r := range c.rules {
		if r.Matches(lowered) {
			return r.Topic
		}
	}
	return domain.TopicGeneral
}

// WantsDelivery returns true if the question asks for the report to be e-mailed.
func (c *Classifier) WantsDelivery(question string) bool {
	lowered := fold(question)
	for _, kw := range c.delivery {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Rules returns a copy of the active rule table.
func (c *Classifier) Rules() []domain.TopicRule {
	out := make([]domain.TopicRule, len(c.rules))
	for i, r := range c.rules {
		out[i] = domain.TopicRule{Topic: r.Topic, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// MergeTopicRules appends extra keywords to the matching rules of base.
// Priority order is that of base; extras for General or unknown topics are ignored.
func MergeTopicRules(base []domain.TopicRule, extra map[domain.Topic][]string) []domain.TopicRule {
	out := make([]domain.TopicRule, len(base))
	for i, r := range base {
		kws := append([]string(nil), r.Keywords...)
		for _, kw := range extra[r.Topic] {
			kw = fold(strings.TrimSpace(kw))
			if kw != "" && !slices.Contains(kws, kw) {
				kws = append(kws, kw)
			}
		}
		out[i] = domain.TopicRule{Topic: r.Topic, Keywords: kws}
	}
	return out
}

func normaliseRules(rules []domain.TopicRule) []domain.TopicRule {
	out := make([]domain.TopicRule, 0, len(rules))
	for _, r := range rules {
		if r.Topic == domain.TopicGeneral {
			continue
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = fold(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		out = append(out, domain.TopicRule{Topic: r.Topic, Keywords: kws})
	}
	return out
}

// fold lowers s with full Unicode case folding over its composed form, so
// "STRASSE" matches "straße" and decomposed accents match composed ones.
// A Caser is stateful, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
