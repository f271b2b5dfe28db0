package intent

import (
	"context"
	"regexp"
	"strings"
)

// Rule is one language-aware pattern in the fallback table. An empty Language
// applies to every language.
type Rule struct {
	Language string
	Pattern  *regexp.Regexp
	Intent   string
}

// defaultRules is the ordered fallback table. Evaluation is strictly
// first-match-wins in declaration order, which makes rule classification
// deterministic. More specific intents are listed before broader ones so a
// complaint about a scheme still classifies as a complaint.
var defaultRules = []Rule{
	// Hindi
	{"hi", regexp.MustCompile(`शिकायत|समस्या`), IntentComplaint},
	{"hi", regexp.MustCompile(`योजना|स्कीम|लाभ`), IntentSchemeInquiry},
	{"hi", regexp.MustCompile(`मौसम|बारिश|तापमान`), IntentWeather},
	{"hi", regexp.MustCompile(`फसल|खेती|बुवाई|बीज`), IntentCropAdvisory},
	{"hi", regexp.MustCompile(`मंडी|भाव|कीमत|दाम`), IntentMarketPrice},
	{"hi", regexp.MustCompile(`अस्पताल|डॉक्टर`), IntentHospital},
	{"hi", regexp.MustCompile(`स्वास्थ्य|बीमार|दवा|इलाज`), IntentHealth},
	{"hi", regexp.MustCompile(`नमस्ते|नमस्कार|प्रणाम`), IntentGreeting},
	{"hi", regexp.MustCompile(`मदद|सहायता`), IntentHelp},

	// English
	{"en", regexp.MustCompile(`(?i)complain|complaint|grievance|problem with`), IntentComplaint},
	{"en", regexp.MustCompile(`(?i)scheme|yojana|subsidy|benefit`), IntentSchemeInquiry},
	{"en", regexp.MustCompile(`(?i)weather|rain|temperature|forecast`), IntentWeather},
	{"en", regexp.MustCompile(`(?i)crop|sowing|harvest|seed|fertilizer`), IntentCropAdvisory},
	{"en", regexp.MustCompile(`(?i)mandi|market price|rate of|price of`), IntentMarketPrice},
	{"en", regexp.MustCompile(`(?i)hospital|doctor|clinic`), IntentHospital},
	{"en", regexp.MustCompile(`(?i)health|sick|medicine|treatment`), IntentHealth},
	{"en", regexp.MustCompile(`(?i)^(hi|hello|hey|namaste)\b`), IntentGreeting},
	{"en", regexp.MustCompile(`(?i)help|assist|what can you do`), IntentHelp},

	// Romanized Hindi, applies regardless of the declared language.
	{"", regexp.MustCompile(`(?i)mausam|baarish`), IntentWeather},
	{"", regexp.MustCompile(`(?i)mandi|bhav|keemat`), IntentMarketPrice},
	{"", regexp.MustCompile(`(?i)fasal|kheti`), IntentCropAdvisory},
	{"", regexp.MustCompile(`(?i)aspataal|aspatal`), IntentHospital},
	{"", regexp.MustCompile(`(?i)shikayat`), IntentComplaint},
}

// RuleClassifier evaluates an ordered rule table, first match wins. It never
// returns an error: unmatched input yields IntentUnknown with low confidence.
type RuleClassifier struct {
	rules []Rule
}

// NewRuleClassifier creates a classifier over the default rule table.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{rules: defaultRules}
}

// NewRuleClassifierWithRules creates a classifier over a custom table.
// Evaluation order is the slice order.
func NewRuleClassifierWithRules(rules []Rule) *RuleClassifier {
	return &RuleClassifier{rules: rules}
}

// Classify matches text against the rule table.
func (c *RuleClassifier) Classify(ctx context.Context, text, language string) (*Result, error) {
	trimmed := strings.TrimSpace(text)

	for _, rule := range c.rules {
		if rule.Language != "" && rule.Language != language {
			continue
		}
		if rule.Pattern.MatchString(trimmed) {
			return &Result{
				Intent:     rule.Intent,
				Confidence: RuleConfidence,
				Language:   language,
				Source:     SourceRules,
			}, nil
		}
	}

	return &Result{
		Intent:     IntentUnknown,
		Confidence: UnknownConfidence,
		Language:   language,
		Source:     SourceRules,
	}, nil
}
