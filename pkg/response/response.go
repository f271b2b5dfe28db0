// Package response maps (intent, language, context) to a localized reply
// string. Generation is a pure table lookup with a language-level default for
// unsupported languages and an intent-level default for unsupported intents;
// it never fails.
package response

import (
	"fmt"
	"strings"

	"github.com/gramseva/vaani/pkg/ai/intent"
)

// DefaultLanguage is used when the requested language has no template table.
const DefaultLanguage = "en"

// templates is keyed by language, then intent. The catch-all entry under
// intent.IntentUnknown doubles as the "unclear" help text. Placeholders of
// the form {key} are filled from the turn context; a placeholder with no
// value collapses together with its leading separator.
var templates = map[string]map[string]string{
	"en": {
		intent.IntentSchemeInquiry: "Here is what I found about government schemes: {schemes}. You can ask about eligibility, documents, or how to apply.",
		intent.IntentComplaint:     "I have noted your complaint. It will be forwarded to the concerned department and you will receive a reference number shortly.",
		intent.IntentWeather:       "Here is the weather update: {weather}.",
		intent.IntentCropAdvisory:  "Crop advisory: {advisory}.",
		intent.IntentMarketPrice:   "Latest mandi prices: {prices}.",
		intent.IntentHealth:        "For health guidance, please describe your symptoms. For emergencies, call 108 immediately.",
		intent.IntentHospital:      "Nearby government hospitals: {hospitals}.",
		intent.IntentGreeting:      "Namaste! I am your citizen services assistant. You can ask me about schemes, weather, mandi prices, crops, or health services.",
		intent.IntentHelp:          "You can ask me about government schemes, weather, mandi prices, crop advisories, health services, or file a complaint.",
		intent.IntentUnknown:       "I did not quite understand that. You can ask about schemes, weather, mandi prices, crops, or health services.",
	},
	"hi": {
		intent.IntentSchemeInquiry: "सरकारी योजनाओं की जानकारी: {schemes}। पात्रता, दस्तावेज़ या आवेदन के बारे में पूछ सकते हैं।",
		intent.IntentComplaint:     "आपकी शिकायत दर्ज कर ली गई है। इसे संबंधित विभाग को भेजा जाएगा और आपको शीघ्र ही संदर्भ संख्या मिलेगी।",
		intent.IntentWeather:       "मौसम की जानकारी: {weather}।",
		intent.IntentCropAdvisory:  "फसल सलाह: {advisory}।",
		intent.IntentMarketPrice:   "ताज़ा मंडी भाव: {prices}।",
		intent.IntentHealth:        "स्वास्थ्य सलाह के लिए कृपया अपने लक्षण बताएं। आपातकाल में तुरंत 108 पर कॉल करें।",
		intent.IntentHospital:      "नजदीकी सरकारी अस्पताल: {hospitals}।",
		intent.IntentGreeting:      "नमस्ते! मैं आपका नागरिक सेवा सहायक हूँ। आप योजनाओं, मौसम, मंडी भाव, फसल या स्वास्थ्य सेवाओं के बारे में पूछ सकते हैं।",
		intent.IntentHelp:          "आप सरकारी योजनाओं, मौसम, मंडी भाव, फसल सलाह, स्वास्थ्य सेवाओं के बारे में पूछ सकते हैं या शिकायत दर्ज कर सकते हैं।",
		intent.IntentUnknown:       "माफ़ कीजिए, मैं समझ नहीं पाया। आप योजनाओं, मौसम, मंडी भाव, फसल या स्वास्थ्य सेवाओं के बारे में पूछ सकते हैं।",
	},
}

// placeholderKeys are the context keys templates may reference.
var placeholderKeys = []string{"schemes", "weather", "advisory", "prices", "hospitals"}

// Generator resolves localized replies from the template table.
type Generator struct {
	defaultLanguage string
}

// NewGenerator creates a generator. An unsupported or empty defaultLanguage
// falls back to DefaultLanguage.
func NewGenerator(defaultLanguage string) *Generator {
	if _, ok := templates[defaultLanguage]; !ok {
		defaultLanguage = DefaultLanguage
	}
	return &Generator{defaultLanguage: defaultLanguage}
}

// Generate returns the reply for (intent, language) with placeholders filled
// from ctx. Missing templates resolve to the best-available default.
// Generate never returns "".
func (g *Generator) Generate(label, language string, ctx map[string]any) string {
	table, ok := templates[language]
	if !ok {
		table = templates[g.defaultLanguage]
	}

	tmpl, ok := table[label]
	if !ok {
		tmpl = table[intent.IntentUnknown]
	}

	return interpolate(tmpl, ctx)
}

// Languages returns the languages with a full template table.
func (g *Generator) Languages() []string {
	langs := make([]string, 0, len(templates))
	for lang := range templates {
		langs = append(langs, lang)
	}
	return langs
}

func interpolate(tmpl string, ctx map[string]any) string {
	out := tmpl
	for _, key := range placeholderKeys {
		placeholder := "{" + key + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		value := stringValue(ctx[key])
		if value == "" {
			// Drop the placeholder and its ": " separator.
			out = strings.ReplaceAll(out, ": "+placeholder, "")
			out = strings.ReplaceAll(out, placeholder, "")
		} else {
			out = strings.ReplaceAll(out, placeholder, value)
		}
	}
	return strings.TrimSpace(out)
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
