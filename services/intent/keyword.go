package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"medibook/models"
)

// specialtyAliases maps symptom and specialty phrases to canonical specialty
// names. The vocabulary mirrors the symptom mapping the language-model prompt
// uses, so both paths converge on the same specialties.
var specialtyAliases = map[string]string{
	"general physician": "General Physician",
	"gp":                "General Physician",
	"fever":             "General Physician",
	"cold":              "General Physician",
	"flu":               "General Physician",
	"headache":          "General Physician",

	"dermatologist": "Dermatologist",
	"skin":          "Dermatologist",
	"acne":          "Dermatologist",
	"pimple":        "Dermatologist",
	"hair fall":     "Dermatologist",

	"cardiologist": "Cardiologist",
	"heart":        "Cardiologist",
	"chest pain":   "Cardiologist",
	"blood pressure": "Cardiologist",

	"pediatrician":  "Pediatrician",
	"paediatrician": "Pediatrician",
	"child":         "Pediatrician",
	"baby":          "Pediatrician",

	"dentist":    "Dentist",
	"teeth":      "Dentist",
	"tooth":      "Dentist",
	"root canal": "Dentist",

	"orthopedist": "Orthopedist",
	"orthopaedic": "Orthopedist",
	"bone":        "Orthopedist",
	"joint":       "Orthopedist",
	"fracture":    "Orthopedist",
	"knee":        "Orthopedist",

	"psychiatrist": "Psychiatrist",
	"depression":   "Psychiatrist",
	"anxiety":      "Psychiatrist",
	"therapist":    "Psychiatrist",

	"gynaecologist": "Gynaecologist",
	"gynecologist":  "Gynaecologist",
	"pregnancy":     "Gynaecologist",

	"ent":    "Ear, Nose, Throat",
	"sinus":  "Ear, Nose, Throat",
	"throat": "Ear, Nose, Throat",
}

var (
	confirmPhrases  = []string{"confirm", "yes, book", "yes book", "go ahead", "sounds good, book"}
	cancelPhrases   = []string{"cancel", "never mind", "nevermind", "don't book", "do not book"}
	bookPhrases     = []string{"book", "reserve", "take that slot", "take the slot", "appointment at"}
	schedulePhrases = []string{"slots", "schedule", "availability", "available time", "timings", "when is", "free on"}
	greetPhrases    = []string{"hello", "hi ", "hey", "thank", "good morning", "good evening", "how are you"}
	morePhrases     = []string{"show more", "more options", "more doctors", "next page", "anyone else"}
	unsetSpecialty  = []string{"not that specialty", "any specialty", "different specialty", "no, not that"}
	unsetRating     = []string{"any rating", "rating doesn't matter", "forget the rating"}
)

var (
	ratingRe   = regexp.MustCompile(`(?:rating|rated|stars?)\D{0,15}?(\d(?:\.\d)?)|(\d(?:\.\d)?)\s*stars?`)
	feesRe     = regexp.MustCompile(`(?:under|below|less than|cheaper than|max)\s*(?:rs\.?|₹|\$)?\s*(\d{2,5})`)
	radiusRe   = regexp.MustCompile(`within\s+(\d{1,3})\s*km`)
	afterRe    = regexp.MustCompile(`after\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	beforeRe   = regexp.MustCompile(`before\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	slotIDRe   = regexp.MustCompile(`slot_\S+`)
	atClockRe  = regexp.MustCompile(`at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	doctorRe   = regexp.MustCompile(`dr\.?\s+([a-z]+)`)
	ordinalRe  = regexp.MustCompile(`\b(first|second|third|fourth|fifth|1st|2nd|3rd|4th|5th|number\s+[1-5])\b`)
	insuranceRe = regexp.MustCompile(`(?:accepts?|covered by|with)\s+([a-z][a-z ]{2,25})\s+insurance`)
)

var ordinals = map[string]int{
	"first": 1, "1st": 1, "second": 2, "2nd": 2, "third": 3, "3rd": 3,
	"fourth": 4, "4th": 4, "fifth": 5, "5th": 5,
}

// KeywordClassifier is the deterministic rule fallback: exact and substring
// matches against a small vocabulary of specialty names, booking verbs and
// schedule verbs. It never calls out of process.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

func (k *KeywordClassifier) Classify(_ context.Context, text string, turn TurnContext) (models.Classification, error) {
	lower := strings.ToLower(text)
	delta := k.extractDelta(lower, turn)

	// One intent category per verb family; two or more firing at once is
	// ambiguous wording and routes to a clarification instead of a guess.
	type category struct {
		intent models.Intent
		hit    bool
	}
	cats := []category{
		{models.IntentConfirmBooking, containsAny(lower, confirmPhrases)},
		{models.IntentCancel, containsAny(lower, cancelPhrases)},
		{models.IntentBook, containsAny(lower, bookPhrases)},
		{models.IntentViewSchedule, containsAny(lower, schedulePhrases)},
	}
	var hits []models.Intent
	for _, c := range cats {
		if c.hit {
			hits = append(hits, c.intent)
		}
	}
	// "confirm the booking" and "cancel the booking" legitimately contain
	// booking verbs; the stronger verb wins before ambiguity is judged.
	if containsIntent(hits, models.IntentConfirmBooking) || containsIntent(hits, models.IntentCancel) {
		hits = removeIntent(hits, models.IntentBook)
	}
	if len(hits) > 1 {
		return models.Classification{Intent: models.IntentUnknown, Confidence: 0.3}, nil
	}

	cl := models.Classification{Delta: delta, Confidence: 0.9}
	cl.DoctorRef = extractDoctorRef(lower)
	cl.SlotRef = extractSlotRef(lower)

	switch {
	case len(hits) == 1:
		cl.Intent = hits[0]
	case containsAny(lower, morePhrases):
		cl.Intent = models.IntentSearch
		cl.NextPage = true
	case delta.Set.Specialty != nil:
		// A freshly named specialty is always a (re-)search.
		cl.Intent = models.IntentSearch
	case !delta.IsEmpty() && turn.HasResults:
		cl.Intent = models.IntentRefine
	case !delta.IsEmpty():
		cl.Intent = models.IntentSearch
	case containsAny(lower, greetPhrases):
		cl.Intent = models.IntentChitchat
		cl.Reply = "Hello! Tell me your symptoms or the kind of doctor you need, and I'll find one nearby."
	default:
		cl.Intent = models.IntentUnknown
		cl.Confidence = 0.4
	}
	return cl, nil
}

func (k *KeywordClassifier) extractDelta(lower string, turn TurnContext) models.FilterDelta {
	var delta models.FilterDelta

	for _, phrase := range unsetSpecialty {
		if strings.Contains(lower, phrase) {
			delta.Unset = append(delta.Unset, models.DimSpecialty)
		}
	}
	for _, phrase := range unsetRating {
		if strings.Contains(lower, phrase) {
			delta.Unset = append(delta.Unset, models.DimMinRating)
		}
	}

	if !hasUnset(delta, models.DimSpecialty) {
		// Longest alias wins so "chest pain" beats "pain" style collisions.
		// Word boundaries matter: "ent" must not fire inside "appointment".
		var best string
		for alias, specialty := range specialtyAliases {
			if containsWord(lower, alias) && len(alias) > len(best) {
				best = alias
				s := specialty
				delta.Set.Specialty = &s
			}
		}
	}

	if m := ratingRe.FindStringSubmatch(lower); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			delta.Set.MinRating = &v
		}
	}
	if m := feesRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			delta.Set.MaxFees = &v
		}
	}
	if m := radiusRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			delta.Set.RadiusKm = &v
		}
	}
	if (strings.Contains(lower, "near me") || strings.Contains(lower, "nearby") ||
		strings.Contains(lower, "close to me")) && turn.UserLocation != nil {
		p := models.NewGeoPoint(turn.UserLocation.Lat, turn.UserLocation.Lng)
		delta.Set.Location = &p
		if delta.Set.RadiusKm == nil {
			r := 10.0
			delta.Set.RadiusKm = &r
		}
	}
	if m := afterRe.FindStringSubmatch(lower); m != nil {
		t := toClock(m[1], m[2], m[3])
		delta.Set.AvailableAfter = &t
	}
	if m := beforeRe.FindStringSubmatch(lower); m != nil {
		t := toClock(m[1], m[2], m[3])
		delta.Set.AvailableBefore = &t
	}
	if strings.Contains(lower, "female doctor") || strings.Contains(lower, "lady doctor") || strings.Contains(lower, "woman doctor") {
		g := "female"
		delta.Set.Gender = &g
	} else if strings.Contains(lower, "male doctor") {
		g := "male"
		delta.Set.Gender = &g
	}
	if m := insuranceRe.FindStringSubmatch(lower); m != nil {
		ins := strings.TrimSpace(m[1])
		delta.Set.Insurance = &ins
	}

	return delta
}

func extractDoctorRef(lower string) string {
	if m := doctorRe.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	if m := ordinalRe.FindString(lower); m != "" {
		if strings.HasPrefix(m, "number") {
			return strings.TrimSpace(strings.TrimPrefix(m, "number"))
		}
		if n, ok := ordinals[m]; ok {
			return strconv.Itoa(n)
		}
	}
	return ""
}

func extractSlotRef(lower string) string {
	if m := slotIDRe.FindString(lower); m != "" {
		return m
	}
	if m := atClockRe.FindStringSubmatch(lower); m != nil {
		return toClock(m[1], m[2], m[3])
	}
	return ""
}

// toClock normalises "5 pm" style fragments to "17:00".
func toClock(hourStr, minStr, meridiem string) string {
	hour, _ := strconv.Atoi(hourStr)
	if meridiem == "pm" && hour < 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	if minStr == "" {
		minStr = "00"
	}
	return fmt.Sprintf("%02d:%s", hour, minStr)
}

// containsWord reports whether phrase occurs in s on word boundaries.
func containsWord(s, phrase string) bool {
	for idx := 0; ; {
		i := strings.Index(s[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isLetter(s[start-1])
		afterOK := end == len(s) || !isLetter(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func containsIntent(hits []models.Intent, in models.Intent) bool {
	for _, h := range hits {
		if h == in {
			return true
		}
	}
	return false
}

func removeIntent(hits []models.Intent, in models.Intent) []models.Intent {
	out := hits[:0]
	for _, h := range hits {
		if h != in {
			out = append(out, h)
		}
	}
	return out
}

func hasUnset(d models.FilterDelta, dim models.Dimension) bool {
	for _, u := range d.Unset {
		if u == dim {
			return true
		}
	}
	return false
}
