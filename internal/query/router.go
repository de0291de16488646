package query

import (
	"strconv"
	"strings"
)

// chartKeywords flip a query from the default price branch to the chart
// branch. Time-range phrases ("over the last 6 months") count as chart
// intent too and are detected during token scanning.
var chartKeywords = map[string]bool{
	"chart":       true,
	"charts":      true,
	"history":     true,
	"historical":  true,
	"performance": true,
	"graph":       true,
	"plot":        true,
	"trend":       true,
	"trends":      true,
}

// stopWords are trigger and filler words removed before the remaining
// tokens become the subject. Case-insensitive.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "for": true,
	"in": true, "on": true, "at": true, "to": true, "and": true,
	"is": true, "are": true, "was": true, "does": true, "did": true,
	"do": true, "it": true, "its": true, "how": true, "much": true,
	"what": true, "whats": true, "what's": true, "show": true,
	"give": true, "get": true, "tell": true, "display": true,
	"me": true, "i": true, "you": true, "can": true, "please": true,
	"want": true, "would": true, "like": true, "see": true,
	"current": true, "latest": true, "today": true, "now": true,
	"price": true, "prices": true, "stock": true, "stocks": true,
	"share": true, "shares": true, "quote": true, "quotes": true,
	"value": true, "worth": true, "cost": true, "about": true,
	"info": true, "information": true, "company": true,
	"ticker": true, "symbol": true, "data": true, "market": true,
	"over": true, "last": true, "past": true, "trading": true,
}

// rangePhrases maps a "<count> <unit>" time phrase to a range code.
// Phrases outside this table are still consumed as range text but leave
// the default in place.
var rangePhrases = map[string]string{
	"1 day":    "1d",
	"5 day":    "5d",
	"1 week":   "5d",
	"1 month":  "1mo",
	"3 month":  "3mo",
	"6 month":  "6mo",
	"1 year":   "1y",
	"5 year":   "5y",
	"max":      "max",
	"all time": "max",
}

var intervalWords = map[string]string{
	"daily":   "daily",
	"weekly":  "weekly",
	"monthly": "monthly",
}

// Classify routes free text to a price or chart request. It is a pure
// function of the input: chart-intent keywords or a time-range phrase
// select the chart branch, everything else defaults to price. Tokens left
// after removing trigger words and range phrases become the subject,
// case-preserved. Returns ErrNoSubject when nothing identifiable remains.
func Classify(text string) (Request, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Request{}, ErrNoSubject
	}

	req := Request{Kind: KindPrice}
	consumed := make([]bool, len(tokens))
	sawRangePhrase := false

	for i := 0; i < len(tokens); i++ {
		low := strings.ToLower(tokens[i])

		if chartKeywords[low] {
			req.Kind = KindChart
			consumed[i] = true
			continue
		}
		if iv, ok := intervalWords[low]; ok {
			req.Interval = iv
			consumed[i] = true
			continue
		}
		if v, ok := strings.CutPrefix(low, "range:"); ok {
			if ValidRange(v) {
				req.Range = v
			}
			sawRangePhrase = true
			consumed[i] = true
			continue
		}
		if v, ok := strings.CutPrefix(low, "interval:"); ok {
			if ValidInterval(v) {
				req.Interval = v
			}
			consumed[i] = true
			continue
		}
		if ValidRange(low) && low != "max" {
			// bare range code like "6mo" or "1y"
			req.Range = low
			sawRangePhrase = true
			consumed[i] = true
			continue
		}
		if code, width, ok := matchRangePhrase(tokens, i); ok {
			if code != "" {
				req.Range = code
			}
			sawRangePhrase = true
			for j := i; j < i+width; j++ {
				consumed[j] = true
			}
			i += width - 1
			continue
		}
		if stopWords[low] {
			consumed[i] = true
		}
	}

	if sawRangePhrase {
		req.Kind = KindChart
	}

	var subject []string
	for i, tok := range tokens {
		if !consumed[i] {
			subject = append(subject, tok)
		}
	}
	if len(subject) == 0 {
		return Request{}, ErrNoSubject
	}
	req.Subject = strings.Join(subject, " ")

	return Normalize(req), nil
}

// matchRangePhrase matches "<n> <unit>" or a standalone range word
// starting at tokens[i]. Returns the range code (empty when the phrase is
// recognized as time-range text but has no table entry), the number of
// tokens consumed, and whether anything matched.
func matchRangePhrase(tokens []string, i int) (string, int, bool) {
	low := strings.ToLower(tokens[i])

	if low == "max" {
		return "max", 1, true
	}
	if low == "all" && i+1 < len(tokens) && strings.ToLower(tokens[i+1]) == "time" {
		return "max", 2, true
	}
	if unit := singularUnit(low); unit != "" {
		// standalone singular unit ("over the past week") reads as one
		// unit back; plurals without a count stay on the default
		code := ""
		if low == unit {
			code = rangePhrases["1 "+unit]
		}
		return code, 1, true
	}

	n, err := strconv.Atoi(low)
	if err != nil || n <= 0 {
		return "", 0, false
	}
	if i+1 >= len(tokens) {
		return "", 0, false
	}
	unit := singularUnit(strings.ToLower(tokens[i+1]))
	if unit == "" {
		return "", 0, false
	}
	code := rangePhrases[strconv.Itoa(n)+" "+unit]
	return code, 2, true
}

func singularUnit(s string) string {
	switch s {
	case "day", "days":
		return "day"
	case "week", "weeks":
		return "week"
	case "month", "months":
		return "month"
	case "year", "years":
		return "year"
	}
	return ""
}

// tokenize splits on whitespace and strips surrounding punctuation while
// keeping inner characters ("what's", "BRK.B") intact.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
