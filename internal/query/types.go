package query

import "errors"

type Kind string

const (
	KindPrice Kind = "price"
	KindChart Kind = "chart"
)

const (
	DefaultRange    = "6mo"
	DefaultInterval = "daily"
)

// Request is the routed form of one free-text query. Exactly one Kind is
// set; Range and Interval are meaningful only when Kind is KindChart.
type Request struct {
	Kind     Kind   `json:"kind"`
	Subject  string `json:"subject"`
	Range    string `json:"range,omitempty"`
	Interval string `json:"interval,omitempty"`
}

var (
	// ErrNoSubject means no company or ticker could be identified in the
	// query text. The caller should ask the user to clarify.
	ErrNoSubject = errors.New("no subject identified in query")

	// ErrBadClassification means an external classifier returned output
	// that does not match the Request contract.
	ErrBadClassification = errors.New("malformed classifier output")
)

var validRanges = map[string]bool{
	"1d":  true,
	"5d":  true,
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
	"5y":  true,
	"max": true,
}

var validIntervals = map[string]bool{
	"daily":   true,
	"weekly":  true,
	"monthly": true,
}

func ValidRange(code string) bool {
	return validRanges[code]
}

func ValidInterval(code string) bool {
	return validIntervals[code]
}

// Normalize fills chart defaults and clears range/interval on price
// requests so the two variants stay distinguishable downstream.
func Normalize(r Request) Request {
	if r.Kind != KindChart {
		r.Range = ""
		r.Interval = ""
		return r
	}
	if !ValidRange(r.Range) {
		r.Range = DefaultRange
	}
	if !ValidInterval(r.Interval) {
		r.Interval = DefaultInterval
	}
	return r
}
