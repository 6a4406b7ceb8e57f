package detectors

import "strings"

// flightSpecificTokens are literal tokens that only a tool result could
// legitimately supply: airline names, carrier codes, currency markers.
// Matching is case-sensitive.
var flightSpecificTokens = []string{
	"Emirates",
	"Qatar",
	"Flydubai",
	"$",
	"USD",
	"EK",
	"QR",
	"FZ",
}

// FlightSpecificsDetector flags text that mentions concrete flight facts.
type FlightSpecificsDetector struct {
	tokens []string
}

func NewFlightSpecificsDetector() *FlightSpecificsDetector {
	return &FlightSpecificsDetector{tokens: flightSpecificTokens}
}

// NewFlightSpecificsDetectorWithTokens replaces the default token set.
func NewFlightSpecificsDetectorWithTokens(tokens []string) *FlightSpecificsDetector {
	return &FlightSpecificsDetector{tokens: append([]string(nil), tokens...)}
}

// Detect returns true and the first matching token if text contains any token.
func (d *FlightSpecificsDetector) Detect(text string) (bool, string) {
	for _, tok := range d.tokens {
		if tok != "" && strings.Contains(text, tok) {
			return true, tok
		}
	}
	return false, ""
}
