package detectors

import "strings"

// PassengerDetailsDetector checks whether the agent asked for the passenger
// identity data needed before a booking: a passport mention plus either a
// full-name or passenger mention.
type PassengerDetailsDetector struct{}

func NewPassengerDetailsDetector() *PassengerDetailsDetector {
	return &PassengerDetailsDetector{}
}

func (d *PassengerDetailsDetector) Detect(text string) bool {
	t := strings.ToLower(text)
	if !strings.Contains(t, "passport") {
		return false
	}
	return strings.Contains(t, "full name") || strings.Contains(t, "passenger")
}
