package entity

import "strings"

// Occasion is the closed set of purposes an order can be booked for.
type Occasion string

const (
	OccasionBirthday    Occasion = "birthday"
	OccasionAnniversary Occasion = "anniversary"
	OccasionGraduation  Occasion = "graduation"
	OccasionHoliday     Occasion = "holiday"
	OccasionCustom      Occasion = "custom"
	OccasionOther       Occasion = "other"
)

// Occasions lists every category in display order.
var Occasions = []Occasion{
	OccasionBirthday,
	OccasionAnniversary,
	OccasionGraduation,
	OccasionHoliday,
	OccasionCustom,
	OccasionOther,
}

// ParseOccasion matches s against the category names, ignoring case.
func ParseOccasion(s string) (Occasion, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, o := range Occasions {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}
