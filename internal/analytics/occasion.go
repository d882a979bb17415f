package analytics

import (
	"strings"

	"github.com/jekabolt/creator-analytics/internal/entity"
)

type keywordGroup struct {
	occasion entity.Occasion
	keywords []string
}

// occasionKeywords is checked top to bottom, the first group with a matching
// keyword wins.
var occasionKeywords = []keywordGroup{
	{entity.OccasionBirthday, []string{"birthday", "bday", "b-day", "born day"}},
	{entity.OccasionAnniversary, []string{"anniversary", "wedding", "married", "engagement", "honeymoon"}},
	{entity.OccasionGraduation, []string{"graduation", "graduating", "graduated", "graduate", "commencement", "diploma", "class of"}},
	{entity.OccasionHoliday, []string{"holiday", "christmas", "xmas", "new year", "hanukkah", "thanksgiving", "easter", "halloween", "valentine", "diwali", "festive"}},
	{entity.OccasionCustom, []string{"custom", "special", "personal"}},
}

// Classify maps free text to an occasion category. It never fails: text that
// matches no keyword, including the empty string, is classified as other.
func Classify(text string) entity.Occasion {
	t := strings.ToLower(text)
	if strings.TrimSpace(t) == "" {
		return entity.OccasionOther
	}
	for _, g := range occasionKeywords {
		for _, k := range g.keywords {
			if strings.Contains(t, k) {
				return g.occasion
			}
		}
	}
	return entity.OccasionOther
}

// resolveOccasion accepts a category name as is and classifies anything else.
func resolveOccasion(s string) entity.Occasion {
	if o, ok := entity.ParseOccasion(s); ok {
		return o
	}
	return Classify(s)
}

// orderOccasion prefers the category stored on the order and falls back to
// classifying its free text.
func orderOccasion(o entity.CompletedOrder) entity.Occasion {
	if o.Occasion.Valid {
		if occ, ok := entity.ParseOccasion(o.Occasion.String); ok {
			return occ
		}
	}
	return Classify(o.OccasionText.String)
}
