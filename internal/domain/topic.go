package domain

import (
	"fmt"
	"strings"
)

// Aspect is one of the five lenses a period is studied through.
type Aspect string

const (
	AspectPolitical                 Aspect = "Political"
	AspectEconomic                  Aspect = "Economic"
	AspectSocialCulturalEducational Aspect = "Social/Cultural/Educational"
	AspectDiplomatic                Aspect = "Diplomatic"
	AspectMilitary                  Aspect = "Military"
)

// Aspects returns every aspect in display order.
func Aspects() []Aspect {
	return []Aspect{
		AspectPolitical,
		AspectEconomic,
		AspectSocialCulturalEducational,
		AspectDiplomatic,
		AspectMilitary,
	}
}

// Key is the dataset key for the aspect, e.g. "social_cultural_educational".
func (a Aspect) Key() string {
	return strings.ReplaceAll(strings.ToLower(string(a)), "/", "_")
}

// ParseAspect accepts either the display name or the dataset key.
func ParseAspect(s string) (Aspect, error) {
	for _, a := range Aspects() {
		if strings.EqualFold(s, string(a)) || strings.EqualFold(s, a.Key()) {
			return a, nil
		}
	}
	return "", NewInvalidInputError(fmt.Sprintf("unknown aspect %q", s))
}

// Period is one historical period of the syllabus.
type Period struct {
	Name    string
	Summary string
	Aspects map[Aspect]string
}

// AspectText returns the period's text for the aspect, or "" when absent.
func (p Period) AspectText(a Aspect) string {
	return p.Aspects[a]
}
