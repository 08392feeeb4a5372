package content

// Fixed ids of the animated page elements.
const (
	RevealHero             = "hero"
	RevealExpertiseHeading = "expertise-heading"
	RevealProjectsHeading  = "projects-heading"
	RevealArchitectureHead = "architecture-heading"
	RevealPrinciples       = "architecture-principles"
	RevealContactHeading   = "contact-heading"
	RevealContactInfo      = "contact-info"
	RevealContactCallout   = "contact-callout"
	RevealContactForm      = "contact-form"
	RevealFooterCredit     = "footer-credit"
	RevealFooterTagline    = "footer-tagline"
)

const expertiseAreaPrefix = "expertise-area-"

// ExpertiseRevealID is the reveal id of an expertise card. Its skill bars
// fill in once the card has been seen.
func ExpertiseRevealID(areaID string) string {
	return expertiseAreaPrefix + areaID
}

// RevealIDs lists every element that animates in on first sight.
func (s *Site) RevealIDs() []string {
	ids := []string{RevealHero, RevealExpertiseHeading}
	for _, area := range s.doc.Expertise.Areas {
		ids = append(ids, ExpertiseRevealID(area.ID))
	}

	return append(ids,
		RevealProjectsHeading,
		RevealArchitectureHead,
		RevealPrinciples,
		RevealContactHeading,
		RevealContactInfo,
		RevealContactCallout,
		RevealContactForm,
		RevealFooterCredit,
		RevealFooterTagline,
	)
}
