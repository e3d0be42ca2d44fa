package mail

import (
	"context"
	"regexp"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
)

type templateName string

const (
	Opportunities templateName = "opportunities.gohtml"
)

var templateSubjects = map[templateName]string{
	Opportunities: "New tutoring opportunities",
}

// namePrefix matches a leading bracketed tag such as "[SW15] ".
var namePrefix = regexp.MustCompile(`^\[[^\]]+\]\s*`)

type Opportunity struct {
	Name string
	Rate string
}

type opportunitiesData struct {
	Count         int
	Opportunities []Opportunity
	ApplyURL      string
	ContactEmail  string
	Signature     string
}

// ToOpportunities converts available services into email lines. The tutor rate is rounded
// to whole pounds, N/A when the service has none.
func ToOpportunities(services []entity.Service) []Opportunity {
	out := make([]Opportunity, 0, len(services))
	for _, s := range services {
		rate := "N/A"
		if s.DefaultContractorRate.Valid {
			rate = s.DefaultContractorRate.Decimal.Round(0).String()
		}
		out = append(out, Opportunity{
			Name: namePrefix.ReplaceAllString(s.Name, ""),
			Rate: rate,
		})
	}
	return out
}

func (m *Mailer) opportunitiesData(services []entity.Service) opportunitiesData {
	return opportunitiesData{
		Count:         len(services),
		Opportunities: ToOpportunities(services),
		ApplyURL:      m.c.ApplyURL,
		ContactEmail:  m.c.ContactEmail,
		Signature:     m.c.Signature,
	}
}

// RenderOpportunities renders the opportunities email body as HTML.
func (m *Mailer) RenderOpportunities(services []entity.Service) (string, error) {
	return m.render(Opportunities, m.opportunitiesData(services))
}

// SendOpportunities mails the opportunities email to every configured recipient.
func (m *Mailer) SendOpportunities(ctx context.Context, services []entity.Service) error {
	return m.sendAll(ctx, Opportunities, m.opportunitiesData(services))
}
