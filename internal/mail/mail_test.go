package mail

import (
	"context"
	"net/http"
	"testing"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []*mail.SGMailV3
	status int
}

func (f *fakeSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return &rest.Response{StatusCode: f.status}, nil
}

var services = []entity.Service{
	{Name: "[SW15] GCSE Maths", DefaultContractorRate: decimal.NewNullDecimal(decimal.RequireFromString("32.50"))},
	{Name: "A-level <Physics>"},
}

func TestToOpportunities(t *testing.T) {
	ops := ToOpportunities(services)
	require.Len(t, ops, 2)
	assert.Equal(t, Opportunity{Name: "GCSE Maths", Rate: "33"}, ops[0])
	assert.Equal(t, Opportunity{Name: "A-level <Physics>", Rate: "N/A"}, ops[1])
}

func TestRenderOpportunities(t *testing.T) {
	m, err := New(&Config{ApplyURL: "https://example.com/apply", ContactEmail: "info@example.com"})
	require.NoError(t, err)

	html, err := m.RenderOpportunities(services)
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>2 opportunities</strong>")
	assert.Contains(t, html, "GCSE Maths – £33/hr")
	assert.Contains(t, html, "A-level &lt;Physics&gt; – £N/A/hr")
	assert.Contains(t, html, `href="https://example.com/apply"`)
	assert.Contains(t, html, "mailto:info@example.com")
}

func TestSendOpportunities(t *testing.T) {
	f := &fakeSender{status: http.StatusAccepted}
	m, err := newMailer(&Config{
		FromEmail:  "jobs@example.com",
		Recipients: []string{"a@example.com", "b@example.com"},
	}, f)
	require.NoError(t, err)

	require.NoError(t, m.SendOpportunities(context.Background(), services))
	require.Len(t, f.sent, 2)
	assert.Equal(t, "New tutoring opportunities", f.sent[0].Subject)
	assert.Equal(t, "b@example.com", f.sent[1].Personalizations[0].To[0].Address)
}

func TestSendOpportunities_Errors(t *testing.T) {
	m, err := New(&Config{})
	require.NoError(t, err)
	assert.ErrorIs(t, m.SendOpportunities(context.Background(), services), ErrNotConfigured)

	f := &fakeSender{status: http.StatusTooManyRequests}
	m, err = newMailer(&Config{Recipients: []string{"a@example.com"}}, f)
	require.NoError(t, err)
	assert.ErrorIs(t, m.SendOpportunities(context.Background(), services), ErrLimitReached)
}
