package analytics

import (
	"testing"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestResolveRates(t *testing.T) {
	svc := entity.AppointmentService{
		DefaultChargeRate:     dec("45"),
		DefaultContractorRate: dec("30"),
	}

	t.Run("appointment rates win", func(t *testing.T) {
		a := entity.Appointment{
			Service: svc,
			Rcras:   []entity.RecipientCharge{{ChargeRate: dec("40.50")}, {ChargeRate: dec("99")}},
			Cjas:    []entity.ContractorJob{{PayRate: dec("25")}},
		}
		rt := ResolveRates(&a)
		assert.Equal(t, Rate{Value: 40.5, Valid: true}, rt.Client)
		assert.Equal(t, Rate{Value: 25, Valid: true}, rt.Tutor)
		assert.True(t, rt.Commissionable())
		assert.Equal(t, 15.5, rt.Differential())
	})

	t.Run("service defaults when absent", func(t *testing.T) {
		a := entity.Appointment{
			Service: svc,
			Rcras:   []entity.RecipientCharge{{Recipient: 7}},
		}
		rt := ResolveRates(&a)
		assert.Equal(t, 45.0, rt.Client.Value)
		assert.Equal(t, 30.0, rt.Tutor.Value)
		assert.True(t, rt.Commissionable())
	})

	t.Run("explicit zero is kept and not commissionable", func(t *testing.T) {
		a := entity.Appointment{
			Service: svc,
			Rcras:   []entity.RecipientCharge{{ChargeRate: dec("0")}},
		}
		rt := ResolveRates(&a)
		assert.True(t, rt.Client.Valid)
		assert.False(t, rt.Client.Resolved())
		assert.False(t, rt.Commissionable())
	})

	t.Run("nothing to resolve", func(t *testing.T) {
		rt := ResolveRates(&entity.Appointment{})
		assert.False(t, rt.Client.Valid)
		assert.False(t, rt.Tutor.Valid)
		assert.False(t, rt.Commissionable())
	})
}
