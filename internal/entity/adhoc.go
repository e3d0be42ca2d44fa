package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdHocCharge is a one-off charge (or credit) raised against a client outside of an appointment.
type AdHocCharge struct {
	Id            int
	DateOccurred  time.Time
	Description   string
	CategoryName  string
	ClientId      int
	ClientCost    decimal.NullDecimal
	PayContractor decimal.NullDecimal
}

// Net returns client cost minus contractor pay, a missing contractor pay counts as zero.
func (a *AdHocCharge) Net() decimal.Decimal {
	net := a.ClientCost.Decimal
	if a.PayContractor.Valid {
		net = net.Sub(a.PayContractor.Decimal)
	}
	return net
}
