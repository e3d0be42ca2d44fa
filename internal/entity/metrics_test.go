package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675, 2))
	assert.Equal(t, 33.33, Round(100.0/3, 2))
	assert.Equal(t, 66.7, Round(2.0/3*100, 1))
	assert.Equal(t, -1.5, Round(-1.499, 2))
}

func TestCommissionPairRate(t *testing.T) {
	assert.Nil(t, CommissionPair{TotalCommission: 10}.Rate())

	r := CommissionPair{TotalCommission: 45, TotalHours: 2}.Rate()
	require.NotNil(t, r)
	assert.Equal(t, 22.5, *r)
}

func TestSeriesRoundingAtBoundary(t *testing.T) {
	s := StatusSeries{
		Months: []string{"2024-01", "2024-02"},
		Statuses: []StatusData[float64]{
			{Status: "complete", Data: []float64{10.0 / 3, 0.1 + 0.2}},
		},
	}
	r := s.Rounded()
	assert.Equal(t, []float64{3.33, 0.3}, r.Statuses[0].Data)
	// the source series is left untouched
	assert.Equal(t, 10.0/3, s.Statuses[0].Data[0])

	rs := RateSeries{
		Months:   []string{"2024-01"},
		Statuses: []StatusData[CommissionPair]{{Status: "complete", Data: []CommissionPair{{TotalCommission: 12.345, TotalHours: 1.0 / 3}}}},
	}.Rounded()
	assert.Equal(t, CommissionPair{TotalCommission: 12.35, TotalHours: 0.33}, rs.Statuses[0].Data[0])

	j := JobCommission{Service: "Maths", ClientRate: 80.0 / 3, Count: 3}.Rounded()
	assert.Equal(t, 26.67, j.ClientRate)
	assert.Equal(t, 3, j.Count)
}

func TestClientAttr(t *testing.T) {
	c := Client{ExtraAttrs: []ExtraAttr{
		{MachineName: EnquiryDateAttr, Value: ""},
		{MachineName: EnquiryDateAttr, Value: "2024-01-02"},
	}}
	v, ok := c.Attr(EnquiryDateAttr)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-02", v)

	_, ok = c.Attr("missing")
	assert.False(t, ok)
}

func TestAdHocNet(t *testing.T) {
	a := AdHocCharge{ClientCost: decimal.NewNullDecimal(decimal.RequireFromString("10.00"))}
	assert.True(t, a.Net().Equal(decimal.RequireFromString("10")))

	a.PayContractor = decimal.NewNullDecimal(decimal.RequireFromString("4.50"))
	assert.True(t, a.Net().Equal(decimal.RequireFromString("5.5")))
}
