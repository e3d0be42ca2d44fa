package entity

import "github.com/shopspring/decimal"

const ServiceStatusAvailable = "available"

// Service is a TutorCruncher job, the unit tutors apply for and appointments are booked under.
type Service struct {
	Id                    int                 `db:"id"`
	Name                  string              `db:"name"`
	Status                string              `db:"status"`
	DefaultChargeType     string              `db:"dft_charge_type"`
	DefaultChargeRate     decimal.NullDecimal `db:"dft_charge_rate"`
	DefaultContractorRate decimal.NullDecimal `db:"dft_contractor_rate"`
	URL                   string              `db:"url"`
}
