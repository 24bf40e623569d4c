package models

// OrganizationPolicy carries the organization-wide pay settings. It is
// threaded explicitly into salary computation so the engine stays pure;
// nothing reads these values from ambient state.
type OrganizationPolicy struct {
	IsBonusPaid bool    `json:"is_bonus_paid"`
	Rate100     float64 `json:"rate_100"`
	Rate125     float64 `json:"rate_125"`
	Rate150     float64 `json:"rate_150"`
}

// OrganizationSettings is the persisted single-row organization config.
type OrganizationSettings struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	IsBonusPaid bool    `db:"is_bonus_paid" json:"is_bonus_paid"`
	Rate100     float64 `db:"rate_100" json:"rate_100"`
	Rate125     float64 `db:"rate_125" json:"rate_125"`
	Rate150     float64 `db:"rate_150" json:"rate_150"`
}

// Policy converts persisted settings into the value passed to computations.
func (s OrganizationSettings) Policy() OrganizationPolicy {
	return OrganizationPolicy{
		IsBonusPaid: s.IsBonusPaid,
		Rate100:     s.Rate100,
		Rate125:     s.Rate125,
		Rate150:     s.Rate150,
	}
}
