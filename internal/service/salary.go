package service

import (
	"github.com/shopspring/decimal"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

// SalaryBreakdown prices one day's (or one month's) window hours under an
// organization policy. All values are rounded to 2 decimal places.
type SalaryBreakdown struct {
	BaseSalary  float64 `json:"base_salary"`
	Bonus       float64 `json:"bonus"`
	Salary100   float64 `json:"salary_100"`
	Salary125   float64 `json:"salary_125"`
	Salary150   float64 `json:"salary_150"`
	TotalSalary float64 `json:"total_salary"`
}

// ComputeSalary prices window hours. With IsBonusPaid the organization pays
// a single blended bonus for all overtime hours at the 125% rate and the
// per-window overtime lines are excluded from the payable breakdown;
// otherwise each window is paid at its statutory rate and bonus is zero.
// Pure and deterministic: the daily and monthly call sites must agree
// bit-for-bit on identical inputs.
func ComputeSalary(h100, h125, h150 float64, policy models.OrganizationPolicy) SalaryBreakdown {
	d100 := decimal.NewFromFloat(h100)
	d125 := decimal.NewFromFloat(h125)
	d150 := decimal.NewFromFloat(h150)

	r100 := decimal.NewFromFloat(policy.Rate100)
	r125 := decimal.NewFromFloat(policy.Rate125)
	r150 := decimal.NewFromFloat(policy.Rate150)

	base := d100.Mul(r100).Round(2)

	var breakdown SalaryBreakdown
	breakdown.BaseSalary, _ = base.Float64()
	breakdown.Salary100 = breakdown.BaseSalary

	if policy.IsBonusPaid {
		bonus := d125.Add(d150).Mul(r125).Round(2)
		total := base.Add(bonus).Round(2)
		breakdown.Bonus, _ = bonus.Float64()
		breakdown.TotalSalary, _ = total.Float64()
		return breakdown
	}

	s125 := d125.Mul(r125).Round(2)
	s150 := d150.Mul(r150).Round(2)
	total := base.Add(s125).Add(s150).Round(2)

	breakdown.Salary125, _ = s125.Float64()
	breakdown.Salary150, _ = s150.Float64()
	breakdown.TotalSalary, _ = total.Float64()
	return breakdown
}

// ComputeContainerWage prices filled containers against a pricing
// combination: the norm earns the full price, partial fills earn
// proportionally.
func ComputeContainerWage(containersFilled float64, pricing models.PricingCombination) float64 {
	if pricing.ContainerNorm <= 0 || containersFilled <= 0 {
		return 0
	}
	wage := decimal.NewFromFloat(containersFilled).
		Div(decimal.NewFromFloat(pricing.ContainerNorm)).
		Mul(decimal.NewFromFloat(pricing.PricePerNorm)).
		Round(2)
	out, _ := wage.Float64()
	return out
}
