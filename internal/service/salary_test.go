package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

func statutoryPolicy() models.OrganizationPolicy {
	return models.OrganizationPolicy{Rate100: 30, Rate125: 37.5, Rate150: 45}
}

func bonusPolicy() models.OrganizationPolicy {
	policy := statutoryPolicy()
	policy.IsBonusPaid = true
	return policy
}

func TestComputeSalaryStatutoryWindows(t *testing.T) {
	breakdown := ComputeSalary(8, 2, 1, statutoryPolicy())

	assert.Equal(t, 240.0, breakdown.BaseSalary)
	assert.Equal(t, 240.0, breakdown.Salary100)
	assert.Equal(t, 75.0, breakdown.Salary125)
	assert.Equal(t, 45.0, breakdown.Salary150)
	assert.Equal(t, 0.0, breakdown.Bonus)
	assert.Equal(t, 360.0, breakdown.TotalSalary)
}

func TestComputeSalaryBonusPolicyBlendsOvertime(t *testing.T) {
	breakdown := ComputeSalary(8, 2, 1, bonusPolicy())

	assert.Equal(t, 240.0, breakdown.BaseSalary)
	// All overtime hours are paid at the 125% rate as a single bonus.
	assert.Equal(t, 112.5, breakdown.Bonus)
	assert.Equal(t, 0.0, breakdown.Salary125)
	assert.Equal(t, 0.0, breakdown.Salary150)
	assert.Equal(t, 352.5, breakdown.TotalSalary)
}

func TestComputeSalaryNoOvertime(t *testing.T) {
	statutory := ComputeSalary(6.5, 0, 0, statutoryPolicy())
	bonus := ComputeSalary(6.5, 0, 0, bonusPolicy())

	assert.Equal(t, 195.0, statutory.TotalSalary)
	assert.Equal(t, statutory.TotalSalary, bonus.TotalSalary)
	assert.Zero(t, bonus.Bonus)
}

func TestComputeSalaryDeterministic(t *testing.T) {
	first := ComputeSalary(7.33, 1.67, 0.25, statutoryPolicy())
	second := ComputeSalary(7.33, 1.67, 0.25, statutoryPolicy())
	assert.Equal(t, first, second)
}

func TestComputeContainerWage(t *testing.T) {
	pricing := models.PricingCombination{ContainerNorm: 4, PricePerNorm: 200}

	assert.Equal(t, 200.0, ComputeContainerWage(4, pricing))
	assert.Equal(t, 100.0, ComputeContainerWage(2, pricing))
	assert.Equal(t, 275.0, ComputeContainerWage(5.5, pricing))
	assert.Equal(t, 0.0, ComputeContainerWage(0, pricing))
	assert.Equal(t, 0.0, ComputeContainerWage(3, models.PricingCombination{ContainerNorm: 0, PricePerNorm: 200}))
}
