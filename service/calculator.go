package service

import (
	"fmt"
	"math"
	"time"

	"mortgage-service/domain"
)

// RateTable maps every credit program to its annual rate in percent.
type RateTable struct {
	Salary   float64
	Military float64
	Base     float64
}

func DefaultRates() RateTable {
	return RateTable{Salary: SalaryRate, Military: MilitaryRate, Base: BaseRate}
}

// Validate rejects negative or non finite rates.
func (r RateTable) Validate() error {
	for name, v := range map[string]float64{
		"salary":   r.Salary,
		"military": r.Military,
		"base":     r.Base,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid %s rate %v", name, v)
		}
	}
	return nil
}

// Calculator runs the mortgage calculation pipeline. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	rates RateTable
	now   func() time.Time
}

type CalculatorOption func(*Calculator)

func WithRates(r RateTable) CalculatorOption {
	return func(c *Calculator) { c.rates = r }
}

// WithClock replaces the source of the current date used for the last
// payment date.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) { c.now = now }
}

func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		rates: DefaultRates(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Rates() RateTable { return c.rates }

// Calculate validates the request and derives every aggregate in order.
// Any failed step aborts the calculation.
func (c *Calculator) Calculate(
	params domain.LoanParameters,
	program domain.ProgramSelection,
) (domain.Mortgage, error) {

	if _, err := program.Resolve(); err != nil {
		return domain.Mortgage{}, err
	}
	if err := checkParameters(params); err != nil {
		return domain.Mortgage{}, err
	}
	if err := minInitialPaymentCheck(params); err != nil {
		return domain.Mortgage{}, err
	}

	loan := domain.Mortgage{
		Params:  params,
		Program: program.Clone(),
	}

	loan.Aggregates.LoanSum = loanSum(params)

	rate, err := c.rate(program)
	if err != nil {
		return domain.Mortgage{}, err
	}
	loan.Aggregates.Rate = rate

	loan.Aggregates.MonthlyPayment = monthlyPayment(loan.Aggregates.LoanSum, rate, params.Months)
	loan.Aggregates.Overpayment = overpayment(loan.Aggregates.MonthlyPayment, params.Months, loan.Aggregates.LoanSum)
	loan.Aggregates.LastPaymentDate = lastPaymentDate(c.now(), params.Months)

	return loan, nil
}

func checkParameters(p domain.LoanParameters) error {
	if p.Months == 0 {
		return fmt.Errorf("%w: months must be between 1 and 255", domain.ErrInvalidParameters)
	}
	for name, v := range map[string]float64{
		"object_cost":     p.ObjectCost,
		"initial_payment": p.InitialPayment,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidParameters, name)
		}
	}
	return nil
}

func minInitialPaymentCheck(p domain.LoanParameters) error {
	if p.InitialPayment < p.ObjectCost*MinInitialPaymentPercent/100 {
		return domain.ErrInsufficientInitialPayment
	}
	return nil
}

func loanSum(p domain.LoanParameters) float64 {
	return p.ObjectCost - p.InitialPayment
}

// rate picks the annual rate by priority salary, military, base.
func (c *Calculator) rate(program domain.ProgramSelection) (float64, error) {
	switch {
	case isSet(program.Salary):
		return c.rates.Salary, nil
	case isSet(program.Military):
		return c.rates.Military, nil
	case isSet(program.Base):
		return c.rates.Base, nil
	}
	return 0, domain.ErrProgramNotSelected
}

func isSet(b *bool) bool { return b != nil && *b }

// monthlyPayment is the annuity payment rounded up to a whole unit.
func monthlyPayment(sum, rate float64, months uint8) float64 {
	n := float64(months)
	monthlyRate := rate / 100 / 12
	if monthlyRate == 0 {
		return math.Ceil(sum / n)
	}

	growth := math.Pow(1+monthlyRate, n)
	return math.Ceil(sum * monthlyRate * growth / (growth - 1))
}

func overpayment(payment float64, months uint8, sum float64) float64 {
	return payment*float64(months) - sum
}

// lastPaymentDate adds the given number of calendar months to today (UTC).
// The day is clamped to the end of the target month, so Jan 31 plus one
// month is the last day of February.
func lastPaymentDate(now time.Time, months uint8) string {
	y, m, d := now.UTC().Date()

	total := int(m) - 1 + int(months)
	year := y + total/12
	month := time.Month(total%12 + 1)

	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(PaymentDateLayout)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
