package service

const (
	MinInitialPaymentPercent = 20.0 // % of the object cost

	// annual rates, % per annum
	SalaryRate   = 8.0
	MilitaryRate = 9.0
	BaseRate     = 10.0

	PaymentDateLayout = "2006-01-02"

	mortgageKeyPrefix = "mortgage:"
)
