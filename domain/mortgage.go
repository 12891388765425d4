package domain

// Program is the credit program a mortgage is issued under.
type Program int

const (
	ProgramNone Program = iota
	ProgramSalary
	ProgramMilitary
	ProgramBase
)

func (p Program) String() string {
	switch p {
	case ProgramSalary:
		return "salary"
	case ProgramMilitary:
		return "military"
	case ProgramBase:
		return "base"
	}
	return "none"
}

// LoanParameters are the borrower supplied inputs of a calculation.
type LoanParameters struct {
	ObjectCost     float64 `json:"object_cost"`
	InitialPayment float64 `json:"initial_payment"`
	Months         uint8   `json:"months"`
}

// ProgramSelection carries the program flags exactly as they were received.
// A nil flag means the flag was absent.
type ProgramSelection struct {
	Base     *bool `json:"base,omitempty"`
	Military *bool `json:"military,omitempty"`
	Salary   *bool `json:"salary,omitempty"`
}

// Resolve parses the flags into a single Program. Exactly one flag must be
// explicitly true.
func (s ProgramSelection) Resolve() (Program, error) {
	selected := ProgramNone
	count := 0

	// priority order: salary, military, base
	for _, c := range []struct {
		flag    *bool
		program Program
	}{
		{s.Salary, ProgramSalary},
		{s.Military, ProgramMilitary},
		{s.Base, ProgramBase},
	} {
		if c.flag != nil && *c.flag {
			count++
			if selected == ProgramNone {
				selected = c.program
			}
		}
	}

	switch {
	case count == 0:
		return ProgramNone, ErrProgramNotSelected
	case count > 1:
		return ProgramNone, ErrMultipleProgramsSelected
	}
	return selected, nil
}

// Clone returns a copy that shares no flag pointers with s.
func (s ProgramSelection) Clone() ProgramSelection {
	return ProgramSelection{
		Base:     cloneFlag(s.Base),
		Military: cloneFlag(s.Military),
		Salary:   cloneFlag(s.Salary),
	}
}

func cloneFlag(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// SelectProgram builds a selection with only the given program flagged.
func SelectProgram(p Program) ProgramSelection {
	t := true
	switch p {
	case ProgramSalary:
		return ProgramSelection{Salary: &t}
	case ProgramMilitary:
		return ProgramSelection{Military: &t}
	case ProgramBase:
		return ProgramSelection{Base: &t}
	}
	return ProgramSelection{}
}

// Aggregates are the values derived from LoanParameters and the program.
type Aggregates struct {
	Rate            float64 `json:"rate"`
	LoanSum         float64 `json:"loan_sum"`
	MonthlyPayment  float64 `json:"monthly_payment"`
	Overpayment     float64 `json:"overpayment"`
	LastPaymentDate string  `json:"last_payment_date"`
}

// Mortgage is a fully calculated loan record.
type Mortgage struct {
	Params     LoanParameters   `json:"params"`
	Program    ProgramSelection `json:"program"`
	Aggregates Aggregates       `json:"aggregates"`
}

func (m Mortgage) Clone() Mortgage {
	m.Program = m.Program.Clone()
	return m
}

// RegistryEntry is a Mortgage tagged with the id the registry assigned to it.
type RegistryEntry struct {
	ID uint32 `json:"id"`
	Mortgage
}
