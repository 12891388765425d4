package repository

import "mortgage-service/domain"

// MortgageRegistry stores calculated mortgages under ids it assigns itself.
type MortgageRegistry interface {
	Insert(loan domain.Mortgage) (uint32, error)
	Snapshot() []domain.RegistryEntry
	Len() int
}
