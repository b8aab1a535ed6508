package model

// Employee is reference data consulted when creating issues.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}
