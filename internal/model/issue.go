package model

// Issue statuses.
const (
	StatusPending  = "pending"
	StatusIssued   = "issued"
	StatusReturned = "returned"
)

// IssuedItem is one line of an issue. ItemName is a snapshot taken at issue
// time; renaming or deleting the inventory item later does not change it.
type IssuedItem struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
	Returned int    `json:"returned,omitempty"`
}

// Outstanding returns the quantity not yet returned.
func (l IssuedItem) Outstanding() int {
	out := l.Quantity - l.Returned
	if out < 0 {
		return 0
	}
	return out
}

// Actor identifies the user performing an operation.
type Actor struct {
	Role       string `json:"role"`
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
}

// Issue represents an allocation of inventory items to an employee.
// EmployeeName and Department are snapshots taken at creation time.
type Issue struct {
	ID            string       `json:"id"`
	EmployeeID    string       `json:"employeeId"`
	EmployeeName  string       `json:"employeeName"`
	Department    string       `json:"department"`
	Items         []IssuedItem `json:"items"`
	IssueDate     string       `json:"issueDate"`
	Status        string       `json:"status"`
	SignatureData string       `json:"signatureData,omitempty"`
	SignedDate    string       `json:"signedDate,omitempty"`
	CreatedBy     *Actor       `json:"createdBy,omitempty"`
}
