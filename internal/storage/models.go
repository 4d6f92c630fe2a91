package storage

import (
	"database/sql"
)

type Entity struct {
	ID        string
	Name      string
	Kind      string
	Published bool
	CreatedAt string
}

type Record struct {
	ID          string
	Type        string
	Amount      float64
	Method      string
	CompanyID   string
	EmployeeID  string
	SelfTag     string
	ServiceFee  float64
	CreatedAt   sql.NullString
	Status      string
	Published   bool
	Description string
	Version     int64
	UpdatedAt   string
}
