package employee

import "time"

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

type Employee struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Department         string    `json:"department"`
	RoleID             int       `json:"roleId"`
	RoleName           string    `json:"roleName,omitempty"`
	RoleRank           int       `json:"roleRank,omitempty"`
	ReportingManagerID *string   `json:"reportingManagerId,omitempty"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
