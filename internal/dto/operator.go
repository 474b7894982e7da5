package dto

import "github.com/eventops/taskflow/internal/models"

// OperatorDTO represents an operator in API responses
type OperatorDTO struct {
	ID           uint64 `json:"id"`
	Email        string `json:"email"`
	DepartmentID uint64 `json:"department_id"`
}

// ToOperatorDTO converts an Operator model to OperatorDTO
func ToOperatorDTO(operator models.Operator) OperatorDTO {
	return OperatorDTO{
		ID:           operator.ID,
		Email:        operator.Email,
		DepartmentID: operator.DepartmentID,
	}
}
