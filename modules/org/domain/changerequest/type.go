package changerequest

type Type string

const (
	TypeNewDepartment    Type = "new_department"
	TypeUpdateDepartment Type = "update_department"
	TypeNewPosition      Type = "new_position"
	TypeUpdatePosition   Type = "update_position"
	TypeClosePosition    Type = "close_position"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNewDepartment, TypeUpdateDepartment,
		TypeNewPosition, TypeUpdatePosition, TypeClosePosition:
		return true
	}
	return false
}

// RequiresDepartmentTarget reports whether target_department_id is mandatory.
func (t Type) RequiresDepartmentTarget() bool {
	return t == TypeNewDepartment || t == TypeUpdateDepartment
}

// RequiresPositionTarget reports whether target_position_id is mandatory.
// New-position requests describe a position that does not exist yet, so they
// carry no position target.
func (t Type) RequiresPositionTarget() bool {
	return t == TypeUpdatePosition || t == TypeClosePosition
}
