package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin        = 1
	RoleIDReceptionist = 2
	RoleIDDoctor       = 3
	RoleIDPatient      = 4
)

// RoleNames constants
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleDoctor       = "doctor"
	RolePatient      = "patient"
)

// RoleIDByName maps a role name to its seeded ID, 0 when unknown.
func RoleIDByName(name string) int {
	switch name {
	case RoleAdmin:
		return RoleIDAdmin
	case RoleReceptionist:
		return RoleIDReceptionist
	case RoleDoctor:
		return RoleIDDoctor
	case RolePatient:
		return RoleIDPatient
	default:
		return 0
	}
}

// RoleNameByID is the inverse of RoleIDByName.
func RoleNameByID(id int) string {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDReceptionist:
		return RoleReceptionist
	case RoleIDDoctor:
		return RoleDoctor
	case RoleIDPatient:
		return RolePatient
	default:
		return ""
	}
}
