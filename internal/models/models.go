package models

// Role restricts which mutating operations a user may invoke.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"   json:"id"`
	Username     string `gorm:"uniqueIndex;not null"       json:"username"`
	Email        string `gorm:"uniqueIndex;not null"       json:"email"`
	PasswordHash string `gorm:"not null"                   json:"-"`
	Role         Role   `gorm:"not null;default:customer"  json:"role"`
	IsActive     bool   `gorm:"not null;default:true"      json:"is_active"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"uniqueIndex;not null"      json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Quantity    int     `gorm:"not null;default:0"        json:"quantity"`
}
