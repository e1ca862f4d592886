package domain

// User Model
type User struct {
	Username string `gorm:"primaryKey" json:"username"` // Unique username
	Password string `gorm:"not null" json:"-"`          // Hashed password, never serialized
	Name     string `json:"name"`                       // Optional display name
	Email    string `json:"email"`                      // Optional email
}

// TableName keeps the table name stable regardless of gorm naming strategy
func (User) TableName() string {
	return "users"
}
