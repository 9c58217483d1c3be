package model

// User is an account that owns orders, one portfolio and one summary.
// The hashed password never leaves the process; JSON encoding skips it.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username       string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	HashedPassword string `gorm:"column:hashed_password;type:text" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserCreate is the signup payload.
type UserCreate struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserUpdate carries optional profile changes. A nil field means
// "leave untouched", which is not the same as an empty string.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UsersPublic is the list envelope for users. Count is the total number of
// user rows, independent of any filter or pagination applied to Data.
type UsersPublic struct {
	Data  []User `json:"data"`
	Count int64  `json:"count"`
}
