package model

type Role struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
}

type User struct {
	ID             int64  `db:"id" json:"id"`
	Email          string `db:"email" json:"email"`
	HashedPassword string `db:"hashed_password" json:"-"`
	IsActive       bool   `db:"is_active" json:"is_active"`
	Roles          []Role `db:"-" json:"roles"`
}
