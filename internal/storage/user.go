package storage

import "time"

type UserRole string

const (
	RoleAdmin         UserRole = "admin"
	RoleTenderManager UserRole = "tender_manager"
	RoleBoss          UserRole = "boss"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTenderManager, RoleBoss:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	About        string    `json:"about"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch — частичное обновление профиля, nil-поля не трогаем
type UserPatch struct {
	Username *string   `json:"username"`
	Email    *string   `json:"email"`
	Phone    *string   `json:"phone"`
	About    *string   `json:"about"`
	Role     *UserRole `json:"role"`
	Password *string   `json:"password"`
}

// Actor — пользователь, от имени которого выполняется запрос.
type Actor struct {
	ID   int64
	Role UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
