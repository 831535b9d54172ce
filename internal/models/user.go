package models

// Role represents a user's role in the dashboard.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a dashboard user. Users are created from fixtures and are
// not mutated by the data service.
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   Role     `json:"role"`
	Skills []string `json:"skills"`
	Avatar string   `json:"avatar,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// FindUser returns the index of the user with the given ID, or -1.
func FindUser(users []User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

// ContainsUser reports whether a user with the given ID is in the list.
func ContainsUser(users []User, id string) bool {
	return FindUser(users, id) >= 0
}

// RemoveUser returns the list without any entry for the given ID.
func RemoveUser(users []User, id string) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// UniqueUsers returns the list keeping only the first entry for each ID.
func UniqueUsers(users []User) []User {
	seen := make(map[string]bool, len(users))
	out := make([]User, 0, len(users))
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}
