package member

import "time"

type Member struct {
	Account  string    `json:"account" firestore:"account"`
	Name     string    `json:"name,omitempty" firestore:"name"`
	Roles    []string  `json:"roles,omitempty" firestore:"roles"`
	JoinDate time.Time `json:"joinDate,omitempty" firestore:"joinDate"`
}

func (m *Member) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}
