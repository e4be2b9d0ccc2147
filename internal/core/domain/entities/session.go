package entities

type Session struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
