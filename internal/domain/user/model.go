package user

// Details is a user row's payload. The password hash never leaves the
// repository layer in API responses.
type Details struct {
	ID           string `json:"id"`
	EmailID      string `json:"emailId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PasswordHash string `json:"phash"`
	Status       string `json:"status"`
	Role         string `json:"role,omitempty"`
}

// StatusEnable is the only status a user may authenticate in.
const StatusEnable = "enable"

// RoleUser is the default role claim.
const RoleUser = "user"

// AuthorizedUser is the identity an accepted token resolves to.
type AuthorizedUser struct {
	UserID string
	Role   string
}
