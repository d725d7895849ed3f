package domain

// Role is the closed set of roles an identity can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a stored or presented role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// Decision is the outcome of the authorization gate. A deny carries the
// caller's actual role and the required set for diagnostics; it never holds
// any other identity's data.
type Decision struct {
	Allowed  bool
	Role     Role
	Required []Role
}

// Authorize permits the role iff it is a member of the required set. Pure
// function of its inputs.
func Authorize(r Role, required ...Role) Decision {
	d := Decision{Role: r, Required: required}
	for _, want := range required {
		if r == want {
			d.Allowed = true
			return d
		}
	}
	return d
}
