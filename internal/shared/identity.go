package shared

import (
	"strconv"
	"strings"
)

// Identity is the strongly-typed view of the session principal. It is built
// once per request by the ingress middleware; downstream code never parses
// session values again.
type Identity struct {
	UserID  int64
	RoleTag string
}

// IdentityFromSession validates the raw session fields into an Identity.
// Returns false when the session carries no authenticated user.
func IdentityFromSession(sess *Session) (Identity, bool) {
	if sess == nil {
		return Identity{}, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return Identity{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Identity{}, false
	}
	return Identity{UserID: id, RoleTag: sess.RoleTag()}, true
}
