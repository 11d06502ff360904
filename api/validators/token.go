package validators

import (
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid auth token")

const bearerScheme = "bearer"

// BearerToken extracts the token from an Authorization header value. A value
// without the Bearer scheme is taken as the raw token; the scheme word alone
// is rejected.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	var token string
	switch {
	case len(fields) == 1 && !strings.EqualFold(fields[0], bearerScheme):
		token = fields[0]
	case len(fields) == 2 && strings.EqualFold(fields[0], bearerScheme):
		token = fields[1]
	default:
		return "", ErrInvalidToken
	}
	return token, nil
}
