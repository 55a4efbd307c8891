package rbac

import (
	"grc-backend/models"
)

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	DELETE HTTPMethod = "DELETE"
)

// routeRule route registered from a swagger pattern, an empty segment is a path parameter
type routeRule struct {
	segments []string
	params   int
	handler  models.RbacFunc
}

func (r routeRule) match(parts []string) bool {
	if len(parts) != len(r.segments) {
		return false
	}
	for idx, segment := range r.segments {
		if segment == "" {
			if parts[idx] == "" {
				return false
			}
			continue
		}
		if segment != parts[idx] {
			return false
		}
	}
	return true
}
