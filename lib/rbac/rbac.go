package rbac

import (
	"grc-backend/models"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type Provider interface {
	GetRuleFunc(method, path string) (models.RbacFunc, bool)
	RegisterRule(module models.Module, permission models.Permission, roles []models.UserRole, swaggerPattern string, handler models.RbacFunc) error
	GetPermissions(role models.UserRole) map[models.Module][]models.Permission
}

var Instance Provider

func NewHandler() {
	i := &impl{
		rules:       map[HTTPMethod][]routeRule{},
		permissions: map[models.UserRole]map[models.Module][]models.Permission{},
	}
	i.initRules()
	Instance = i
}

type impl struct {
	rules       map[HTTPMethod][]routeRule
	permissions map[models.UserRole]map[models.Module][]models.Permission
}

// GetRuleFunc literal segments win over path parameters, /approvals/export is not /approvals/{id}
func (i *impl) GetRuleFunc(method, path string) (models.RbacFunc, bool) {
	parts := splitPath(path)
	for _, rule := range i.rules[HTTPMethod(strings.ToUpper(method))] {
		if rule.match(parts) {
			return rule.handler, true
		}
	}
	return nil, false
}

// RegisterRule panics on a malformed pattern, rules are registered once at startup
func (i *impl) RegisterRule(module models.Module, permission models.Permission, roles []models.UserRole, swaggerPattern string, handler models.RbacFunc) error {
	path, method, err := parseSwaggerPattern(swaggerPattern)
	if err != nil {
		panic(err.Error())
	}

	for _, role := range roles {
		modules, ok := i.permissions[role]
		if !ok {
			modules = map[models.Module][]models.Permission{}
			i.permissions[role] = modules
		}
		if !slices.Contains(modules[module], permission) {
			modules[module] = append(modules[module], permission)
		}
	}

	if handler == nil {
		handler = AllowByRoleFunc(roles)
	}
	rule := routeRule{
		segments: splitPath(path),
		handler:  handler,
	}
	for idx, segment := range rule.segments {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			rule.segments[idx] = ""
			rule.params++
		}
	}
	list := append(i.rules[method], rule)
	sort.SliceStable(list, func(a, b int) bool {
		return list[a].params < list[b].params
	})
	i.rules[method] = list
	return nil
}

func (i *impl) GetPermissions(role models.UserRole) map[models.Module][]models.Permission {
	return i.permissions[role]
}

func AllowFunc() models.RbacFunc {
	return func(orgID, userID string, role models.UserRole, uri string) bool {
		return true
	}
}

func AllowByRoleFunc(accessRoles []models.UserRole) models.RbacFunc {
	allowMap := map[models.UserRole]bool{}
	for _, role := range accessRoles {
		allowMap[role] = true
	}
	return func(orgID, userID string, role models.UserRole, uri string) bool {
		return allowMap[role]
	}
}

// parseSwaggerPattern parses "/api/v1/approvals/{id}/approve [post]"
func parseSwaggerPattern(pattern string) (path string, method HTTPMethod, err error) {
	path, rest, found := strings.Cut(strings.TrimSpace(pattern), "[")
	methodStr, _, closed := strings.Cut(rest, "]")
	if !found || !closed || strings.TrimSpace(methodStr) == "" {
		return "", "", errors.Errorf("method not provided for pattern (%v)", pattern)
	}
	return normalizePath(strings.TrimSpace(path)), HTTPMethod(strings.ToUpper(strings.TrimSpace(methodStr))), nil
}

func normalizePath(path string) string {
	return "/" + strings.Join(splitPath(path), "/")
}

func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
