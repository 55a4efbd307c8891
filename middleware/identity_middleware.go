package middleware

import (
	authutils "grc-backend/lib/utils/auth-utils"
	"grc-backend/models"
	apimodels "grc-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

func GetUserID(ctx *fiber.Ctx) string {
	return authutils.GetStringClaim(ctx, "sub")
}

func GetUserOrg(ctx *fiber.Ctx) string {
	return authutils.GetStringClaim(ctx, "org")
}

func GetUserRole(ctx *fiber.Ctx) models.UserRole {
	return models.UserRole(authutils.GetStringClaim(ctx, "role"))
}

// IdentityRequired every org scoped call needs user, org and role claims
func IdentityRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		if GetUserID(ctx) == "" || GetUserOrg(ctx) == "" || GetUserRole(ctx) == "" {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("token has no organization or role"))
		}
		return ctx.Next()
	}
}
