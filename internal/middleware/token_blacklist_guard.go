package middleware

import (
	"net/http"

	repo "app/internal/repository"

	"github.com/labstack/echo/v4"
)

// ログアウト済みトークンを拒否するガード。AuthJWTの後ろに置くこと。
// blacklistがnil（Redis未接続）のときは素通し。
func TokenBlacklistGuard(blacklist repo.TokenBlacklist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if blacklist == nil {
				return next(c)
			}

			jti, ok := c.Get(CtxTokenJTIKey).(string)
			if !ok || jti == "" {
				return next(c)
			}

			revoked, err := blacklist.Contains(c.Request().Context(), jti)
			if err != nil {
				//失効リスト障害で全APIを落とさない
				return next(c)
			}
			if revoked {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
