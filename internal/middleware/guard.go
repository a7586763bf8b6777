package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"woreda_portal/internal/metrics"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	// SessionName имя cookie-сессии администратора
	SessionName = "admin_session"
	// SessionTokenKey ключ значения с bearer-токеном внутри сессии
	SessionTokenKey = "access_token"
)

// RouteGuard пропускает либо перенаправляет навигацию по защищённым
// префиксам до построения защищённого представления. Проверяется
// только наличие учётных данных; их валидность — забота API, которые
// вызовет само представление.
type RouteGuard struct {
	prefixes      []string
	loginPath     string
	redirectParam string
}

func NewRouteGuard(prefixes []string, loginPath, redirectParam string) *RouteGuard {
	return &RouteGuard{
		prefixes:      prefixes,
		loginPath:     loginPath,
		redirectParam: redirectParam,
	}
}

// Decision исход проверки: либо пройти дальше, либо редирект
type Decision struct {
	Redirect bool
	Location string
}

// Decide чистая функция решения. Исходный путь уходит в параметр
// запроса, чтобы вход мог вернуть пользователя обратно.
func (g *RouteGuard) Decide(path string, hasCredential bool) Decision {
	if !g.isProtected(path) || hasCredential {
		return Decision{}
	}

	q := url.Values{}
	q.Set(g.redirectParam, path)

	return Decision{
		Redirect: true,
		Location: g.loginPath + "?" + q.Encode(),
	}
}

// LoginPath путь входа, на который уводит редирект
func (g *RouteGuard) LoginPath() string {
	return g.loginPath
}

func (g *RouteGuard) isProtected(path string) bool {
	// Страница входа сама лежит под защищённым префиксом
	if path == g.loginPath {
		return false
	}
	for _, prefix := range g.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// CredentialReader извлекает предъявленный токен из запроса;
// пустая строка означает отсутствие
type CredentialReader func(c echo.Context) string

// SessionCredential читает токен из заголовка Authorization или из
// cookie-сессии. Явный контекст сессии вместо глобального держателя:
// значение кладётся на входе и чистится на выходе.
func SessionCredential(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return token
	}

	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[SessionTokenKey].(string)
	return token
}

// RequireCredential вариант для API: вместо редиректа отдаёт 401.
// Как и guard, проверяет только наличие токена.
func RequireCredential(cred CredentialReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cred(c) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}
			return next(c)
		}
	}
}

// Middleware адаптер решения к echo. Единственный побочный эффект —
// редирект; сам guard никогда не возвращает ошибку.
func (g *RouteGuard) Middleware(cred CredentialReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			decision := g.Decide(path, cred(c) != "")
			if decision.Redirect {
				metrics.GuardRedirectsTotal.Inc()
				return c.Redirect(http.StatusSeeOther, decision.Location)
			}

			return next(c)
		}
	}
}
