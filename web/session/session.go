// Package session stores the signed-in user in the gin session.
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yanews/ya-news/database/model"
)

const (
	loginUser = "LOGIN_USER"
	// CookieName is the name of the session cookie.
	CookieName = "ya-news"
)

func init() {
	gob.Register(model.User{})
}

// SetLoginUser stores user without its password hash.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Set(loginUser, model.User{Id: user.Id, Username: user.Username})
	return s.Save()
}

// SetMaxAge sets the session lifetime in seconds. It takes effect on the next save.
func SetMaxAge(c *gin.Context, maxAge int) {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     cookiePath(c),
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func GetLoginUser(c *gin.Context) *model.User {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(model.User); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   cookiePath(c),
		MaxAge: -1,
	})
	return s.Save()
}

// cookiePath scopes the cookie to the site base path.
func cookiePath(c *gin.Context) string {
	if basePath := c.GetString("base_path"); basePath != "" {
		return basePath
	}
	return "/"
}
