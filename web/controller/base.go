// Package controller holds the HTTP handlers of the news site: the feed,
// news detail and comment pages, the user pages and the read-only JSON API.
package controller

import (
	"net/http"

	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/web/locale"
	"github.com/yanews/ya-news/web/session"
	"github.com/yanews/ya-news/web/urls"

	"github.com/gin-gonic/gin"
)

// BaseController provides the authentication check shared by all controllers.
type BaseController struct{}

// checkLogin sends anonymous users to the login page, remembering where they were going.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "errors.wrongCredentials"))
		} else {
			c.Redirect(http.StatusFound, urls.LoginRedirect(c.Request.URL.RequestURI()))
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// I18nWeb localizes name for the language of the current request.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	anyfunc, funcExists := c.Get("I18n")
	if !funcExists {
		logger.Warning("I18n function not exists in gin context!")
		return name
	}
	i18nFunc, ok := anyfunc.(locale.I18nFunc)
	if !ok {
		return name
	}
	return i18nFunc(name, params...)
}
