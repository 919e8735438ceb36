package controller

import (
	"errors"
	"net/http"
	"text/template"

	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/web/entity"
	"github.com/yanews/ya-news/web/service"
	"github.com/yanews/ya-news/web/session"
	"github.com/yanews/ya-news/web/urls"

	"github.com/gin-gonic/gin"
)

// UsersController handles login, logout and signup.
type UsersController struct {
	BaseController

	userService service.UserService
}

// NewUsersController registers the user pages. limit guards the form submissions.
func NewUsersController(g *gin.RouterGroup, limit gin.HandlerFunc) *UsersController {
	a := &UsersController{}
	a.initRouter(g, limit)
	return a
}

func (a *UsersController) initRouter(g *gin.RouterGroup, limit gin.HandlerFunc) {
	g.GET(urls.Pattern(urls.UsersLogin), a.loginPage)
	g.POST(urls.Pattern(urls.UsersLogin), limit, a.login)

	g.GET(urls.Pattern(urls.UsersLogout), a.logout)
	g.POST(urls.Pattern(urls.UsersLogout), a.logout)

	g.GET(urls.Pattern(urls.UsersSignup), a.signupPage)
	g.POST(urls.Pattern(urls.UsersSignup), limit, a.signup)
}

func (a *UsersController) loginPage(c *gin.Context) {
	form := entity.LoginForm{Next: c.Query("next")}
	html(c, http.StatusOK, "login.html", I18nWeb(c, "pages.login.title"), gin.H{"form": form})
}

func (a *UsersController) login(c *gin.Context) {
	form := entity.LoginForm{}
	if err := c.ShouldBind(&form); err != nil {
		logger.Warningf("bind login form failed: %v, IP: \"%s\"", err, getRemoteIp(c))
		form = entity.LoginForm{Next: c.Query("next"), Error: I18nWeb(c, "errors.invalidForm")}
		html(c, http.StatusOK, "login.html", I18nWeb(c, "pages.login.title"), gin.H{"form": form})
		return
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	safeUser := template.HTMLEscapeString(form.Username)
	if user == nil {
		logger.Warningf("wrong username: \"%s\", IP: \"%s\"", safeUser, getRemoteIp(c))
		form.Password = ""
		form.Error = I18nWeb(c, "errors.wrongCredentials")
		html(c, http.StatusOK, "login.html", I18nWeb(c, "pages.login.title"), gin.H{"form": form})
		return
	}

	session.SetMaxAge(c, config.GetSessionMaxAge()*60)
	if err := session.SetLoginUser(c, user); err != nil {
		serverError(c, err)
		return
	}
	logger.Infof("%s logged in successfully, Ip Address: %s", safeUser, getRemoteIp(c))

	next := urls.MustReverse(urls.NewsHome)
	if safeNext(form.Next) {
		next = form.Next
	}
	c.Redirect(http.StatusFound, next)
}

// logout works for anonymous users too and always shows the signed-out page.
func (a *UsersController) logout(c *gin.Context) {
	if user := session.GetLoginUser(c); user != nil {
		logger.Infof("%s logged out successfully", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	html(c, http.StatusOK, "logout.html", I18nWeb(c, "pages.logout.title"), nil)
}

func (a *UsersController) signupPage(c *gin.Context) {
	html(c, http.StatusOK, "signup.html", I18nWeb(c, "pages.signup.title"), gin.H{"form": entity.SignupForm{}})
}

var signupErrors = []struct {
	err error
	key string
}{
	{service.ErrInvalidUsername, "errors.invalidUsername"},
	{service.ErrUserExists, "errors.userExists"},
	{service.ErrPasswordTooShort, "errors.passwordTooShort"},
	{service.ErrPasswordsMismatch, "errors.passwordsMismatch"},
}

func (a *UsersController) signup(c *gin.Context) {
	form := entity.SignupForm{}
	if err := c.ShouldBind(&form); err != nil {
		logger.Warning("bind signup form failed:", err)
		form = entity.SignupForm{Errors: []string{I18nWeb(c, "errors.invalidForm")}}
		html(c, http.StatusOK, "signup.html", I18nWeb(c, "pages.signup.title"), gin.H{"form": form})
		return
	}

	_, err := a.userService.Register(form.Username, form.Password1, form.Password2)
	if err != nil {
		for _, e := range signupErrors {
			if errors.Is(err, e.err) {
				form.Errors = append(form.Errors, I18nWeb(c, e.key))
			}
		}
		if len(form.Errors) == 0 {
			serverError(c, err)
			return
		}
		form.Password1, form.Password2 = "", ""
		html(c, http.StatusOK, "signup.html", I18nWeb(c, "pages.signup.title"), gin.H{"form": form})
		return
	}
	c.Redirect(http.StatusFound, urls.MustReverse(urls.UsersLogin))
}
