package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanews/ya-news/database/model"
)

func TestLoginUserLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(CookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/login", func(c *gin.Context) {
		require.NoError(t, SetLoginUser(c, &model.User{Id: 7, Username: "author", Password: "hash"}))
		c.Status(http.StatusOK)
	})
	r.GET("/me", func(c *gin.Context) {
		user := GetLoginUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		assert.Empty(t, user.Password)
		c.String(http.StatusOK, user.Username)
	})
	r.GET("/logout", func(c *gin.Context) {
		require.NoError(t, ClearSession(c))
		c.Status(http.StatusOK)
	})

	get := func(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, "anonymous", get("/me", nil).Body.String())

	cookies := get("/login", nil).Result().Cookies()
	assert.Equal(t, "author", get("/me", cookies).Body.String())

	cleared := get("/logout", cookies).Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Equal(t, "anonymous", get("/me", cleared).Body.String())
}
