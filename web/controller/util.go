package controller

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/web/entity"
	"github.com/yanews/ya-news/web/session"

	"github.com/gin-gonic/gin"
)

// TemplateDataKey is the gin context key holding the data of the last rendered page.
const TemplateDataKey = "template_data"

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
	} else {
		m.Success = false
		m.Msg = msg + " (" + err.Error() + ")"
		logger.Warning(msg+" failed: ", err)
	}
	c.JSON(http.StatusOK, m)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// html renders the named template. The page data stays in the context
// under TemplateDataKey.
func html(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["request_uri"] = c.Request.RequestURI
	data["base_path"] = c.GetString("base_path")
	data["user"] = session.GetLoginUser(c)
	localizer, _ := c.Get("localizer")
	data["localizer"] = localizer
	data["lang"] = I18nWeb(c, "langCode")
	c.Set(TemplateDataKey, data)
	c.HTML(status, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver": config.GetVersion(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

func notFound(c *gin.Context) {
	html(c, http.StatusNotFound, "error.html", I18nWeb(c, "errors.notFound"), gin.H{
		"status":  http.StatusNotFound,
		"message": "errors.notFound",
	})
	c.Abort()
}

func serverError(c *gin.Context, err error) {
	logger.Warningf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	html(c, http.StatusInternalServerError, "error.html", I18nWeb(c, "errors.internal"), gin.H{
		"status":  http.StatusInternalServerError,
		"message": "errors.internal",
	})
	c.Abort()
}

// paramID parses the :id route parameter; anything but a positive integer is not found.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeNext accepts only local paths as redirect targets.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\")
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
