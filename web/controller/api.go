package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/web/entity"
	"github.com/yanews/ya-news/web/service"
	"github.com/yanews/ya-news/web/urls"

	"github.com/gin-gonic/gin"
)

// APIController serves the read-only JSON view of the news.
type APIController struct {
	BaseController

	newsService service.NewsService
}

func NewAPIController(g *gin.RouterGroup) *APIController {
	a := &APIController{}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	g.GET(urls.Pattern(urls.APIFeed), a.feed)
	g.GET(urls.Pattern(urls.APIDetail), a.detail)
}

func (a *APIController) feed(c *gin.Context) {
	feed, err := a.newsService.GetFeed(c.Request.Context(), config.GetNewsCountOnHomePage())
	if err != nil {
		jsonMsg(c, "get feed", err)
		return
	}
	items := make([]entity.NewsItem, 0, len(feed))
	for i := range feed {
		items = append(items, entity.NewNewsItem(&feed[i], time.RFC3339))
	}
	jsonObj(c, items, nil)
}

func (a *APIController) detail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		pureJsonMsg(c, http.StatusNotFound, false, I18nWeb(c, "errors.newsNotFound"))
		return
	}
	news, err := a.newsService.GetNews(id)
	if errors.Is(err, service.ErrNewsNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, I18nWeb(c, "errors.newsNotFound"))
		return
	}
	if err != nil {
		jsonMsg(c, "get news", err)
		return
	}
	jsonObj(c, entity.NewNewsItem(news, time.RFC3339), nil)
}
