package controller

import (
	"errors"
	"net/http"

	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/database/model"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/web/entity"
	"github.com/yanews/ya-news/web/service"
	"github.com/yanews/ya-news/web/session"
	"github.com/yanews/ya-news/web/urls"

	"github.com/gin-gonic/gin"
)

// NewsController serves the feed, the news pages and the comment forms.
type NewsController struct {
	BaseController

	newsService    service.NewsService
	commentService service.CommentService
}

func NewNewsController(g *gin.RouterGroup) *NewsController {
	a := &NewsController{}
	a.initRouter(g)
	return a
}

func (a *NewsController) initRouter(g *gin.RouterGroup) {
	g.GET(urls.Pattern(urls.NewsHome), a.home)
	g.GET(urls.Pattern(urls.NewsDetail), a.detail)
	g.POST(urls.Pattern(urls.NewsDetail), a.checkLogin, a.addComment)

	author := g.Group("")
	author.Use(a.checkLogin)
	author.GET(urls.Pattern(urls.NewsEdit), a.editComment)
	author.POST(urls.Pattern(urls.NewsEdit), a.updateComment)
	author.GET(urls.Pattern(urls.NewsDelete), a.deleteComment)
	author.POST(urls.Pattern(urls.NewsDelete), a.removeComment)
}

func (a *NewsController) home(c *gin.Context) {
	feed, err := a.newsService.GetFeed(c.Request.Context(), config.GetNewsCountOnHomePage())
	if err != nil {
		serverError(c, err)
		return
	}
	html(c, http.StatusOK, "home.html", I18nWeb(c, "pages.home.title"), gin.H{
		"news_feed": feed,
	})
}

// loadNews answers 404 itself when the item does not exist.
func (a *NewsController) loadNews(c *gin.Context) (*model.News, bool) {
	id, ok := paramID(c)
	if !ok {
		notFound(c)
		return nil, false
	}
	news, err := a.newsService.GetNews(id)
	if errors.Is(err, service.ErrNewsNotFound) {
		notFound(c)
		return nil, false
	}
	if err != nil {
		serverError(c, err)
		return nil, false
	}
	return news, true
}

func (a *NewsController) renderDetail(c *gin.Context, status int, news *model.News, form *entity.CommentForm) {
	data := gin.H{"news": news}
	if session.IsLogin(c) {
		if form == nil {
			form = &entity.CommentForm{}
		}
		data["form"] = *form
	}
	html(c, status, "detail.html", news.Title, data)
}

func (a *NewsController) detail(c *gin.Context) {
	news, ok := a.loadNews(c)
	if !ok {
		return
	}
	a.renderDetail(c, http.StatusOK, news, nil)
}

func (a *NewsController) addComment(c *gin.Context) {
	news, ok := a.loadNews(c)
	if !ok {
		return
	}

	form := &entity.CommentForm{}
	if err := c.ShouldBind(form); err != nil {
		form.Error = I18nWeb(c, "errors.emptyComment")
		a.renderDetail(c, http.StatusOK, news, form)
		return
	}

	user := session.GetLoginUser(c)
	_, err := a.commentService.AddComment(news.Id, user.Id, form.Text)
	if msg, invalid := commentError(c, err); invalid {
		form.Error = msg
		a.renderDetail(c, http.StatusOK, news, form)
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, commentsURL(news.Id))
}

// authorComment loads the comment only if the signed-in user wrote it.
// Comments of other users are answered with 404.
func (a *NewsController) authorComment(c *gin.Context) (*model.Comment, bool) {
	id, ok := paramID(c)
	if !ok {
		notFound(c)
		return nil, false
	}
	user := session.GetLoginUser(c)
	comment, err := a.commentService.GetAuthorComment(id, user.Id)
	if errors.Is(err, service.ErrCommentNotFound) {
		notFound(c)
		return nil, false
	}
	if err != nil {
		serverError(c, err)
		return nil, false
	}
	return comment, true
}

func (a *NewsController) editComment(c *gin.Context) {
	comment, ok := a.authorComment(c)
	if !ok {
		return
	}
	renderEdit(c, comment, entity.CommentForm{Text: comment.Text})
}

func renderEdit(c *gin.Context, comment *model.Comment, form entity.CommentForm) {
	html(c, http.StatusOK, "edit.html", I18nWeb(c, "pages.edit.title"), gin.H{
		"comment": comment,
		"form":    form,
	})
}

func (a *NewsController) updateComment(c *gin.Context) {
	comment, ok := a.authorComment(c)
	if !ok {
		return
	}

	form := entity.CommentForm{}
	if err := c.ShouldBind(&form); err != nil {
		logger.Warning("bind comment form failed:", err)
		form.Text = comment.Text
		form.Error = I18nWeb(c, "errors.invalidForm")
		renderEdit(c, comment, form)
		return
	}
	err := a.commentService.UpdateComment(comment, form.Text)
	if msg, invalid := commentError(c, err); invalid {
		form.Error = msg
		renderEdit(c, comment, form)
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, commentsURL(comment.NewsId))
}

func (a *NewsController) deleteComment(c *gin.Context) {
	comment, ok := a.authorComment(c)
	if !ok {
		return
	}
	html(c, http.StatusOK, "delete.html", I18nWeb(c, "pages.delete.title"), gin.H{
		"comment": comment,
	})
}

func (a *NewsController) removeComment(c *gin.Context) {
	comment, ok := a.authorComment(c)
	if !ok {
		return
	}
	if err := a.commentService.DeleteComment(comment); err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, commentsURL(comment.NewsId))
}

func commentsURL(newsID int) string {
	return urls.MustReverse(urls.NewsDetail, newsID) + "#comments"
}

// commentError maps a validation failure to its form message.
func commentError(c *gin.Context, err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrEmptyComment):
		return I18nWeb(c, "errors.emptyComment"), true
	case errors.Is(err, service.ErrBadWords):
		return I18nWeb(c, "errors.badWords"), true
	}
	return "", false
}
