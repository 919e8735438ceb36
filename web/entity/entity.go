// Package entity defines the request and response shapes of the web layer.
package entity

import "github.com/yanews/ya-news/database/model"

// Msg is the envelope of every JSON response.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// CommentForm is bound from the comment create and edit forms. Error holds
// the localized validation message shown next to the field.
type CommentForm struct {
	Text  string `json:"text" form:"text"`
	Error string `json:"-" form:"-"`
}

type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
	Error    string `json:"-" form:"-"`
}

type SignupForm struct {
	Username  string   `json:"username" form:"username"`
	Password1 string   `json:"password1" form:"password1"`
	Password2 string   `json:"password2" form:"password2"`
	Errors    []string `json:"-" form:"-"`
}

// NewsItem is the API view of a news item.
type NewsItem struct {
	Id       int           `json:"id"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	Date     string        `json:"date"`
	Comments []CommentItem `json:"comments,omitempty"`
}

type CommentItem struct {
	Id      int    `json:"id"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	Created string `json:"created"`
}

// NewNewsItem converts a news item. Comments are included when preloaded.
func NewNewsItem(news *model.News, dateLayout string) NewsItem {
	item := NewsItem{
		Id:    news.Id,
		Title: news.Title,
		Text:  news.Text,
		Date:  news.Date.Format(dateLayout),
	}
	for _, comment := range news.Comments {
		item.Comments = append(item.Comments, CommentItem{
			Id:      comment.Id,
			Author:  comment.Author.Username,
			Text:    comment.Text,
			Created: comment.Created.Format(dateLayout),
		})
	}
	return item
}
