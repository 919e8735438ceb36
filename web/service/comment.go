package service

import (
	"errors"
	"strings"

	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/database"
	"github.com/yanews/ya-news/database/model"
	"github.com/yanews/ya-news/logger"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmptyComment    = errors.New("comment text is required")
	ErrBadWords        = errors.New("comment contains forbidden words")
)

type CommentService struct{}

// ValidateText rejects blank text and text containing a forbidden word.
func (s *CommentService) ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyComment
	}
	lower := strings.ToLower(text)
	for _, word := range config.GetBadWords() {
		if strings.Contains(lower, word) {
			return ErrBadWords
		}
	}
	return nil
}

func (s *CommentService) AddComment(newsID int, authorID int, text string) (*model.Comment, error) {
	if err := s.ValidateText(text); err != nil {
		return nil, err
	}

	db := database.GetDB()
	var count int64
	if err := db.Model(model.News{}).Where("id = ?", newsID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNewsNotFound
	}

	comment := &model.Comment{NewsId: newsID, AuthorId: authorID, Text: text}
	if err := db.Create(comment).Error; err != nil {
		return nil, err
	}
	logger.Debugf("comment %d added to news %d by user %d", comment.Id, newsID, authorID)
	return comment, nil
}

// GetAuthorComment finds a comment owned by authorID. Comments of other
// authors are reported as not found.
func (s *CommentService) GetAuthorComment(id int, authorID int) (*model.Comment, error) {
	comment := &model.Comment{}
	err := database.GetDB().Model(model.Comment{}).
		Where("id = ? AND author_id = ?", id, authorID).
		First(comment).Error
	if database.IsNotFound(err) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(comment *model.Comment, text string) error {
	if err := s.ValidateText(text); err != nil {
		return err
	}
	err := database.GetDB().Model(comment).Update("text", text).Error
	if err != nil {
		return err
	}
	comment.Text = text
	return nil
}

func (s *CommentService) DeleteComment(comment *model.Comment) error {
	return database.GetDB().Delete(&model.Comment{}, comment.Id).Error
}
