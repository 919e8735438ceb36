// Package model defines the database entities of the news site.
package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Password string `json:"-" gorm:"not null"`
}

type News struct {
	Id       int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title    string    `json:"title" gorm:"size:50;not null"`
	Text     string    `json:"text" gorm:"not null"`
	Date     time.Time `json:"date" gorm:"index;not null"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:NewsId;references:Id;constraint:OnDelete:CASCADE"`
}

// BeforeSave dates news that were created without a publication date and
// stores the date in UTC; SQLite compares the stored text, so rows with mixed
// offsets would otherwise sort out of chronological order.
func (n *News) BeforeSave(tx *gorm.DB) error {
	if n.Date.IsZero() {
		n.Date = time.Now()
	}
	n.Date = n.Date.UTC()
	return nil
}

type Comment struct {
	Id       int       `json:"id" gorm:"primaryKey;autoIncrement"`
	NewsId   int       `json:"newsId" gorm:"index;not null"`
	News     *News     `json:"-" gorm:"foreignKey:NewsId"`
	AuthorId int       `json:"authorId" gorm:"index;not null"`
	Author   User      `json:"author" gorm:"foreignKey:AuthorId;constraint:OnDelete:CASCADE"`
	Text     string    `json:"text" gorm:"not null"`
	Created  time.Time `json:"created" gorm:"index;not null"`
}

func (c *Comment) BeforeSave(tx *gorm.DB) error {
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	c.Created = c.Created.UTC()
	return nil
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"uniqueIndex"`
	Value string `json:"value" form:"value"`
}
