package service

import (
	"context"
	"errors"

	"github.com/yanews/ya-news/database"
	"github.com/yanews/ya-news/database/model"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/web/cache"

	"gorm.io/gorm"
)

var ErrNewsNotFound = errors.New("news not found")

const newsBatchSize = 100

type NewsService struct{}

// GetFeed returns the limit most recently dated news items, newest first.
// Results are cached until news is added or the cache entry expires.
func (s *NewsService) GetFeed(ctx context.Context, limit int) ([]model.News, error) {
	return cache.GetOrSet(ctx, cache.FeedKey(limit), cache.KeyFeedGeneration, cache.TTLFeed, func() ([]model.News, error) {
		return s.loadFeed(limit)
	})
}

func (s *NewsService) loadFeed(limit int) ([]model.News, error) {
	news := make([]model.News, 0, limit)
	err := database.GetDB().Model(model.News{}).
		Order("date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&news).Error
	if err != nil {
		return nil, err
	}
	return news, nil
}

// RefreshFeed reloads the feed from the database and replaces its cache
// entry, unless news was added while it loaded.
func (s *NewsService) RefreshFeed(ctx context.Context, limit int) error {
	_, err := cache.Load(ctx, cache.FeedKey(limit), cache.KeyFeedGeneration, cache.TTLFeed, func() ([]model.News, error) {
		return s.loadFeed(limit)
	})
	return err
}

// GetNews loads one news item with its comments in chronological order.
func (s *NewsService) GetNews(id int) (*model.News, error) {
	news := &model.News{}
	err := database.GetDB().Model(model.News{}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created ASC").Order("id ASC")
		}).
		Preload("Comments.Author").
		Where("id = ?", id).
		First(news).Error
	if database.IsNotFound(err) {
		return nil, ErrNewsNotFound
	}
	if err != nil {
		return nil, err
	}
	return news, nil
}

// AddNews inserts items in batches and drops the cached feed.
func (s *NewsService) AddNews(ctx context.Context, items ...*model.News) error {
	if len(items) == 0 {
		return nil
	}
	if err := database.GetDB().CreateInBatches(items, newsBatchSize).Error; err != nil {
		return err
	}
	if err := cache.InvalidateFeed(ctx); err != nil {
		logger.Warning("invalidate feed cache failed:", err)
	}
	return nil
}

type NewsStats struct {
	News     int64 `json:"news"`
	Comments int64 `json:"comments"`
	Users    int64 `json:"users"`
}

func (s *NewsService) GetStats() (*NewsStats, error) {
	db := database.GetDB()
	stats := &NewsStats{}
	if err := db.Model(model.News{}).Count(&stats.News).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.Comment{}).Count(&stats.Comments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.User{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
