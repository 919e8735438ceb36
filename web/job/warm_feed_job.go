package job

import (
	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/util/common"
	"github.com/yanews/ya-news/web/global"
	"github.com/yanews/ya-news/web/service"
)

// WarmFeedJob keeps the cached home page feed fresh.
type WarmFeedJob struct {
	newsService service.NewsService
}

func NewWarmFeedJob() *WarmFeedJob {
	return new(WarmFeedJob)
}

func (j *WarmFeedJob) Run() {
	defer common.Recover("warm feed job panic")
	ctx := global.GetContext()
	if err := j.newsService.RefreshFeed(ctx, config.GetNewsCountOnHomePage()); err != nil {
		logger.Debug("warm feed job err:", err)
	}
}
