package job

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/util/common"
	"github.com/yanews/ya-news/web/global"
	"github.com/yanews/ya-news/web/service"
)

// NewsStatsJob logs how much content the site holds, the Kafka ingest
// counters and host load.
type NewsStatsJob struct {
	newsService service.NewsService
}

func NewNewsStatsJob() *NewsStatsJob {
	return new(NewsStatsJob)
}

func (j *NewsStatsJob) Run() {
	defer common.Recover("news stats job panic")

	stats, err := j.newsService.GetStats()
	if err != nil {
		logger.Warning("news stats job err:", err)
		return
	}
	logger.Infof("news stats: %d news, %d comments, %d users", stats.News, stats.Comments, stats.Users)
	if server := global.GetWebServer(); server != nil {
		if consumed, failed, ok := server.GetIngestStats(); ok {
			logger.Infof("kafka ingest: %d stored, %d rejected", consumed, failed)
		}
	}

	cpuPercents, err := cpu.Percent(0, false)
	if err != nil || len(cpuPercents) == 0 {
		return
	}
	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	logger.Debugf("host load: cpu %.1f%%, memory %.1f%%", cpuPercents[0], memInfo.UsedPercent)
}
