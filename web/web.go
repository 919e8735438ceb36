// Package web provides the news site web server: routing, templates,
// sessions, background jobs and the optional Kafka ingestion.
package web

import (
	"context"
	"crypto/tls"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/util/common"
	"github.com/yanews/ya-news/web/cache"
	"github.com/yanews/ya-news/web/controller"
	"github.com/yanews/ya-news/web/ingest"
	"github.com/yanews/ya-news/web/job"
	"github.com/yanews/ya-news/web/locale"
	"github.com/yanews/ya-news/web/middleware"
	"github.com/yanews/ya-news/web/network"
	"github.com/yanews/ya-news/web/service"
	"github.com/yanews/ya-news/web/session"
	"github.com/yanews/ya-news/web/urls"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/robfig/cron/v3"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

// wrapAssetsFileInfo reports the process start as modification time so
// embedded assets get a stable Last-Modified.
type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

type Server struct {
	httpServer *http.Server
	listener   net.Listener

	news  *controller.NewsController
	users *controller.UsersController
	api   *controller.APIController

	settingService service.SettingService

	consumer *ingest.Consumer
	cron     *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// getHtmlFiles lists the templates under web/html. Used in debug mode so
// templates are reloaded from disk.
func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Server) templateFuncs() template.FuncMap {
	loc := config.GetTimeLocation()
	return template.FuncMap{
		"i18n": func(localizer *i18n.Localizer, key string, params ...string) string {
			return locale.I18n(localizer, key, params...)
		},
		"url": urls.MustReverse,
		"date": func(t time.Time) string {
			return common.FormatDate(t, loc)
		},
		"truncate": common.Truncate,
	}
}

func (s *Server) newSessionStore(secret []byte) sessions.Store {
	if config.GetSessionStore() == config.SessionStoreRedis {
		if client := cache.GetClient(); client != nil {
			return cache.NewRedisStore(client, secret)
		}
		logger.Warning("Redis is not available, falling back to cookie sessions")
	}
	return cookie.NewStore(secret)
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	if domain := config.GetDomain(); domain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(domain))
	}

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}

	basePath := config.GetBasePath()
	urls.SetBasePath(basePath)

	engine.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.SecureHeadersMiddleware(),
	)
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "api/"}),
	))

	store := s.newSessionStore(secret)
	store.Options(sessions.Options{
		Path:     basePath,
		MaxAge:   config.GetSessionMaxAge() * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}
	engine.Use(locale.LocalizerMiddleware())

	funcMap := s.templateFuncs()
	engine.SetFuncMap(funcMap)

	if config.IsDebug() {
		files, err := s.getHtmlFiles()
		if err != nil {
			return nil, err
		}
		engine.LoadHTMLFiles(files...)
		engine.StaticFS(basePath+"assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS(basePath+"assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}

	limit := middleware.RateLimitMiddleware(
		middleware.DefaultRateLimitConfig(config.GetLoginRate(), config.GetLoginBurst()),
	)

	g := engine.Group(basePath)
	s.news = controller.NewNewsController(g)
	s.users = controller.NewUsersController(g, limit)
	s.api = controller.NewAPIController(g)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@every 30s", job.NewWarmFeedJob()); err != nil {
		logger.Warning("Add WarmFeedJob error", err)
	}
	if _, err := s.cron.AddJob("@hourly", job.NewNewsStatsJob()); err != nil {
		logger.Warning("Add NewsStatsJob error", err)
	}

	if brokers := config.GetKafkaBrokers(); len(brokers) > 0 {
		s.consumer = ingest.NewConsumer(brokers, config.GetKafkaTopic(), config.GetKafkaGroupID())
		go s.consumer.Run(s.ctx)
	}
}

func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err := cache.InitRedis(s.ctx, config.GetRedisAddr()); err != nil {
		logger.Warning("cache disabled:", err)
	} else if cache.IsEmbedded() {
		logger.Noticef("feed cache is process-local, news added by other processes appears within %v", cache.TTLFeed)
	}

	s.cron = cron.New(cron.WithLocation(config.GetTimeLocation()), cron.WithSeconds())
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	certFile := config.GetCertFile()
	keyFile := config.GetKeyFile()
	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if certFile != "" || keyFile != "" {
		if cert, err := tls.LoadX509KeyPair(certFile, keyFile); err == nil {
			cfg := &tls.Config{Certificates: []tls.Certificate{cert}}
			listener = network.NewRedirectListener(listener)
			listener = tls.NewListener(listener, cfg)
			logger.Info("Web server running HTTPS on", listener.Addr())
		} else {
			logger.Error("Error loading certificates:", err)
			logger.Info("Web server running HTTP on", listener.Addr())
		}
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()
	return nil
}

// Stop shuts down the HTTP server, the jobs, the consumer and the cache.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2, err3, err4 error
	if s.consumer != nil {
		err1 = s.consumer.Close()
	}
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err2 = s.httpServer.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		err3 = s.listener.Close()
	}
	err4 = cache.Close()
	return common.Combine(err1, err2, err3, err4)
}

func (s *Server) GetCtx() context.Context { return s.ctx }


func (s *Server) GetIngestStats() (consumed int64, failed int64, ok bool) {
	if s.consumer == nil {
		return 0, 0, false
	}
	consumed, failed = s.consumer.Stats()
	return consumed, failed, true
}
