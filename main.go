package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/database"
	"github.com/yanews/ya-news/database/model"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/util/common"
	"github.com/yanews/ya-news/web"
	"github.com/yanews/ya-news/web/cache"
	"github.com/yanews/ya-news/web/global"
	"github.com/yanews/ya-news/web/ingest"
	"github.com/yanews/ya-news/web/service"
)

func initLogger() {
	level, err := logger.LevelFromConfig(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func initDB() error {
	return database.InitDB(config.GetDatabaseConfig())
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	if err := initDB(); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()

	server := web.NewServer()
	global.SetWebServer(server)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			global.SetWebServer(server)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("Shutting down server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	fmt.Println("Start migrating database...")
	if err := initDB(); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func createUser(username, password string) {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	userService := service.UserService{}
	user, err := userService.CreateUser(username, password)
	if err != nil {
		fmt.Println("create user failed:", err)
		return
	}
	fmt.Printf("user %s created with id %d\n", user.Username, user.Id)
}

// readNews builds news items from a JSON file holding an array of
// {"title","text","date"} objects, or from a single title/text/date triple.
func readNews(file string, title string, text string, date string) ([]*model.News, error) {
	messages := make([]ingest.NewsMessage, 0)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, err
		}
	} else {
		messages = append(messages, ingest.NewsMessage{Title: title, Text: text, Date: date})
	}

	items := make([]*model.News, 0, len(messages))
	for i, m := range messages {
		news, err := m.ToNews()
		if err != nil {
			return nil, common.NewErrorf("news item %d: %v", i+1, err)
		}
		items = append(items, news)
	}
	return items, nil
}

func addNews(file, title, text, date string) {
	items, err := readNews(file, title, text, date)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	// the embedded Redis lives inside the server process; only a shared
	// Redis lets this command drop the cached feed
	if addr := config.GetRedisAddr(); addr != "" {
		if err := cache.InitRedis(context.Background(), addr); err != nil {
			fmt.Println("feed cache not invalidated:", err)
		} else {
			defer cache.Close()
		}
	}

	newsService := service.NewsService{}
	if err := newsService.AddNews(context.Background(), items...); err != nil {
		fmt.Println("add news failed:", err)
		return
	}
	fmt.Printf("%d news added\n", len(items))
}

func publishNews(file, title, text, date string) {
	brokers := config.GetKafkaBrokers()
	if len(brokers) == 0 {
		fmt.Println("NEWS_KAFKA_BROKERS is not set")
		return
	}
	items, err := readNews(file, title, text, date)
	if err != nil {
		fmt.Println(err)
		return
	}

	producer := ingest.NewProducer(brokers, config.GetKafkaTopic())
	defer producer.Close()
	if err := producer.Publish(context.Background(), items...); err != nil {
		fmt.Println("publish news failed:", err)
		return
	}
	fmt.Printf("%d news published to %s\n", len(items), config.GetKafkaTopic())
}

func showSetting() {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	settings, err := settingService.GetAll()
	if err != nil {
		fmt.Println("get settings failed:", err)
		return
	}
	stats, err := (&service.NewsService{}).GetStats()
	if err != nil {
		fmt.Println("get stats failed:", err)
		return
	}

	fmt.Println("current settings as follows:")
	fmt.Println("port:", config.GetPort())
	fmt.Println("basePath:", config.GetBasePath())
	fmt.Println("newsCountOnHomePage:", config.GetNewsCountOnHomePage())
	fmt.Println("sessionStore:", config.GetSessionStore())
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key == "secret" {
			fmt.Println(key+":", "(hidden)")
			continue
		}
		fmt.Println(key+":", settings[key])
	}
	fmt.Printf("news: %d, comments: %d, users: %d\n", stats.News, stats.Comments, stats.Users)
}

func resetSecret() {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	if err := settingService.ResetSecret(); err != nil {
		fmt.Println("reset secret failed:", err)
		return
	}
	fmt.Println("reset secret success, every user is signed out")
}

func addNewsFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "JSON file with an array of news items")
	cmd.Flags().String("title", "", "news title")
	cmd.Flags().String("text", "", "news text")
	cmd.Flags().String("date", "", "publication date, YYYY-MM-DD or RFC 3339")
}

func newsFlags(cmd *cobra.Command) (file, title, text, date string) {
	file, _ = cmd.Flags().GetString("file")
	title, _ = cmd.Flags().GetString("title")
	text, _ = cmd.Flags().GetString("text")
	date, _ = cmd.Flags().GetString("date")
	return
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Println("load env file failed:", err)
	}

	var rootCmd = &cobra.Command{
		Use: config.GetName(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var userCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			createUser(username, password)
		},
	}
	userCreateCmd.Flags().String("username", "", "login username")
	userCreateCmd.Flags().String("password", "", "login password")
	userCmd.AddCommand(userCreateCmd)

	var newsCmd = &cobra.Command{
		Use:   "news",
		Short: "Manage news",
	}

	var newsAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Add news to the database",
		Run: func(cmd *cobra.Command, args []string) {
			addNews(newsFlags(cmd))
		},
	}
	addNewsFlags(newsAddCmd)

	var newsPublishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Publish news to the Kafka ingestion topic",
		Run: func(cmd *cobra.Command, args []string) {
			publishNews(newsFlags(cmd))
		},
	}
	addNewsFlags(newsPublishCmd)
	newsCmd.AddCommand(newsAddCmd, newsPublishCmd)

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Show settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var resetSecretCmd = &cobra.Command{
		Use:   "reset-secret",
		Short: "Replace the session secret",
		Run: func(cmd *cobra.Command, args []string) {
			resetSecret()
		},
	}
	settingCmd.AddCommand(showCmd, resetSecretCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, userCmd, newsCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
