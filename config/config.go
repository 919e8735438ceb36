// Package config exposes the process configuration of the news site. Every
// option is read from the environment, optionally seeded from a .env file.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// SessionStore selects the backend that keeps session data.
type SessionStore string

const (
	SessionStoreCookie SessionStore = "cookie"
	SessionStoreRedis  SessionStore = "redis"
)

const (
	defaultNewsCountOnHomePage = 10
	defaultPort                = 8000
	defaultSessionMaxAge       = 24 * 60
	defaultBadWords            = "редиска,негодяй"
)

// LoadEnv seeds the environment from NEWS_ENV_FILE (".env" by default).
// Variables already present in the environment win. A missing file is not an error.
func LoadEnv() error {
	envFile := os.Getenv("NEWS_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(envFile)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("NEWS_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("NEWS_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("NEWS_DB_FOLDER")
	if dbFolderPath == "" {
		if IsDebug() {
			return "db"
		}
		dbFolderPath = "/etc/ya-news"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return filepath.Join(GetDBFolderPath(), GetName()+".db")
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("NEWS_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("NEWS_LISTEN")
}

func GetPort() int {
	return getInt("NEWS_PORT", defaultPort)
}

// GetBasePath always starts and ends with a slash.
func GetBasePath() string {
	basePath := os.Getenv("NEWS_BASE_PATH")
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

// GetDomain restricts requests to one Host when set.
func GetDomain() string {
	return os.Getenv("NEWS_DOMAIN")
}

func GetCertFile() string {
	return os.Getenv("NEWS_CERT_FILE")
}

func GetKeyFile() string {
	return os.Getenv("NEWS_KEY_FILE")
}

// GetSecret returns the session signing secret set in the environment.
// An empty value means the secret stored in the database is used.
func GetSecret() string {
	return os.Getenv("NEWS_SECRET")
}

// GetSessionMaxAge is the session lifetime in minutes.
func GetSessionMaxAge() int {
	return getInt("NEWS_SESSION_MAX_AGE", defaultSessionMaxAge)
}

func GetSessionStore() SessionStore {
	if SessionStore(os.Getenv("NEWS_SESSION_STORE")) == SessionStoreRedis {
		return SessionStoreRedis
	}
	return SessionStoreCookie
}

// GetNewsCountOnHomePage is the maximum number of items on the feed page.
func GetNewsCountOnHomePage() int {
	n := getInt("NEWS_COUNT_ON_HOME_PAGE", defaultNewsCountOnHomePage)
	if n <= 0 {
		return defaultNewsCountOnHomePage
	}
	return n
}

// GetBadWords lists the words a comment must not contain, lower-cased.
func GetBadWords() []string {
	raw, ok := os.LookupEnv("NEWS_BAD_WORDS")
	if !ok {
		raw = defaultBadWords
	}
	return splitList(strings.ToLower(raw))
}

func GetTimeLocation() *time.Location {
	name := os.Getenv("NEWS_TIME_LOCATION")
	if name == "" {
		name = "Europe/Moscow"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetRedisAddr returns the external Redis address; empty means embedded.
func GetRedisAddr() string {
	return os.Getenv("NEWS_REDIS_ADDR")
}

func GetKafkaBrokers() []string {
	return splitList(os.Getenv("NEWS_KAFKA_BROKERS"))
}

func GetKafkaTopic() string {
	topic := os.Getenv("NEWS_KAFKA_TOPIC")
	if topic == "" {
		topic = "news-items"
	}
	return topic
}

func GetKafkaGroupID() string {
	groupID := os.Getenv("NEWS_KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = GetName()
	}
	return groupID
}

// GetLoginRate is the number of login/signup attempts allowed per minute and client.
func GetLoginRate() int {
	return getInt("NEWS_LOGIN_RATE", 30)
}

func GetLoginBurst() int {
	return getInt("NEWS_LOGIN_BURST", 10)
}

func getInt(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

func splitList(raw string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
