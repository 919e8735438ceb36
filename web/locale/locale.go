// Package locale loads the site translations and picks a localizer per request.
package locale

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/yanews/ya-news/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// DefaultLanguage is used when neither the lang cookie nor Accept-Language match.
var DefaultLanguage = language.MustParse("ru-RU")

var i18nBundle *i18n.Bundle

// I18nFunc is stored in the gin context under "I18n".
type I18nFunc func(key string, params ...string) string

func InitLocalizer(i18nFS embed.FS) error {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(i18nFS, bundle); err != nil {
		return err
	}
	i18nBundle = bundle
	return nil
}

// createTemplateData turns "name==value" params into template data.
func createTemplateData(params []string, seperator ...string) map[string]any {
	sep := "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}
	return templateData
}

// I18n localizes key, falling back to the key itself.
func I18n(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Warningf("Failed to localize message: %v", err)
		return key
	}
	return msg
}

// NewLocalizer returns a localizer for the given language preferences.
func NewLocalizer(langs ...string) *i18n.Localizer {
	if i18nBundle == nil {
		return nil
	}
	return i18n.NewLocalizer(i18nBundle, langs...)
}

func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}

		localizer := NewLocalizer(lang)
		c.Set("localizer", localizer)
		c.Set("I18n", I18nFunc(func(key string, params ...string) string {
			return I18n(localizer, key, params...)
		}))
		c.Next()
	}
}

func parseTranslationFiles(i18nFS embed.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			data, err := i18nFS.ReadFile(path)
			if err != nil {
				return err
			}

			_, err = bundle.ParseMessageFileBytes(data, path)
			return err
		})
}
