package service

import (
	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/database"
	"github.com/yanews/ya-news/database/model"
	"github.com/yanews/ya-news/util/random"
)

const secretKey = "secret"

// SettingService reads and writes the key/value settings table.
type SettingService struct{}

func (s *SettingService) getString(key string) (string, bool, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if database.IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	setting.Value = value
	return db.Save(setting).Error
}

// GetSecret returns the session signing secret. NEWS_SECRET wins; otherwise
// a random secret is generated once and kept in the database.
func (s *SettingService) GetSecret() ([]byte, error) {
	if secret := config.GetSecret(); secret != "" {
		return []byte(secret), nil
	}
	secret, ok, err := s.getString(secretKey)
	if err != nil {
		return nil, err
	}
	if !ok || secret == "" {
		secret = random.Seq(32)
		if err := s.saveSetting(secretKey, secret); err != nil {
			return nil, err
		}
	}
	return []byte(secret), nil
}

// ResetSecret replaces the stored secret, signing every user out.
func (s *SettingService) ResetSecret() error {
	return s.saveSetting(secretKey, random.Seq(32))
}

// GetAll returns every stored setting keyed by name.
func (s *SettingService) GetAll() (map[string]string, error) {
	settings := make([]*model.Setting, 0)
	if err := database.GetDB().Model(model.Setting{}).Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}
	all := make(map[string]string, len(settings))
	for _, setting := range settings {
		all[setting.Key] = setting.Value
	}
	return all, nil
}
