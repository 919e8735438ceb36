package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateTemplateData(t *testing.T) {
	data := createTemplateData([]string{"Username==reader", "broken", "Count==2==3"})
	assert.Equal(t, map[string]any{"Username": "reader", "Count": "2==3"}, data)
}

func TestI18nWithoutLocalizer(t *testing.T) {
	assert.Equal(t, "menu.home", I18n(nil, "menu.home"))
}
