package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverse(t *testing.T) {
	cases := []struct {
		name string
		args []any
		want string
	}{
		{NewsHome, nil, "/"},
		{NewsDetail, []any{7}, "/news/7/"},
		{NewsEdit, []any{12}, "/edit_comment/12/"},
		{NewsDelete, []any{"12"}, "/delete_comment/12/"},
		{UsersLogin, nil, "/auth/login/"},
		{UsersLogout, nil, "/auth/logout/"},
		{UsersSignup, nil, "/auth/signup/"},
		{APIDetail, []any{3}, "/api/news/3/"},
	}
	for _, c := range cases {
		got, err := Reverse(c.name, c.args...)
		assert.NoError(t, err, c.name)
		assert.Equal(t, c.want, got, c.name)
	}
}

func TestReverseErrors(t *testing.T) {
	_, err := Reverse("news:archive")
	assert.Error(t, err)

	_, err = Reverse(NewsDetail)
	assert.Error(t, err)

	_, err = Reverse(NewsHome, 1)
	assert.Error(t, err)

	assert.Panics(t, func() { MustReverse(NewsEdit) })
}

func TestBasePath(t *testing.T) {
	SetBasePath("site")
	defer SetBasePath("/")

	assert.Equal(t, "/site/news/1/", MustReverse(NewsDetail, 1))
	assert.Equal(t, "/site/", MustReverse(NewsHome))
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/edit_comment/5/", LoginRedirect("/edit_comment/5/"))
	assert.Equal(t, "/auth/login/?next=/news/5/%3Fpage%3D2", LoginRedirect("/news/5/?page=2"))
}
