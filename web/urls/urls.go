// Package urls keeps the table of named routes so handlers, templates and
// tests build paths by name instead of hard-coding them.
package urls

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

const (
	NewsHome    = "news:home"
	NewsDetail  = "news:detail"
	NewsEdit    = "news:edit"
	NewsDelete  = "news:delete"
	UsersLogin  = "users:login"
	UsersLogout = "users:logout"
	UsersSignup = "users:signup"
	APIFeed     = "api:feed"
	APIDetail   = "api:detail"
)

var patterns = map[string]string{
	NewsHome:    "/",
	NewsDetail:  "/news/:id/",
	NewsEdit:    "/edit_comment/:id/",
	NewsDelete:  "/delete_comment/:id/",
	UsersLogin:  "/auth/login/",
	UsersLogout: "/auth/logout/",
	UsersSignup: "/auth/signup/",
	APIFeed:     "/api/news/",
	APIDetail:   "/api/news/:id/",
}

var (
	mu       sync.RWMutex
	basePath = "/"
)

// SetBasePath sets the prefix every reversed path starts with.
func SetBasePath(p string) {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	mu.Lock()
	basePath = p
	mu.Unlock()
}

func getBasePath() string {
	mu.RLock()
	defer mu.RUnlock()
	return basePath
}

// Pattern returns the gin route pattern of name, relative to the base path.
func Pattern(name string) string {
	p, ok := patterns[name]
	if !ok {
		panic("urls: unknown route " + name)
	}
	return p
}

// Reverse fills the parameters of the named route with args, in order.
func Reverse(name string, args ...any) (string, error) {
	p, ok := patterns[name]
	if !ok {
		return "", fmt.Errorf("urls: unknown route %q", name)
	}

	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	used := 0
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		if used >= len(args) {
			return "", fmt.Errorf("urls: route %q expects more than %d argument(s)", name, len(args))
		}
		segments[i] = url.PathEscape(fmt.Sprint(args[used]))
		used++
	}
	if used != len(args) {
		return "", fmt.Errorf("urls: route %q takes %d argument(s), got %d", name, used, len(args))
	}
	return getBasePath() + strings.Join(segments, "/"), nil
}

// MustReverse is Reverse for names and arities known at compile time.
func MustReverse(name string, args ...any) string {
	path, err := Reverse(name, args...)
	if err != nil {
		panic(err)
	}
	return path
}

// LoginRedirect returns the login path that sends the user back to next afterwards.
// Slashes in next stay unescaped.
func LoginRedirect(next string) string {
	return MustReverse(UsersLogin) + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}
