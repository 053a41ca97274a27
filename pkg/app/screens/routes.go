package screens

import (
	"strings"

	"github.com/kerbaras/minty/pkg/data"
)

type RouteKind int

const (
	HomeRoute RouteKind = iota
	SearchRoute
	BookmarksRoute
	ProfileRoute
	ComicRoute
	ChapterRoute
	AuthRoute
)

// Route is a parsed navigation path. ID is only set for comic and chapter
// routes.
type Route struct {
	Kind RouteKind
	ID   data.ID
}

// ParseRoute maps a path to its route. Anything unknown is Home.
func ParseRoute(path string) Route {
	path = strings.TrimSpace(path)
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}

	switch path {
	case "/search":
		return Route{Kind: SearchRoute}
	case "/bookmarks":
		return Route{Kind: BookmarksRoute}
	case "/profile":
		return Route{Kind: ProfileRoute}
	case "/auth":
		return Route{Kind: AuthRoute}
	}

	if id, ok := strings.CutPrefix(path, "/comic/"); ok && id != "" && !strings.Contains(id, "/") {
		return Route{Kind: ComicRoute, ID: data.ID(id)}
	}
	if id, ok := strings.CutPrefix(path, "/chapter/"); ok && id != "" && !strings.Contains(id, "/") {
		return Route{Kind: ChapterRoute, ID: data.ID(id)}
	}
	return Route{Kind: HomeRoute}
}

func (r Route) Path() string {
	switch r.Kind {
	case SearchRoute:
		return "/search"
	case BookmarksRoute:
		return "/bookmarks"
	case ProfileRoute:
		return "/profile"
	case AuthRoute:
		return "/auth"
	case ComicRoute:
		return "/comic/" + r.ID.String()
	case ChapterRoute:
		return "/chapter/" + r.ID.String()
	default:
		return "/"
	}
}

// parameterized routes reuse their screen when only the id changes
func (r Route) parameterized() bool {
	return r.Kind == ComicRoute || r.Kind == ChapterRoute
}

type navItem struct {
	label string
	route RouteKind
}

// Bottom navigation, in key order 1-4.
var navItems = []navItem{
	{label: "Home", route: HomeRoute},
	{label: "Search", route: SearchRoute},
	{label: "Bookmark", route: BookmarksRoute},
	{label: "Profile", route: ProfileRoute},
}

func navIndex(kind RouteKind) int {
	for i, item := range navItems {
		if item.route == kind {
			return i
		}
	}
	return -1
}
