package server

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/userservice/component"
)

// systemPaths are the operational routes from RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health":  true,
	"/livez":   true,
	"/readyz":  true,
	"/version": true,
	"/info":    true,
}

var methodRank = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func rank(method string) int {
	if i := slices.Index(methodRank, method); i >= 0 {
		return i
	}
	return len(methodRank)
}

// collectRoutes lists API routes by path and method, then the system routes
// marked "(system)".
func collectRoutes(info gin.RoutesInfo) []component.Route {
	sorted := slices.Clone(info)
	slices.SortStableFunc(sorted, func(a, b gin.RouteInfo) int {
		aSys, bSys := systemPaths[a.Path], systemPaths[b.Path]
		if aSys != bSys {
			if aSys {
				return 1
			}
			return -1
		}
		return cmp.Or(strings.Compare(a.Path, b.Path), cmp.Compare(rank(a.Method), rank(b.Method)))
	})

	routes := make([]component.Route, len(sorted))
	for i, r := range sorted {
		name := formatHandlerName(r.Handler)
		if systemPaths[r.Path] {
			name += " (system)"
		}
		routes[i] = component.Route{Method: r.Method, Path: r.Path, Handler: name}
	}
	return routes
}

// formatHandlerName shortens gin's handler names:
//
//	github.com/kbukum/userservice/api.(*UserHandler).Login-fm → UserHandler.Login
//	github.com/kbukum/userservice/server/endpoint.Health.func1 → health
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for _, p := range slices.Backward(parts) {
			if !strings.HasPrefix(p, "func") {
				name = strings.ToLower(p)
				break
			}
		}
	}
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && !strings.ContainsFunc(pkg, unicode.IsUpper) {
		name = rest
	}
	return name
}
