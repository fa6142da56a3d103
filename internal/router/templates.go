package router

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"quill/internal/models"
	"quill/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// LoadTemplates registers the board page, the error page and the HTMX
// fragments. Pages are rendered through the layout; fragments are rendered
// bare with the components available.
func LoadTemplates(templatesDir string, funcMap template.FuncMap) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	components, err := filepath.Glob(filepath.Join(templatesDir, "components", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 || len(components) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}

	page := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(components)+1)
		files = append(files, layouts...)
		files = append(files, components...)
		return append(files, filepath.Join(templatesDir, "views", view))
	}
	fragment := func(name string) []string {
		files := []string{filepath.Join(templatesDir, "fragments", name)}
		return append(files, components...)
	}

	r.AddFromFilesFuncs("board.html", funcMap, page("board.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, page("error.html")...)

	r.AddFromFilesFuncs("fragments/list.html", funcMap, fragment("list.html")...)
	r.AddFromFilesFuncs("fragments/form.html", funcMap, fragment("form.html")...)
	r.AddFromFilesFuncs("fragments/votes.html", funcMap, fragment("votes.html")...)
	r.AddFromFilesFuncs("fragments/share.html", funcMap, fragment("share.html")...)

	return r, nil
}

// FuncMap holds the template helpers. bodies renders post bodies.
func FuncMap(bodies *utils.BodyRenderer) template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"renderBody": func(p models.Post) template.HTML {
			return bodies.Render(p.ID, p.Body)
		},
		"stanceOf": func(stances map[string]models.Stance, id string) string {
			return stances[id].String()
		},
		"timeAgo": func(ms int64) string {
			return timeAgo(time.Since(time.UnixMilli(ms)))
		},
		"dateTime": func(ms int64) string {
			return time.UnixMilli(ms).Format("2006-01-02 15:04")
		},
		"imgSrc":     imgSrc,
		"joinTags":   utils.JoinTags,
		"pathEscape": url.PathEscape,
	}
}

// imgSrc lets stored data URIs and http(s) links through html/template's
// URL filter. Anything else renders no image.
func imgSrc(p models.Post) template.URL {
	src := p.ImageSrc()
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "data:image/") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return template.URL(src)
	}
	return ""
}

func timeAgo(d time.Duration) string {
	seconds := int(d.Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
