package render

import (
	"fmt"
	"html/template"
	"strings"
)

// FuncMap returns the functions available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"add":   func(a, b int) int { return a + b },

		// tel: is not on html/template's URL allow-list.
		"telHref": func(phone string) template.URL {
			return template.URL("tel:" + strings.Join(strings.Fields(phone), ""))
		},

		// Keys are built in templates, e.g. (key "services.items" $i "title").
		"key": func(parts ...any) string {
			ss := make([]string, len(parts))
			for i, p := range parts {
				ss[i] = fmt.Sprint(p)
			}
			return strings.Join(ss, ".")
		},
	}
}
