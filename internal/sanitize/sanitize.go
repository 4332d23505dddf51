// Package sanitize scrubs the rich-text About blob before it reaches any
// rendering surface. The field comes from a shared, multi-editor list, so
// stripping script-bearing and event-handler-bearing content is a hard
// invariant, not a nicety.
package sanitize

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements that can carry or trigger script execution.
var forbiddenSelector = "script, style, iframe, object, embed, form, link, meta, base"

// HTML returns a sanitized copy of the input markup. It never fails: input
// that cannot be parsed as HTML is returned fully escaped as plain text.
func HTML(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return html.EscapeString(input)
	}

	doc.Find(forbiddenSelector).Remove()

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			// Collect first: RemoveAttr mutates node.Attr in place, and
			// removing while ranging would skip the attribute that shifts
			// into the freed slot.
			var remove []string
			for _, attr := range node.Attr {
				name := strings.ToLower(attr.Key)
				switch {
				case strings.HasPrefix(name, "on"):
					remove = append(remove, attr.Key)
				case name == "href" || name == "src" || name == "action":
					if isScriptScheme(attr.Val) {
						remove = append(remove, attr.Key)
					}
				}
			}
			for _, key := range remove {
				sel.RemoveAttr(key)
			}
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return html.EscapeString(input)
	}
	return out
}

func isScriptScheme(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, "\n", "")
	v = strings.ReplaceAll(v, "\t", "")
	v = strings.ReplaceAll(v, " ", "")
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
		strings.HasPrefix(v, "data:text/html")
}
