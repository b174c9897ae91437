package research

import (
	"encoding/base64"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var htmlPolicy = bluemonday.UGCPolicy()

// RenderMarkdown turns model output into HTML safe to embed in the page.
func RenderMarkdown(md string) template.HTML {
	unsafe := blackfriday.Run([]byte(md))
	return template.HTML(htmlPolicy.SanitizeBytes(unsafe))
}

// DownloadURL embeds the report in a data URL so the browser saves it
// without a second request.
func DownloadURL(md string) template.URL {
	return template.URL("data:text/markdown;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(md)))
}
