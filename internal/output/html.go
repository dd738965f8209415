package output

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
)

// HTMLPreview renders a structured prompt as a standalone HTML page.
func HTMLPreview(title, md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family: sans-serif; font-size: 14px; line-height: 1.5; max-width: 860px; margin: 2em auto;">
%s
</body></html>
`, html.EscapeString(title), buf.String())

	return page, nil
}
