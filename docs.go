package speq

import (
	"bytes"
	"html/template"
	"net/http"
)

// DocsOption configures the docs UI.
type DocsOption func(*docsConfig)

type docsConfig struct {
	title   string
	specURL string
	layout  string
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.title = title
	}
}

// WithDocsLayout sets the Stoplight Elements layout, "sidebar" or "stacked".
func WithDocsLayout(layout string) DocsOption {
	return func(c *docsConfig) {
		c.layout = layout
	}
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{.SpecURL}}"
    router="hash"
    layout="{{.Layout}}"
  />
</body>
</html>`))

// DocsHandler serves a Stoplight Elements page rendering the OpenAPI
// document found at specURL.
func DocsHandler(specURL string, opts ...DocsOption) (http.Handler, error) {
	cfg := &docsConfig{
		title:   "API",
		specURL: specURL,
		layout:  "sidebar",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var buf bytes.Buffer
	if err := docsTemplate.Execute(&buf, cfg); err != nil {
		return nil, err
	}
	return staticHandler("text/html; charset=utf-8", buf.Bytes()), nil
}

// Title returns the docs config title (used in the template).
func (c *docsConfig) Title() string { return c.title }

// SpecURL returns the docs config spec URL (used in the template).
func (c *docsConfig) SpecURL() string { return c.specURL }

// Layout returns the docs config layout (used in the template).
func (c *docsConfig) Layout() string { return c.layout }
