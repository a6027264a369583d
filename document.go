package atrium

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
)

// documentTemplate is the page shell a DocumentAttachment wraps mounted
// composition roots in.
const documentTemplate = `<!DOCTYPE html>
<html lang="{{ .Lang }}">
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{ .Title }}</title>
{{- range .Links }}
    <link rel="stylesheet" href="{{ . }}">
{{- end }}
{{- with .Styles }}
    <style>{{ . }}</style>
{{- end }}
  </head>
  <body>
{{ .Body }}
  </body>
</html>
`

var docTmpl = template.Must(template.New("document").Parse(documentTemplate))

type documentData struct {
	Title  string
	Lang   string
	Links  []string
	Styles template.CSS
	Body   template.HTML
}

var _ Attachment = &DocumentAttachment{}
var _ http.Handler = &DocumentAttachment{}

// DocumentAttachment is an Attachment that serves the mounted composition
// root as a complete HTML document over HTTP. The document carries the
// root's markup in its body and the Stylesheet of the whole tree in its
// head. Until something is mounted, and again after an unmount, requests
// are answered with 503s rather than a stale page. A DocumentAttachment
// must be instantiated through NewDocumentAttachment, its empty value is
// not usable.
type DocumentAttachment struct {
	title string
	lang  string
	links []string

	mu  sync.RWMutex
	doc []byte
}

// DocumentOption configures a DocumentAttachment when it's constructed.
type DocumentOption func(*DocumentAttachment)

// WithLang sets the lang attribute on the documents served. The default is
// "en".
func WithLang(lang string) DocumentOption {
	return func(d *DocumentAttachment) {
		d.lang = lang
	}
}

// WithHeadLinks adds stylesheet links to the head of the documents served,
// for styles that don't belong to any Unit, like fonts or a reset sheet.
func WithHeadLinks(urls ...string) DocumentOption {
	return func(d *DocumentAttachment) {
		d.links = append(d.links, urls...)
	}
}

// NewDocumentAttachment returns a DocumentAttachment that is ready to be
// mounted onto, titling every document it renders with the passed title.
func NewDocumentAttachment(title string, opts ...DocumentOption) *DocumentAttachment {
	doc := &DocumentAttachment{
		title: title,
		lang:  "en",
	}
	for _, opt := range opts {
		opt(doc)
	}
	return doc
}

// Attach renders the passed composition root into a complete document and
// starts serving it. The document is rendered here, once; requests only
// ever copy bytes.
func (d *DocumentAttachment) Attach(_ context.Context, node *Node) error {
	var buf bytes.Buffer
	err := docTmpl.Execute(&buf, documentData{
		Title:  d.title,
		Lang:   d.lang,
		Links:  d.links,
		Styles: node.Stylesheet(),
		Body:   node.Markup(),
	})
	if err != nil {
		return fmt.Errorf("error rendering document for %q: %w", node.Name(), err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = buf.Bytes()
	return nil
}

// Detach stops serving the document Attach rendered.
func (d *DocumentAttachment) Detach(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = nil
	return nil
}

// Document returns a copy of the document currently being served, or nil
// when nothing is attached.
//
// It can safely be used by multiple goroutines.
func (d *DocumentAttachment) Document() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.doc == nil {
		return nil
	}
	return bytes.Clone(d.doc)
}

// ServeHTTP writes the attached document in answer to every request,
// whatever its path; routing is the host's concern, not the document's.
func (d *DocumentAttachment) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc := d.Document()
	if doc == nil {
		http.Error(w, "Nothing is mounted.", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write(doc)
	if err != nil {
		logError(r.Context(), err, "error writing document")
	}
}
