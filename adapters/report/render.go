package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"ssea/domain/result"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/*.html
var templateFiles embed.FS

// RenderContext holds the parsed report templates. Build one per run and
// pass it to the writer.
type RenderContext struct {
	templates *template.Template
}

// SetPage is the data behind one per-set HTML report
type SetPage struct {
	Name        string
	Prog        string
	RunID       string
	ConfInt     float64
	DetailsFile string
	Record      result.Record
}

// IndexPage wraps the rendered markdown index
type IndexPage struct {
	Name string
	Body template.HTML
}

// NewRenderContext parses the embedded templates
func NewRenderContext() (*RenderContext, error) {
	funcMap := template.FuncMap{
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 4, 64)
		},
		"pval": formatP,
		"opt":  formatOptional,
		"percent": func(v float64) string {
			return strconv.FormatFloat(100*v, 'f', -1, 64) + "%"
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &RenderContext{templates: templates}, nil
}

// RenderSet writes the detailed report of one sample set
func (rc *RenderContext) RenderSet(w io.Writer, page SetPage) error {
	return rc.templates.ExecuteTemplate(w, "detailedreport.html", page)
}

// RenderIndex converts index markdown to a standalone HTML page
func (rc *RenderContext) RenderIndex(w io.Writer, name string, md []byte) error {
	return rc.templates.ExecuteTemplate(w, "index.html", IndexPage{
		Name: name,
		Body: template.HTML(MarkdownToHTML(md)),
	})
}

// MarkdownToHTML renders markdown with tables and heading ids enabled. Raw
// HTML in the source is dropped.
func MarkdownToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML,
	})
	return markdown.Render(doc, renderer)
}

func formatP(v float64) string {
	if v < 1e-3 {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func renderToBytes(fn func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
