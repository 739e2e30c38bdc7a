package report

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"ssea/domain/core"
	"ssea/domain/result"
	"ssea/domain/run"
	"ssea/internal"
)

// IndexMarkdown and IndexHTML are the overview pages of an output directory
const (
	IndexMarkdown = "index.md"
	IndexHTML     = "index.html"
)

// Summary is the run-level JSON document, <name>.json
type Summary struct {
	Name             string          `json:"name"`
	Prog             string          `json:"prog"`
	RunID            core.RunID      `json:"run_id"`
	Perms            int             `json:"perms"`
	WeightMethodHit  string          `json:"weight_method_hit"`
	WeightMethodMiss string          `json:"weight_method_miss"`
	ConfInt          float64         `json:"conf_int"`
	CIMethod         string          `json:"ci_method"`
	ZeroPolicy       string          `json:"zero_policy"`
	Seed             int64           `json:"seed"`
	SeedGenerated    bool            `json:"seed_generated"`
	Fingerprint      core.Hash       `json:"fingerprint"`
	CreatedAt        core.Timestamp  `json:"created_at"`
	Results          []result.Record `json:"results"`
}

// Writer lays out a run's files in one output directory
type Writer struct {
	dir    string
	name   string
	render *RenderContext
	logger *internal.Logger
}

// NewWriter creates a writer. render must come from NewRenderContext.
func NewWriter(dir, name string, render *RenderContext, logger *internal.Logger) *Writer {
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	return &Writer{dir: dir, name: name, render: render, logger: logger}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// WriteRun writes per-set JSON, HTML and SVG files, then the summary and
// index. It returns the summary as written. Nothing is written when two sample
// sets would share report files.
func (w *Writer) WriteRun(r *run.Run) (*Summary, error) {
	records := r.Records()
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}
	if err := checkSetFileNames(w.name, names); err != nil {
		return nil, err
	}
	if err := EnsureDir(w.dir, w.logger); err != nil {
		return nil, err
	}
	w.logger.Info("Writing output to %s", w.dir)

	m := r.Manifest
	summary := &Summary{
		Name:             w.name,
		Prog:             m.CodeVersion,
		RunID:            m.RunID,
		Perms:            m.Parameters.Perms,
		WeightMethodHit:  m.Parameters.WeightMethodHit,
		WeightMethodMiss: m.Parameters.WeightMethodMiss,
		ConfInt:          m.Parameters.ConfInt,
		CIMethod:         m.Parameters.CIMethod,
		ZeroPolicy:       m.Parameters.ZeroPolicy,
		Seed:             m.Parameters.Seed,
		SeedGenerated:    m.Parameters.SeedGenerated,
		Fingerprint:      m.Fingerprint.Hash,
		CreatedAt:        m.CreatedAt,
		Results:          make([]result.Record, 0, len(records)),
	}

	for _, full := range records {
		rec, err := w.writeSet(summary, full)
		if err != nil {
			return nil, err
		}
		summary.Results = append(summary.Results, rec)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(w.dir, SummaryFileName(w.name)), data); err != nil {
		return nil, err
	}

	md := IndexMarkdownFor(summary)
	if err := writeFileAtomic(filepath.Join(w.dir, IndexMarkdown), md); err != nil {
		return nil, err
	}
	page, err := renderToBytes(func(out io.Writer) error {
		return w.render.RenderIndex(out, w.name, md)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render index: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(w.dir, IndexHTML), page); err != nil {
		return nil, err
	}
	return summary, nil
}

// writeSet writes the files of one sample set and returns its summary record
func (w *Writer) writeSet(s *Summary, rec result.Record) (result.Record, error) {
	detailsFile := SetFileName(w.name, rec.Name, "json")
	rec.EnrichmentPlot = SetFileName(w.name, rec.Name, "eplot.svg")
	rec.NullPlot = SetFileName(w.name, rec.Name, "null.svg")
	rec.HTMLReport = SetFileName(w.name, rec.Name, "html")

	if err := writeFileAtomic(filepath.Join(w.dir, rec.EnrichmentPlot), EnrichmentPlot(rec)); err != nil {
		return result.Record{}, err
	}
	if err := writeFileAtomic(filepath.Join(w.dir, rec.NullPlot), NullHistogram(rec)); err != nil {
		return result.Record{}, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return result.Record{}, fmt.Errorf("failed to encode %s: %w", rec.Name, err)
	}
	if err := writeFileAtomic(filepath.Join(w.dir, detailsFile), data); err != nil {
		return result.Record{}, err
	}

	page, err := renderToBytes(func(out io.Writer) error {
		return w.render.RenderSet(out, SetPage{
			Name:        w.name,
			Prog:        s.Prog,
			RunID:       s.RunID.String(),
			ConfInt:     s.ConfInt,
			DetailsFile: detailsFile,
			Record:      rec,
		})
	})
	if err != nil {
		return result.Record{}, fmt.Errorf("failed to render %s: %w", rec.Name, err)
	}
	if err := writeFileAtomic(filepath.Join(w.dir, rec.HTMLReport), page); err != nil {
		return result.Record{}, err
	}

	w.logger.Debug("Wrote %s", rec.HTMLReport)
	return rec.Summary(detailsFile), nil
}

// IndexMarkdownFor builds the overview table of a run
func IndexMarkdownFor(s *Summary) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeCell(s.Name))
	fmt.Fprintf(&b, "- Run: `%s`\n", s.RunID)
	fmt.Fprintf(&b, "- Program: %s\n", s.Prog)
	fmt.Fprintf(&b, "- Permutations: %d\n", s.Perms)
	fmt.Fprintf(&b, "- Weight method (hit/miss): %s / %s\n", s.WeightMethodHit, s.WeightMethodMiss)
	fmt.Fprintf(&b, "- Confidence interval: %g (%s)\n", s.ConfInt, s.CIMethod)
	fmt.Fprintf(&b, "- Seed: %d\n\n", s.Seed)

	b.WriteString("| Sample set | Size | Hits | ES | NES | p | FDR q | Flags |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, rec := range s.Results {
		var flags []string
		if rec.Degenerate {
			flags = append(flags, rec.DegenerateReason)
		}
		if rec.InsufficientNull {
			flags = append(flags, "insufficient_null")
		}
		fmt.Fprintf(&b, "| [%s](%s) | %d | %d | %.4f | %s | %s | %s | %s |\n",
			escapeCell(rec.Name), url.PathEscape(rec.HTMLReport), rec.SetSize, rec.HitCount, rec.ES,
			formatOptional(rec.NES), formatP(rec.PValue), formatP(rec.FDRQValue),
			strings.Join(flags, ", "))
	}
	return []byte(b.String())
}

// escapeCell makes user text inert in markdown and in the HTML rendered from it
func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`).Replace(html.EscapeString(s))
}
