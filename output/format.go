// Package output renders a finished crawl (or local scan) into the
// crawler's on-disk report formats: a plain-text report (tidy or
// detailed) and an optional CSV.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/recon-suite/secretscraper/crawl"
	"github.com/recon-suite/secretscraper/secrets"
)

// Row is one visited URL's report line.
type Row struct {
	URL           string
	Title         string
	Status        string
	ContentLength int64
	ContentType   string
	Secrets       []secrets.Secret
}

// BuildRows assembles report rows from a finished crawl's state,
// filtering by ranges (see Accept). Rows are sorted by URL so output
// is deterministic across runs.
func BuildRows(state *crawl.State, ranges []Range) []Row {
	nodes := state.Visited()
	rows := make([]Row, 0, len(nodes))
	for _, n := range nodes {
		if status, err := strconv.Atoi(n.ResponseStatus); err == nil && !Accept(ranges, status) {
			continue
		}
		rows = append(rows, Row{
			URL:           n.Raw,
			Title:         n.Title,
			Status:        n.ResponseStatus,
			ContentLength: n.ContentLength,
			ContentType:   n.ContentType,
			Secrets:       state.Secrets(n),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].URL < rows[j].URL })
	return rows
}

// Formatter renders a crawl report. HideRegex suppresses the secrets
// section; Detail switches from the tidy one-line-per-URL view to the
// fuller found-domains/hierarchy/secrets report.
type Formatter struct {
	HideRegex bool
	Detail    bool
}

// New builds a Formatter.
func New(hideRegex, detail bool) *Formatter {
	return &Formatter{HideRegex: hideRegex, Detail: detail}
}

// WriteReport writes the configured report format for state to w.
func (f *Formatter) WriteReport(w io.Writer, state *crawl.State, ranges []Range) error {
	rows := BuildRows(state, ranges)
	if f.Detail {
		return f.writeDetailed(w, state, rows)
	}
	return f.writeTidy(w, rows)
}

func (f *Formatter) writeTidy(w io.Writer, rows []Row) error {
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "[%s] %s %s\n", r.Status, r.URL, r.Title); err != nil {
			return err
		}
		if f.HideRegex {
			continue
		}
		for _, s := range r.Secrets {
			if _, err := fmt.Fprintf(w, "\t%s: %s\n", s.Type, s.Data); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Formatter) writeDetailed(w io.Writer, state *crawl.State, rows []Row) error {
	fmt.Fprintln(w, "== Found domains ==")
	for _, n := range sortedByRaw(state.Visited()) {
		fmt.Fprintln(w, n.Raw)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "== URL hierarchy ==")
	writeHierarchy(w, state.URLDictBases())
	fmt.Fprintln(w)

	fmt.Fprintln(w, "== JS endpoints ==")
	writeHierarchy(w, state.JSDictBases())
	fmt.Fprintln(w)

	if f.HideRegex {
		return nil
	}
	fmt.Fprintln(w, "== Secrets ==")
	for _, r := range rows {
		if len(r.Secrets) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", r.URL)
		for _, s := range r.Secrets {
			fmt.Fprintf(w, "\t%s: %s\n", s.Type, s.Data)
		}
	}
	return nil
}

func sortedByRaw(nodes []*crawl.URLNode) []*crawl.URLNode {
	out := append([]*crawl.URLNode(nil), nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out
}

func writeHierarchy(w io.Writer, bases map[*crawl.URLNode][]*crawl.URLNode) {
	baseList := make([]*crawl.URLNode, 0, len(bases))
	for b := range bases {
		baseList = append(baseList, b)
	}
	sort.Slice(baseList, func(i, j int) bool { return baseList[i].Raw < baseList[j].Raw })

	for _, base := range baseList {
		fmt.Fprintf(w, "%s:\n", base.Raw)
		for _, c := range sortedByRaw(bases[base]) {
			fmt.Fprintf(w, "\t%s\n", c.Raw)
		}
	}
}

// WriteCSV writes rows as CSV with columns URL, Title, Response Code,
// Content Length, Content Type, Secrets.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"URL", "Title", "Response Code", "Content Length", "Content Type", "Secrets"}); err != nil {
		return err
	}
	for _, r := range rows {
		secretStrs := make([]string, 0, len(r.Secrets))
		for _, s := range r.Secrets {
			secretStrs = append(secretStrs, fmt.Sprintf("%s=%s", s.Type, s.Data))
		}
		record := []string{
			r.URL,
			r.Title,
			r.Status,
			strconv.FormatInt(r.ContentLength, 10),
			r.ContentType,
			strings.Join(secretStrs, "; "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
