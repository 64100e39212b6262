// Package dol extracts PERM processing times from the Department of
// Labor's processing-times page.
package dol

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// DefaultURL is the DOL FLAG processing-times page.
const DefaultURL = "https://flag.dol.gov/processingtimes"

// ProcessingTime is the PERM analyst review queue position published by DOL.
type ProcessingTime struct {
	Phase        string `json:"phase"`
	Month        string `json:"month"`
	CalendarDays int    `json:"calendar_days"`
}

// analystReviewPattern matches the "Analyst Review <Month> <Year> <days>"
// row as it appears in the flattened page text.
var analystReviewPattern = regexp.MustCompile(`Analyst Review\s+([A-Za-z]+ 20\d{2})\s+(\d+)`)

// Extract locates the analyst review row in the page markup. The page is
// flattened to text with newline separators between elements before the
// row pattern is applied, so the match tolerates layout changes as long
// as the cells stay adjacent.
func Extract(markup []byte) (*ProcessingTime, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, eris.Wrap(err, "dol: parse document")
	}

	text := flatten(doc)
	m := analystReviewPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, eris.New("dol: analyst review row not found")
	}

	days, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, eris.Wrapf(err, "dol: parse calendar days %q", m[2])
	}

	return &ProcessingTime{
		Phase:        "Analyst Review",
		Month:        m[1],
		CalendarDays: days,
	}, nil
}

// flatten renders the document's text with a newline between elements,
// matching how the row pattern expects cells to be separated.
func flatten(doc *goquery.Document) string {
	var b strings.Builder
	for _, root := range doc.Nodes {
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.TextNode {
				b.WriteString(n.Data)
				b.WriteString("\n")
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(root)
	}
	return b.String()
}

// Write persists the processing time as a dated JSON file in dir and
// returns the path written.
func Write(dir string, pt *ProcessingTime, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "dol: create dir %s", dir)
	}

	data, err := json.MarshalIndent(pt, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "dol: marshal processing time")
	}

	path := filepath.Join(dir, "perm_processing_"+now.Format("2006-01-02")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "dol: write %s", path)
	}
	return path, nil
}
