// Package extract converts raw visa bulletin markup into structured
// records. It locates the four canonical cutoff tables by their heading
// phrases and parses each into preference-by-chargeability-area mappings.
package extract

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
)

// heading identifies one required table by the phrase that precedes it.
// Phrases are matched case-insensitively with whitespace tolerance; the
// wording shifted slightly across nine years of document revisions.
type heading struct {
	name    string
	pattern *regexp.Regexp
}

var headings = []heading{
	{"final action family", regexp.MustCompile(`(?i)FINAL\s+ACTION\s+DATES\s+FOR\s+FAMILY(?:-SPONSORED)?\s+PREFERENCE\s+CASES`)},
	{"filing family", regexp.MustCompile(`(?i)DATES\s+FOR\s+FILING\s+(?:FAMILY-SPONSORED)?\s*VISA\s+APPLICATIONS`)},
	{"final action employment", regexp.MustCompile(`(?i)FINAL\s+ACTION\s+DATES\s+FOR\s+EMPLOYMENT(?:-BASED)?\s+PREFERENCE\s+CASES`)},
	{"filing employment", regexp.MustCompile(`(?i)DATES\s+FOR\s+FILING\s+(?:OF)?\s*EMPLOYMENT(?:-BASED)?\s*VISA\s+APPLICATIONS`)},
}

// Extract parses one bulletin document into a record with normalized
// cutoff tokens. All four required tables must extract; a partially
// populated record is never returned, so downstream series stay free of
// silent gaps.
func Extract(markup []byte) (*bulletin.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse markup")
	}

	order := documentOrder(doc)

	// Headings live in <u> elements. Record the document position of the
	// first element matching each phrase.
	headingPos := make(map[string]int, len(headings))
	doc.Find("u").Each(func(_ int, sel *goquery.Selection) {
		text := strings.ReplaceAll(sel.Text(), " ", " ")
		for _, h := range headings {
			if _, seen := headingPos[h.name]; seen {
				continue
			}
			if h.pattern.MatchString(text) {
				headingPos[h.name] = order[sel.Nodes[0]]
				break
			}
		}
	})

	if len(headingPos) < len(headings) {
		var missing []string
		for _, h := range headings {
			if _, ok := headingPos[h.name]; !ok {
				missing = append(missing, h.name)
			}
		}
		return nil, eris.Errorf("extract: headings not found: %s", strings.Join(missing, ", "))
	}

	// Tables in document order; each heading claims the nearest one after it.
	type positioned struct {
		pos int
		sel *goquery.Selection
	}
	var tables []positioned
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		tables = append(tables, positioned{pos: order[sel.Nodes[0]], sel: sel})
	})

	parsed := make(map[string]bulletin.Table, len(headings))
	for _, h := range headings {
		var following *goquery.Selection
		for _, t := range tables {
			if t.pos > headingPos[h.name] {
				following = t.sel
				break
			}
		}
		if following == nil {
			return nil, eris.Errorf("extract: no table follows heading %q", h.name)
		}
		tbl, err := parseTable(following)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: table %q", h.name)
		}
		parsed[h.name] = tbl
	}

	rec := &bulletin.Record{
		FinalActionDates: bulletin.Tables{
			Family:     parsed["final action family"],
			Employment: parsed["final action employment"],
		},
		DatesForFiling: bulletin.Tables{
			Family:     parsed["filing family"],
			Employment: parsed["filing employment"],
		},
	}
	rec.NormalizeCutoffs()
	return rec, nil
}

// parseTable reads one cutoff table. Row 1 is the header row, whose first
// cell is forced to "Preference" regardless of its literal text; every
// following row's first cell is the raw preference label.
func parseTable(sel *goquery.Selection) (bulletin.Table, error) {
	rows := sel.Find("tr")
	if rows.Length() == 0 {
		return nil, eris.New("no rows")
	}

	var headers []string
	rows.First().Find("td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, compactHeader(joinedText(cell)))
	})
	if len(headers) == 0 {
		return nil, eris.New("header row has no cells")
	}
	headers[0] = "Preference"

	data := bulletin.Table{}
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		preference := flattenLabel(joinedText(cells.First()))
		if preference == "" {
			zap.L().Debug("extract: skipping row with empty preference label")
			return
		}
		areas := make(map[string]string, len(headers)-1)
		cells.Each(func(i int, cell *goquery.Selection) {
			if i == 0 {
				return
			}
			if i >= len(headers) {
				zap.L().Debug("extract: dropping cell beyond header count",
					zap.String("preference", preference), zap.Int("cell", i))
				return
			}
			areas[headers[i]] = joinedText(cell)
		})
		data[preference] = areas
	})

	if len(data) == 0 {
		return nil, eris.New("no data rows")
	}
	return data, nil
}

// joinedText collects the trimmed text fragments of a selection's
// descendants, joined with single spaces.
func joinedText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// compactHeader strips interior whitespace and the "-mainland born"
// regional qualifier so header labels match normalized lookup keys.
func compactHeader(h string) string {
	h = strings.ReplaceAll(h, "-mainland born", "")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, h)
}

// flattenLabel collapses multi-line preference labels to a single line.
func flattenLabel(s string) string {
	s = strings.ReplaceAll(s, ":\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// documentOrder assigns each node its position in a depth-first walk, so
// "nearest following element" queries can compare arbitrary nodes.
func documentOrder(doc *goquery.Document) map[*html.Node]int {
	order := make(map[*html.Node]int)
	i := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		order[n] = i
		i++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return order
}
