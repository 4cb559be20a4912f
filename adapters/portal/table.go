package portal

import (
	"fmt"
	"strings"

	"salondesk/domain/portal"
	"salondesk/internal/errors"

	"github.com/PuerkitoBio/goquery"
)

// ParseTable extracts the first <table> of an HTML document. Header cells come
// from <thead>, or from the first row when it is made of <th> cells.
func ParseTable(html string) (*portal.Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.NotFound("result table")
	}

	out := &portal.Table{}
	rows := table.Find("tr")
	rows.Each(func(i int, tr *goquery.Selection) {
		ths := tr.Find("th")
		inHead := tr.ParentsFiltered("thead").Length() > 0
		if out.Headers == nil && (inHead || (i == 0 && ths.Length() > 0 && tr.Find("td").Length() == 0)) {
			out.Headers = cellTexts(tr.Find("th, td"))
			return
		}
		if inHead {
			return
		}
		cells := cellTexts(tr.Find("td, th"))
		if len(cells) == 0 {
			return
		}
		out.Rows = append(out.Rows, cells)
	})

	if out.Headers == nil && len(out.Rows) > 0 {
		width := len(out.Rows[0])
		out.Headers = make([]string, width)
		for i := range out.Headers {
			out.Headers[i] = fmt.Sprintf("Column %d", i+1)
		}
	}
	return out, nil
}

func cellTexts(sel *goquery.Selection) []string {
	var cells []string
	sel.Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, strings.Join(strings.Fields(c.Text()), " "))
	})
	return cells
}
