package source

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/janusbot/janus/internal/station"
)

// ExtractRows reads the first <table> in doc. Header names are the
// lower-cased text of every <th> in it; each <tr> after the first that has
// <td> cells becomes a map keyed by header, or by "col{i}" where headers run
// out. Returns nil when there is no table or no data row.
func ExtractRows(doc *goquery.Document) []map[string]string {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil
	}

	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.ToLower(cellText(th)))
	})

	var rows []map[string]string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		row := make(map[string]string, tds.Length())
		tds.Each(func(j int, td *goquery.Selection) {
			row[columnKey(headers, j)] = cellText(td)
		})
		rows = append(rows, row)
	})

	return rows
}

func columnKey(headers []string, i int) string {
	if i < len(headers) {
		return headers[i]
	}
	return fmt.Sprintf("col%d", i)
}

// ExtractRow returns one data row of the first table: the first by default,
// the last when pick is station.RowLast. Returns nil when there is none.
func ExtractRow(doc *goquery.Document, pick string) map[string]string {
	rows := ExtractRows(doc)
	if len(rows) == 0 {
		return nil
	}
	if pick == station.RowLast {
		return rows[len(rows)-1]
	}
	return rows[0]
}
