package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"movierec/internal/domain"
	"movierec/internal/textutil"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// writeRecommendations prints recs as a table, or as a JSON array when asJSON
// is set. Descriptions are cut to maxChars in table output only.
func writeRecommendations(w io.Writer, query string, recs []domain.Recommendation, asJSON bool, maxChars int) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(lo.Ternary(recs == nil, []domain.Recommendation{}, recs))
	}
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations found.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Top %d recommendations for %s\n\n", len(recs), query); err != nil {
		return err
	}
	table := newTable(w, []string{"#", "Title", "Score", "Overview"})
	table.AppendBulk(lo.Map(recs, func(r domain.Recommendation, i int) []string {
		return []string{
			strconv.Itoa(i + 1),
			r.Title,
			fmt.Sprintf("%.3f", r.Score),
			textutil.Truncate(r.Description, maxChars),
		}
	}))
	table.Render()
	return nil
}

// writeSample prints the first n documents.
func writeSample(w io.Writer, docs []domain.Document, n, maxChars int) error {
	if _, err := fmt.Fprintf(w, "Dataset sample (%d of %d rows)\n\n", min(n, len(docs)), len(docs)); err != nil {
		return err
	}
	table := newTable(w, []string{"Row", "Title", "Overview"})
	table.AppendBulk(lo.Map(lo.Slice(docs, 0, n), func(d domain.Document, _ int) []string {
		return []string{strconv.Itoa(d.ID), d.Title, textutil.Truncate(d.Description, maxChars)}
	}))
	table.Render()
	return nil
}
