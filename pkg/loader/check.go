package loader

import (
	"fmt"

	"github.com/vanderheijden86/permitflow/pkg/model"
)

// Check returns every diagnostic for the data set: problems found while
// decoding plus citation keys with no registry record and tables whose rows do
// not match the header count. Only existence is checked for citations.
func Check(ds *Dataset) []Diagnostic {
	out := append([]Diagnostic(nil), ds.Diagnostics...)
	cats := append(append([]model.Category(nil), ds.Workflows...), ds.Tests)
	for _, cat := range cats {
		for _, sec := range cat.Sections {
			for _, c := range sec.Citations() {
				if _, ok := ds.Citations.Resolve(c.Source); !ok {
					out = append(out, Diagnostic{
						Kind:     DiagMissingCitation,
						Category: cat.ID,
						Section:  sec.Title,
						Detail:   fmt.Sprintf("no citation record for source %q", c.Source),
					})
				}
			}
			if tc, ok := sec.Content.(model.TableContent); ok {
				want := len(tc.Table.Headers)
				for i, row := range tc.Table.Rows {
					if len(row) != want {
						out = append(out, Diagnostic{
							Kind:     DiagRaggedTable,
							Category: cat.ID,
							Section:  sec.Title,
							Detail:   fmt.Sprintf("row %d has %d cells, headers declare %d", i+1, len(row), want),
						})
					}
				}
			}
		}
	}
	return out
}
