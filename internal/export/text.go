package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/paperrank/app/internal/domain"
)

// WriteText renders the result cards for a terminal, numbered from 1 in
// ResultSet order.
func WriteText(w io.Writer, rs domain.ResultSet) error {
	if len(rs) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for i, p := range rs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%d. %s\n   %s\n   Published: %s\n   %s\n",
			i+1, oneLine(p.Title), p.URL, oneLine(p.Year), oneLine(p.Abstract))
		if err != nil {
			return err
		}
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
