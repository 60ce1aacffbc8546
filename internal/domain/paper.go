package domain

import (
	"bytes"
	"encoding/json"
)

// Canonical PaperResult fields and the values used when the service omits them.
const (
	FieldTitle    = "title"
	FieldURL      = "url"
	FieldYear     = "year"
	FieldAbstract = "abstract"

	DefaultTitle    = "No Title"
	DefaultURL      = "#"
	DefaultYear     = "-"
	DefaultAbstract = "No abstract available"
)

// CanonicalFields lists the fields every PaperResult carries, in the order they
// are appended when a raw element lacks them.
var CanonicalFields = []string{FieldTitle, FieldURL, FieldYear, FieldAbstract}

// PaperResult is one paper card returned by the ranking service.
//
// Extra holds any non-canonical keys the service sent, rendered as text.
// Keys records the order in which fields first appeared so that exports can
// reproduce the service's column layout.
type PaperResult struct {
	Title    string
	URL      string
	Year     string
	Abstract string
	Extra    map[string]string
	Keys     []string
}

// NewPaperResult returns a PaperResult with every canonical field defaulted.
func NewPaperResult() PaperResult {
	return PaperResult{
		Title:    DefaultTitle,
		URL:      DefaultURL,
		Year:     DefaultYear,
		Abstract: DefaultAbstract,
		Keys:     append([]string(nil), CanonicalFields...),
	}
}

// Value returns the text of a field and whether the result has it.
func (p PaperResult) Value(key string) (string, bool) {
	switch key {
	case FieldTitle:
		return p.Title, true
	case FieldURL:
		return p.URL, true
	case FieldYear:
		return p.Year, true
	case FieldAbstract:
		return p.Abstract, true
	}
	v, ok := p.Extra[key]
	return v, ok
}

// MarshalJSON writes the result as a flat object in Keys order, so the
// output is accepted unchanged by the normalizer.
func (p PaperResult) MarshalJSON() ([]byte, error) {
	keys := p.Keys
	if len(keys) == 0 {
		keys = CanonicalFields
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range keys {
		v, ok := p.Value(k)
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResultSet is the ordered list of papers from one successful search.
// Order is the service's ranking order and is never re-sorted.
type ResultSet []PaperResult

// Clone returns a copy that shares no slices or maps with rs.
func (rs ResultSet) Clone() ResultSet {
	if rs == nil {
		return ResultSet{}
	}
	out := make(ResultSet, len(rs))
	for i, p := range rs {
		cp := p
		cp.Keys = append([]string(nil), p.Keys...)
		if p.Extra != nil {
			cp.Extra = make(map[string]string, len(p.Extra))
			for k, v := range p.Extra {
				cp.Extra[k] = v
			}
		}
		out[i] = cp
	}
	return out
}

// Columns returns the union of keys across the set, in first-appearance order.
func (rs ResultSet) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, p := range rs {
		for _, k := range p.Keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}
