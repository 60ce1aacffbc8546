package usecase

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/paperrank/app/internal/domain"
)

// wrapperKey is the envelope some automation runs put around a single result.
const wrapperKey = "json"

// Normalize turns a webhook response body into a ResultSet.
//
// A top-level array is taken as the result list. A top-level object is a
// single result, unwrapped from its "json" key when present. Anything else,
// including array elements that are not objects, is a
// *domain.MalformedResponseError.
func Normalize(body []byte) (domain.ResultSet, error) {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return nil, &domain.MalformedResponseError{Reason: "invalid JSON"}
	}

	root := gjson.ParseBytes(body)

	var raw []gjson.Result
	switch {
	case root.IsArray():
		raw = root.Array()
	case root.IsObject():
		if inner := root.Get(wrapperKey); inner.Exists() {
			raw = []gjson.Result{inner}
		} else {
			raw = []gjson.Result{root}
		}
	default:
		return nil, &domain.MalformedResponseError{Reason: "expected a JSON array or object, got " + root.Type.String()}
	}

	rs := make(domain.ResultSet, 0, len(raw))
	for _, elem := range raw {
		if !elem.IsObject() {
			return nil, &domain.MalformedResponseError{Reason: "result element is not an object"}
		}
		rs = append(rs, toPaperResult(elem))
	}
	return rs, nil
}

func toPaperResult(obj gjson.Result) domain.PaperResult {
	p := domain.NewPaperResult()
	p.Keys = p.Keys[:0]
	seen := make(map[string]bool)

	obj.ForEach(func(key, value gjson.Result) bool {
		k := validText(key.String())
		if seen[k] {
			// Duplicate keys: last one wins, position stays at first sighting.
			setField(&p, k, value)
			return true
		}
		seen[k] = true
		p.Keys = append(p.Keys, k)
		setField(&p, k, value)
		return true
	})

	for _, k := range domain.CanonicalFields {
		if !seen[k] {
			p.Keys = append(p.Keys, k)
		}
	}
	return p
}

func setField(p *domain.PaperResult, key string, value gjson.Result) {
	text, present := fieldText(value)
	switch key {
	case domain.FieldTitle:
		p.Title = orDefault(text, present, domain.DefaultTitle)
	case domain.FieldURL:
		p.URL = orDefault(text, present, domain.DefaultURL)
	case domain.FieldYear:
		p.Year = orDefault(text, present, domain.DefaultYear)
	case domain.FieldAbstract:
		p.Abstract = orDefault(text, present, domain.DefaultAbstract)
	default:
		if p.Extra == nil {
			p.Extra = make(map[string]string)
		}
		p.Extra[key] = text
	}
}

// fieldText renders a JSON value as display text. Numbers keep their literal
// form and nested values stay compact JSON. null reports as absent.
func fieldText(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Null:
		return "", false
	case gjson.String:
		return validText(v.String()), true
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw, true
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(v.Raw)); err != nil {
			return validText(v.Raw), true
		}
		return validText(buf.String()), true
	}
}

// validText replaces byte sequences that are not UTF-8, which the JSON
// validator lets through inside strings.
func validText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func orDefault(text string, present bool, def string) string {
	if !present {
		return def
	}
	return text
}
