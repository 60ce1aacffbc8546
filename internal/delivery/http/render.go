package http

import (
	"embed"
	"html/template"
	"io"

	"github.com/paperrank/app/internal/domain"
	"github.com/paperrank/app/internal/export"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type modeOption struct {
	Value    domain.RankingMode
	Help     string
	Selected bool
}

// card is one rendered PaperResult; Ordinal is 1-based in ResultSet order.
type card struct {
	Ordinal  int
	Title    string
	URL      string
	Year     string
	Abstract string
}

type pageData struct {
	Topic        string
	Modes        []modeOption
	SelectedHelp string
	Notice       *domain.Notice
	Busy         bool
	Cards        []card
	Filename     string
}

func newPageData(topic string, mode domain.RankingMode, rs domain.ResultSet) pageData {
	if !mode.Valid() {
		mode = domain.DefaultRankingMode
	}
	data := pageData{
		Topic:        topic,
		SelectedHelp: mode.Help(),
		Cards:        cards(rs),
		Filename:     export.Filename,
	}
	for _, m := range domain.RankingModes {
		data.Modes = append(data.Modes, modeOption{Value: m, Help: m.Help(), Selected: m == mode})
	}
	return data
}

func cards(rs domain.ResultSet) []card {
	out := make([]card, 0, len(rs))
	for i, p := range rs {
		out = append(out, card{
			Ordinal:  i + 1,
			Title:    p.Title,
			URL:      p.URL,
			Year:     p.Year,
			Abstract: p.Abstract,
		})
	}
	return out
}

func renderPage(w io.Writer, data pageData) error {
	return pageTemplate.Execute(w, data)
}
