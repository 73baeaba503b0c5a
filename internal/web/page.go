package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/chris-regnier/tabset/internal/cache"
	"github.com/chris-regnier/tabset/internal/tabs"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0; }
.tab { overflow: hidden; border-bottom: 1px solid #ccc; background-color: #f1f1f1; }
.tab form { display: inline; }
.tab button { background-color: inherit; border: none; outline: none; cursor: pointer; padding: 14px 16px; font-size: 16px; }
.tab button:hover { background-color: #ddd; }
.tab button.active { background-color: #ccc; }
.tabcontent { padding: 6px 12px; border-top: none; }
</style>
</head>
<body>
<div class="tab">
{{- range .Controls}}
<form method="post" action="/tabs"><input type="hidden" name="group" value="{{.Group}}"><input type="hidden" name="control" value="{{.ID}}"><button type="submit" id="{{.ID}}" class="tablinks{{if .Active}} active{{end}}"{{if .Focused}} autofocus{{end}}>{{.Label}}</button></form>
{{- end}}
</div>
{{- range .Panels}}
<div id="{{.ID}}" class="tabcontent" data-group="{{.Group}}" style="display:{{.Display}}">
{{- if .Title}}
<h3>{{.Title}}</h3>
{{- end}}
{{.Body}}
</div>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Title    string
	Controls []controlView
	Panels   []panelView
}

type controlView struct {
	ID      string
	Group   string
	Label   string
	Active  bool
	Focused bool
}

type panelView struct {
	ID      string
	Group   string
	Title   string
	Display string
	Body    template.HTML
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := s.pageData()
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("rendering page", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) pageData() pageData {
	st := s.switcher.Snapshot()
	reg := s.switcher.Registry()

	bodies := make(map[string]*tabs.Panel, len(reg.Panels()))
	for _, p := range reg.Panels() {
		bodies[p.ID] = p
	}

	data := pageData{Title: s.title}
	for _, c := range st.Controls {
		label := c.Label
		if label == "" {
			if g, ok := reg.Group(c.Group); ok {
				label = g.Label
			}
		}
		data.Controls = append(data.Controls, controlView{
			ID:      c.ID,
			Group:   c.Group,
			Label:   label,
			Active:  c.Active,
			Focused: c.Focused,
		})
	}
	for _, p := range st.Panels {
		view := panelView{ID: p.ID, Group: p.Group, Title: p.Title, Display: p.Display}
		if panel, ok := bodies[p.ID]; ok {
			view.Body = s.renderBody(panel)
		}
		data.Panels = append(data.Panels, view)
	}
	return data
}

func (s *Server) renderBody(p *tabs.Panel) template.HTML {
	key := cache.RenderKey(string(p.Kind), p.Language, 0, p.Body)
	out, _ := s.bodies.GetOrCompute(key, func() (template.HTML, error) {
		return s.convertBody(p), nil
	})
	return out
}

func (s *Server) convertBody(p *tabs.Panel) template.HTML {
	switch p.Kind {
	case tabs.KindCode:
		if out, err := highlightHTML(p.Body, p.Language); err == nil {
			return out
		}
		return preformatted(p.Body)
	case tabs.KindText:
		return preformatted(p.Body)
	default:
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(p.Body), &buf); err != nil {
			s.logger.Warn("rendering markdown", "panel", p.ID, "err", err)
			return preformatted(p.Body)
		}
		return template.HTML(buf.String())
	}
}

func preformatted(text string) template.HTML {
	return template.HTML("<pre>" + template.HTMLEscapeString(text) + "</pre>")
}

func highlightHTML(code, language string) (template.HTML, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	var b strings.Builder
	if err := chromahtml.New(chromahtml.TabWidth(4)).Format(&b, style, iterator); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
