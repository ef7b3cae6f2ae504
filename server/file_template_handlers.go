package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/internal/utils"
	"github.com/jrsteele09/admissions-portal/navigation"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
)

//go:embed templates/*
var templateFiles embed.FS

// chat bodies are rendered without raw HTML
var markdown = goldmark.New()

var templateFuncs = template.FuncMap{
	"grade":       utils.FormatGrade,
	"gradePtr":    gradeText,
	"mediaURL":    utils.MediaURL,
	"roleLabel":   navigation.Label,
	"roleInitial": navigation.Initial,
	"statusLabel": func(s portalapi.ApplicationStatus) string { return s.Label() },
	"markdown":    renderMarkdown,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02.01.2006 15:04")
	},
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
	"fieldError": func(fields any, name string) string {
		if f, ok := fields.(forms.FieldErrors); ok {
			return f[name]
		}
		return ""
	},
	"pathWith": fillPath,
}

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

// MustParseTemplate is ParseTemplate for handler construction, where a
// missing template is a build defect.
func MustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		log.Warn().Err(err).Msg("Failed to render message markdown")
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func gradeText(g *float64) string {
	if g == nil {
		return "—"
	}
	return utils.FormatGrade(*g)
}

// fillPath substitutes the {name} segments of a route pattern in order.
func fillPath(pattern string, values ...any) string {
	for _, v := range values {
		start := strings.Index(pattern, "{")
		end := strings.Index(pattern, "}")
		if start < 0 || end < start {
			break
		}
		pattern = pattern[:start] + fmt.Sprint(v) + pattern[end+1:]
	}
	return pattern
}
