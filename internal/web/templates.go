package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/justestif/valora/internal/questionnaire"
	"github.com/justestif/valora/internal/snow"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// load parses all templates from the filesystem.
func (t *Templates) load(templatesFS fs.FS) error {
	// Load base layout
	layoutPattern := "layouts/*.html"
	layouts, err := fs.Glob(templatesFS, layoutPattern)
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	// Load partials
	partialPattern := "partials/*.html"
	partials, err := fs.Glob(templatesFS, partialPattern)
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	// Load each page template with layouts and partials
	pagePattern := "pages/*.html"
	pages, err := fs.Glob(templatesFS, pagePattern)
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	// Common files to include with every page
	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		// Create a new template for each page
		name := templateName(page)

		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		t.templates[name] = tmpl
	}

	return nil
}

// templateName strips the directory and .html extension.
func templateName(file string) string {
	return strings.TrimSuffix(path.Base(file), ".html")
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// percent returns part/total as a whole percentage.
		"percent": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return part * 100 / total
		},
	}
}

// moodClasses maps each mood to its page background.
var moodClasses = map[questionnaire.Mood]string{
	questionnaire.MoodHappy: "bg-happy",
	questionnaire.MoodAngry: "bg-angry",
	questionnaire.MoodSad:   "bg-sad",
	questionnaire.MoodCalm:  "bg-calm",
}

func moodClass(m questionnaire.Mood) string {
	if c, ok := moodClasses[m]; ok {
		return c
	}
	return "bg-default"
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	User        *UserData
	Flash       *FlashMessage
	CurrentPath string
	BodyClass   string
	Snow        snow.Preset
}

// UserData contains authenticated user information.
type UserData struct {
	ID   string
	Name string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
}

// QuestionnairePageData contains data for the questionnaire page template.
type QuestionnairePageData struct {
	PageData
	Stage          string // "items", "valence" or "arousal"
	Item           string
	Position       int
	Total          int
	Rating         int
	Ratings        []int
	CanProceed     bool
	Encouragement  string
	ValenceOptions []ValenceOption
	ArousalOptions []int
}

// ValenceOption is one pictogram on the valence scale.
type ValenceOption struct {
	Value float64
	Label string
	Face  string
}

// RecommendationsPageData contains data for the recommendations page template.
type RecommendationsPageData struct {
	PageData
	Mood string
}
