package protocol

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aerissecure/protocols/docx"
	"github.com/aerissecure/protocols/roster"
)

// Program is the protocol template of one training program and the title
// line carrying the application number placeholder.
type Program struct {
	Template string `yaml:"template"`
	Title    string `yaml:"title"`
}

// Overflow describes how codes above the grouping threshold are rendered:
// with the template of Program and the theme placeholder swapped for the
// code's own theme.
type Overflow struct {
	Program          string            `yaml:"program"`
	ThemePlaceholder string            `yaml:"theme_placeholder"`
	Themes           map[string]string `yaml:"themes"`
}

// Roster locates the roster table of a protocol template and the fixed
// literals written into it.
type Roster struct {
	Table       int               `yaml:"table"`
	TemplateRow int               `yaml:"template_row"`
	Result      string            `yaml:"result"`
	Reference   string            `yaml:"reference"`
	Format      []docx.CellFormat `yaml:"format"`
}

// Sheet is a two-column companion document: a numbered list of names under a
// label paragraph.
type Sheet struct {
	Template    string            `yaml:"template"`
	Table       int               `yaml:"table"`
	TemplateRow int               `yaml:"template_row"`
	Placeholder string            `yaml:"placeholder"`
	Format      []docx.CellFormat `yaml:"format"`
}

// Scope controls which attendance sheets are produced.
type Scope string

const (
	ScopeNone    Scope = "none"
	ScopeBatch   Scope = "batch"
	ScopeProgram Scope = "program"
)

// Attendance configures attendance sheets.
type Attendance struct {
	Scope Scope `yaml:"scope"`
	Sheet `yaml:",inline"`
}

// Consent configures the consent form.
type Consent struct {
	Enabled bool `yaml:"enabled"`
	Sheet   `yaml:",inline"`
}

// Config is the immutable input of a Builder.
type Config struct {
	TemplatesDir      string             `yaml:"templates_dir"`
	NumberPlaceholder string             `yaml:"number_placeholder"`
	Programs          map[string]Program `yaml:"programs"`
	Overflow          Overflow           `yaml:"overflow"`
	Roster            Roster             `yaml:"roster"`
	Attendance        Attendance         `yaml:"attendance"`
	Consent           Consent            `yaml:"consent"`
	Source            roster.Layout      `yaml:"source"`
	Policy            roster.Policy      `yaml:"policy"`
}

const defaultTheme = "«Обучение по безопасным методам и приемам выполнения работ повышенной опасности, к которым предъявляются " +
	"дополнительные требования в соответствии с нормативными правовыми актами, содержащими государственные " +
	"нормативные требования охраны труда»"

// DefaultConfig returns the stock template set for programs 1 to 5.
func DefaultConfig() Config {
	right := docx.DefaultCellFormat()
	right.Align = docx.AlignRight
	return Config{
		TemplatesDir:      filepath.Join("templates", "one_row"),
		NumberPlaceholder: "_____",
		Programs: map[string]Program{
			"1": {Template: "00. ПП Шаблон.docx", Title: "ПРОТОКОЛ №ПП-_____"},
			"2": {Template: "00. СИЗ ШАБЛОН.docx", Title: "ПРОТОКОЛ №СИЗ-_____"},
			"3": {Template: "00. А ШАБЛОН.docx", Title: "ПРОТОКОЛ №А-_____"},
			"4": {Template: "00.Б ШАБЛОН.docx", Title: "ПРОТОКОЛ №Б-_____"},
			"5": {Template: "00. В ШАБЛОН.docx", Title: "ПРОТОКОЛ №В-_____"},
		},
		Overflow: Overflow{
			Program:          "5",
			ThemePlaceholder: defaultTheme,
			Themes:           map[string]string{},
		},
		Roster: Roster{
			Table:       1,
			TemplateRow: 1,
			Result:      "удовлетворительно",
			Reference:   "Согласно Приложению № 1 к настоящему протоколу",
			Format:      []docx.CellFormat{right},
		},
		Attendance: Attendance{
			Scope: ScopeBatch,
			Sheet: Sheet{
				Template:    "00. УП пустой.docx",
				Table:       0,
				TemplateRow: 3,
				Placeholder: "Группа ______________________",
				Format:      []docx.CellFormat{docx.DefaultCellFormat()},
			},
		},
		Consent: Consent{
			Enabled: true,
			Sheet: Sheet{
				Template:    "00. Шаблон.docx",
				Table:       0,
				TemplateRow: 1,
				Placeholder: strings.Repeat("_", 66) + ",",
				Format:      []docx.CellFormat{docx.DefaultCellFormat()},
			},
		},
		Source: roster.DefaultLayout(),
		Policy: roster.DefaultPolicy(),
	}
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	if c.NumberPlaceholder == "" {
		return errors.New("number_placeholder is empty")
	}
	if len(c.Programs) == 0 {
		return errors.New("no programs configured")
	}
	for code, p := range c.Programs {
		if p.Template == "" {
			return fmt.Errorf("program %s: template is empty", code)
		}
		if !strings.Contains(p.Title, c.NumberPlaceholder) {
			return fmt.Errorf("program %s: title %q lacks the number placeholder %q", code, p.Title, c.NumberPlaceholder)
		}
	}
	if _, ok := c.Programs[c.Overflow.Program]; !ok {
		return fmt.Errorf("overflow program %q is not configured", c.Overflow.Program)
	}
	if c.Roster.Table < 0 || c.Roster.TemplateRow < 0 {
		return errors.New("roster table and template_row must not be negative")
	}
	switch c.Attendance.Scope {
	case ScopeNone:
	case ScopeBatch, ScopeProgram:
		if err := c.Attendance.validate(); err != nil {
			return fmt.Errorf("attendance: %w", err)
		}
	default:
		return fmt.Errorf("attendance: unknown scope %q", c.Attendance.Scope)
	}
	if c.Consent.Enabled {
		if err := c.Consent.validate(); err != nil {
			return fmt.Errorf("consent: %w", err)
		}
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	return nil
}

func (s Sheet) validate() error {
	if s.Template == "" {
		return errors.New("template is empty")
	}
	if s.Table < 0 || s.TemplateRow < 0 {
		return errors.New("table and template_row must not be negative")
	}
	return nil
}

// TemplatePath resolves name against TemplatesDir unless it is absolute.
func (c Config) TemplatePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.TemplatesDir, name)
}

// clone returns a copy of c sharing no maps or slices with it.
func (c Config) clone() Config {
	c.Programs = maps.Clone(c.Programs)
	c.Overflow.Themes = maps.Clone(c.Overflow.Themes)
	c.Roster.Format = slices.Clone(c.Roster.Format)
	c.Attendance.Format = slices.Clone(c.Attendance.Format)
	c.Consent.Format = slices.Clone(c.Consent.Format)
	return c
}
