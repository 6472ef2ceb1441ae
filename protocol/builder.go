// Package protocol generates training protocols, attendance sheets and
// consent forms from an application document.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/document"
	"go.uber.org/zap"

	"github.com/aerissecure/protocols/docx"
	"github.com/aerissecure/protocols/roster"
)

// Request names one application to process.
type Request struct {
	Source       string
	Organization string // overrides the name parsed from Source when set
	Number       string // overrides the number parsed from Source when set
	OutDir       string // a fresh temporary directory when empty
}

// Document is one generated file.
type Document struct {
	Kind    Kind
	Program string
	Path    string
}

// Result describes a generation run.
type Result struct {
	Info      roster.AppInfo
	Records   int
	OutDir    string
	Documents []Document
	Failures  []*BucketError
}

// Paths returns the generated file paths in generation order.
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.Documents))
	for _, d := range r.Documents {
		out = append(out, d.Path)
	}
	return out
}

// Builder turns application documents into filled templates. It works on its
// own copy of the configuration, holds no per-run state and is safe for
// concurrent use.
type Builder struct {
	cfg Config
	log *zap.Logger
}

// New validates cfg and returns a Builder. A nil logger discards output.
func New(cfg Config, log *zap.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("protocol config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{cfg: cfg.clone(), log: log}, nil
}

// Generate processes req. Failures confined to one document are collected in
// Result.Failures and do not stop the batch. An application without records
// yields an empty Result and no error; records without any produced document
// yield ErrNoOutput joined with the failures.
func (b *Builder) Generate(ctx context.Context, req Request) (*Result, error) {
	log := b.log.With(zap.String("source", req.Source))

	tables, err := roster.ReadSource(req.Source)
	if err != nil {
		log.Error("read application", zap.Error(err))
		return nil, err
	}
	info := roster.ParseFileName(req.Source).Override(req.Number, req.Organization)
	records := roster.Extract(tables, b.cfg.Source)
	res := &Result{Info: info, Records: len(records)}
	log.Info("records extracted",
		zap.Int("records", len(records)),
		zap.String("number", info.Number),
		zap.String("organization", info.Organization))
	if len(records) == 0 {
		log.Warn("application has no records")
		return res, nil
	}

	res.OutDir = req.OutDir
	if res.OutDir == "" {
		if res.OutDir, err = os.MkdirTemp("", "protocolgen-"); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(res.OutDir, 0o755); err != nil {
		return nil, err
	}

	buckets := roster.Group(records, b.cfg.Policy)
	log.Info("records grouped", zap.Strings("programs", buckets.Codes()))

	r := run{Builder: b, info: info, res: res, log: log}
	for _, code := range buckets.Codes() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		people := buckets.Records(code)
		log.Info("processing program", zap.String("program", code), zap.Int("people", len(people)))
		r.isolate(KindProtocol, code, func() (string, error) { return r.protocol(code, people) })
		if b.cfg.Attendance.Scope == ScopeProgram {
			r.isolate(KindAttendance, code, func() (string, error) { return r.attendance(code, people) })
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	unique := roster.Unique(records)
	if b.cfg.Attendance.Scope == ScopeBatch {
		r.isolate(KindAttendance, "", func() (string, error) { return r.attendance("", unique) })
	}
	if b.cfg.Consent.Enabled {
		r.isolate(KindConsent, "", func() (string, error) { return r.consent(unique) })
	}

	if len(res.Documents) == 0 {
		errs := []error{ErrNoOutput}
		for _, f := range res.Failures {
			errs = append(errs, f)
		}
		err := errors.Join(errs...)
		log.Error("nothing generated", zap.Error(err))
		return res, err
	}
	log.Info("generation finished",
		zap.Int("documents", len(res.Documents)),
		zap.Int("failures", len(res.Failures)),
		zap.String("out_dir", res.OutDir))
	return res, nil
}

// run carries the state of one Generate call.
type run struct {
	*Builder
	info roster.AppInfo
	res  *Result
	log  *zap.Logger
}

func (r *run) isolate(kind Kind, program string, fn func() (string, error)) {
	var (
		path string
		err  error
	)
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		path, err = fn()
	}()
	if err != nil {
		be := &BucketError{Program: program, Kind: kind, Err: err}
		r.res.Failures = append(r.res.Failures, be)
		r.log.Error("document failed", zap.String("kind", string(kind)), zap.String("program", program), zap.Error(err))
		return
	}
	r.res.Documents = append(r.res.Documents, Document{Kind: kind, Program: program, Path: path})
	r.log.Info("document saved", zap.String("kind", string(kind)), zap.String("program", program), zap.String("path", path))
}

// template selects the protocol program for code and, for overflow codes,
// the theme that replaces the template's placeholder.
func (r *run) template(code string) (Program, string, error) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return Program{}, "", fmt.Errorf("%w %q", ErrUnknownProgram, code)
	}
	if n > r.cfg.Policy.Threshold {
		theme, ok := r.cfg.Overflow.Themes[strconv.Itoa(n)]
		if !ok {
			return Program{}, "", fmt.Errorf("%w for program %d", ErrUnknownTheme, n)
		}
		return r.cfg.Programs[r.cfg.Overflow.Program], theme, nil
	}
	p, ok := r.cfg.Programs[strconv.Itoa(n)]
	if !ok {
		return Program{}, "", fmt.Errorf("%w %q", ErrUnknownProgram, code)
	}
	return p, "", nil
}

func (r *run) protocol(code string, people []roster.PersonRecord) (string, error) {
	prog, theme, err := r.template(code)
	if err != nil {
		return "", err
	}
	path := r.cfg.TemplatePath(prog.Template)
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("open template %s: %w", path, err)
	}

	title := strings.ReplaceAll(prog.Title, r.cfg.NumberPlaceholder, r.info.Number)
	if docx.ReplaceText(doc, docx.Replacement{Old: prog.Title, New: title, Highlight: title}) == 0 {
		r.log.Warn("title placeholder not found", zap.String("program", code), zap.String("template", path))
	}
	if theme != "" && docx.ReplaceText(doc, docx.Replacement{Old: r.cfg.Overflow.ThemePlaceholder, New: theme}) == 0 {
		r.log.Warn("theme placeholder not found", zap.String("program", code), zap.String("template", path))
	}

	rows := make([][]string, len(people))
	for i, p := range people {
		rows[i] = []string{
			fmt.Sprintf("%d.", i+1), p.FullName, p.Role, r.info.Organization,
			r.cfg.Roster.Result, r.cfg.Roster.Reference, "", "",
		}
	}
	if err := fillTable(doc, r.cfg.Roster.Table, r.cfg.Roster.TemplateRow, rows, r.cfg.Roster.Format); err != nil {
		return "", fmt.Errorf("template %s: %w", path, err)
	}
	return r.save(doc, ProtocolName(r.info.Number, r.info.Organization, code))
}

func (r *run) attendance(code string, people []roster.PersonRecord) (string, error) {
	label := attendanceLabel(r.info.Number, r.info.Organization, code)
	doc, err := r.sheet(r.cfg.Attendance.Sheet, label, people)
	if err != nil {
		return "", err
	}
	return r.save(doc, AttendanceName(r.info.Number, r.info.Organization, code))
}

func (r *run) consent(people []roster.PersonRecord) (string, error) {
	doc, err := r.sheet(r.cfg.Consent.Sheet, consentLabel(r.info.Organization), people)
	if err != nil {
		return "", err
	}
	return r.save(doc, ConsentName(r.info.Number, r.info.Organization))
}

// sheet fills a companion template: the placeholder becomes label and the
// table lists people by number and name.
func (r *run) sheet(s Sheet, label string, people []roster.PersonRecord) (*document.Document, error) {
	path := r.cfg.TemplatePath(s.Template)
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	if s.Placeholder != "" && docx.ReplaceText(doc, docx.Replacement{Old: s.Placeholder, New: label, Highlight: label}) == 0 {
		r.log.Warn("label placeholder not found", zap.String("template", path))
	}
	rows := make([][]string, len(people))
	for i, p := range people {
		rows[i] = []string{fmt.Sprintf("%d.", i+1), p.FullName}
	}
	if err := fillTable(doc, s.Table, s.TemplateRow, rows, s.Format); err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return doc, nil
}

func fillTable(doc *document.Document, table, templateRow int, rows [][]string, formats []docx.CellFormat) error {
	tables := doc.Tables()
	if table >= len(tables) {
		return fmt.Errorf("%w: table %d of %d", ErrTableIndex, table, len(tables))
	}
	err := docx.FillTable(tables[table], templateRow, rows, formats)
	if errors.Is(err, docx.ErrRowIndex) {
		return fmt.Errorf("%w: %w", ErrTableIndex, err)
	}
	return err
}

func (r *run) save(doc *document.Document, name string) (string, error) {
	path := filepath.Join(r.res.OutDir, name)
	if err := doc.SaveToFile(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}
