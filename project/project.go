package project

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/daveroberts0321/politecode/parser/grammar"
	"github.com/daveroberts0321/politecode/report"
	"github.com/daveroberts0321/politecode/watch"
)

//go:embed templates/*
var templates embed.FS

// starterPrograms are copied into the source directory of a new project.
var starterPrograms = []string{"hello", "greeting"}

// Init creates a new PoliteCode project with scaffolding
func Init(name string) error {
	if err := os.MkdirAll(name, 0755); err != nil {
		return errors.Wrap(err, "failed to create project directory")
	}

	cfg := DefaultConfig(filepath.Base(name))
	dirs := []string{
		filepath.Join(name, cfg.SourceDirs[0]),
		filepath.Join(name, cfg.OutputDir, "cs"),
		filepath.Join(name, cfg.OutputDir, "reports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	templateFiles := map[string]string{
		ConfigFile:   "templates/politecode.yaml",
		"README.md":  "templates/README.md",
		".gitignore": "templates/gitignore",
	}
	for _, prog := range starterPrograms {
		templateFiles[filepath.Join(cfg.SourceDirs[0], prog+watch.Extension)] = "templates/examples/" + prog + watch.Extension
	}

	for filePath, templatePath := range templateFiles {
		if err := writeTemplateFile(name, filePath, templatePath, cfg.Name); err != nil {
			return errors.Wrapf(err, "failed to write %s", filePath)
		}
	}
	return nil
}

func writeTemplateFile(projectDir, filePath, templatePath, projectName string) error {
	content, err := templates.ReadFile(templatePath)
	if err != nil {
		return err
	}

	contentStr := strings.ReplaceAll(string(content), "{{.ProjectName}}", projectName)
	return os.WriteFile(filepath.Join(projectDir, filePath), []byte(contentStr), 0644)
}

// Template is a bundled example program.
type Template struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`
}

// Templates lists the bundled example programs by name.
func Templates() ([]Template, error) {
	entries, err := fs.ReadDir(templates, "templates/examples")
	if err != nil {
		return nil, errors.Wrap(err, "read bundled examples")
	}
	var out []Template
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), watch.Extension) {
			continue
		}
		src, err := templates.ReadFile(path.Join("templates/examples", e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", e.Name())
		}
		out = append(out, Template{Name: strings.TrimSuffix(e.Name(), watch.Extension), Source: string(src)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LookupTemplate returns the bundled example called name.
func LookupTemplate(name string) (Template, error) {
	all, err := Templates()
	if err != nil {
		return Template{}, err
	}
	for _, t := range all {
		if t.Name == name {
			return t, nil
		}
	}
	return Template{}, errors.Errorf("no template named %q", name)
}

// Project translates the sources of one project directory.
type Project struct {
	Root    string
	Config  *Config
	log     *zap.SugaredLogger
	metrics *Metrics
}

// New returns a project rooted at root. A nil logger discards output and a
// nil metrics set is replaced by a fresh one.
func New(root string, cfg *Config, log *zap.SugaredLogger, metrics *Metrics) *Project {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Project{Root: root, Config: cfg, log: log, metrics: metrics}
}

// Metrics returns the metrics the project records into.
func (p *Project) Metrics() *Metrics { return p.metrics }

// SourceDirs returns the absolute or root-relative source directories.
func (p *Project) SourceDirs() []string {
	dirs := make([]string, len(p.Config.SourceDirs))
	for i, d := range p.Config.SourceDirs {
		dirs[i] = filepath.Join(p.Root, d)
	}
	return dirs
}

// OutputDir returns the directory generated files are written to.
func (p *Project) OutputDir() string {
	return filepath.Join(p.Root, p.Config.OutputDir)
}

// Translation is one translation run.
type Translation struct {
	ID string `json:"id" yaml:"id"`
	grammar.Result `yaml:",inline"`
	Duration time.Duration `json:"-" yaml:"-"`
}

// Translate runs a fresh parser over src, logging each diagnostic and
// recording metrics.
func (p *Project) Translate(src string, opts grammar.Options) Translation {
	id := uuid.New().String()
	log := p.log.With("translation", id)

	start := time.Now()
	res := grammar.Translate(src, opts, report.NewLogSink(log))
	took := time.Since(start)

	p.metrics.Observe(res, took)
	log.Debugw("translation finished", "ok", res.OK, "diagnostics", len(res.Diagnostics), "duration", took)
	return Translation{ID: id, Result: res, Duration: took}
}

// Report is the YAML record written for every built source file.
type Report struct {
	ID          string              `yaml:"id"`
	Source      string              `yaml:"source"`
	Fingerprint string              `yaml:"fingerprint"`
	OK          bool                `yaml:"ok"`
	Output      string              `yaml:"output,omitempty"`
	Diagnostics []report.Diagnostic `yaml:"diagnostics"`
}

// BuildFile translates one source file, writing the C# output on success and
// a report in any case.
func (p *Project) BuildFile(file string) (*Report, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}

	tr := p.Translate(string(src), p.Config.Options())
	base := strings.TrimSuffix(filepath.Base(file), watch.Extension)
	rep := &Report{
		ID:          tr.ID,
		Source:      file,
		Fingerprint: watch.Fingerprint(src),
		OK:          tr.OK,
		Diagnostics: tr.Diagnostics,
	}
	if rep.Diagnostics == nil {
		rep.Diagnostics = []report.Diagnostic{}
	}

	if tr.OK {
		out := filepath.Join(p.OutputDir(), "cs", base+".cs")
		if err := writeFile(out, []byte(tr.Code)); err != nil {
			return nil, err
		}
		rep.Output = out
	}

	data, err := yaml.Marshal(rep)
	if err != nil {
		return nil, errors.Wrap(err, "marshal report")
	}
	if err := writeFile(filepath.Join(p.OutputDir(), "reports", base+".yaml"), data); err != nil {
		return nil, err
	}
	return rep, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}

// Build translates every source file of the project. It fails when any file
// did not translate.
func (p *Project) Build() error {
	p.log.Infow("building project", "name", p.Config.Name)

	var files []string
	for _, dir := range p.SourceDirs() {
		found, err := FindSourceFiles(dir)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		p.log.Info("no source files found")
		return nil
	}

	var failed []string
	for _, file := range files {
		rep, err := p.BuildFile(file)
		if err != nil {
			return errors.Wrapf(err, "failed to build %s", file)
		}
		if !rep.OK {
			failed = append(failed, file)
			p.log.Warnw("translation failed", "file", file, "diagnostics", len(rep.Diagnostics))
			continue
		}
		p.log.Infow("translated", "file", file, "output", rep.Output)
	}

	if len(failed) > 0 {
		return errors.Errorf("%d of %d files failed to translate: %s", len(failed), len(files), strings.Join(failed, ", "))
	}
	p.log.Infow("build complete", "files", len(files))
	return nil
}

// FindSourceFiles returns every .polite file under root, skipping generated
// output. A missing root yields no files.
func FindSourceFiles(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == "generated" {
			return filepath.SkipDir
		}
		if !info.IsDir() && strings.HasSuffix(path, watch.Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	return files, nil
}

// Excerpts renders each diagnostic with the source line it points at.
func Excerpts(src string, diags []report.Diagnostic) string {
	lines := strings.Split(src, "\n")
	var trimmed []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			trimmed = append(trimmed, l)
		}
	}

	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "%s: %s\n", d.Category, d.Error())
		if ex := report.Excerpt(trimmed, d); ex != "" {
			b.WriteString(ex)
		}
	}
	return b.String()
}
