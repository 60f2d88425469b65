// Package devseed loads catalog seed files (questions, assessments and jobs) and writes them through the catalog service.
package devseed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/target/hiring-pipeline/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed dev_catalog.yaml
var devCatalog []byte

// Catalog is the seed document.
type Catalog struct {
	Questions   []model.Question   `yaml:"questions"`
	Assessments []model.Assessment `yaml:"assessments"`
	Jobs        []JobDoc           `yaml:"jobs"`
}

// JobDoc is a job as written in a seed file. Rounds are listed in pipeline order.
type JobDoc struct {
	ID        string            `yaml:"id"`
	CompanyID string            `yaml:"company_id"`
	Title     string            `yaml:"title"`
	Rounds    []model.RoundSpec `yaml:"rounds"`
}

// Job converts the document into a validated job.
func (d JobDoc) Job() (*model.Job, error) {
	rounds, err := model.CatalogFromSpecs(d.Rounds)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", d.ID, err)
	}
	job := &model.Job{ID: d.ID, CompanyID: d.CompanyID, Title: d.Title, Rounds: rounds}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("job %s: %w", d.ID, err)
	}
	return job, nil
}

// Load decodes a seed document. Unknown keys are rejected so typos surface early.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// LoadFile reads a seed document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in development catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(devCatalog))
}

// Writer is the subset of service.CatalogService used to apply a catalog.
type Writer interface {
	PutQuestion(ctx context.Context, q *model.Question) (*model.Question, error)
	PutAssessment(ctx context.Context, a *model.Assessment) (*model.Assessment, error)
	PutJob(ctx context.Context, job *model.Job) (*model.Job, error)
}

// Summary counts what Apply wrote.
type Summary struct {
	Questions   int
	Assessments int
	Jobs        int
	Failures    int
}

// Apply writes questions, then assessments, then jobs, so that references resolve in order.
// Individual failures are logged and counted; the returned error reports how many there were.
func Apply(ctx context.Context, w Writer, c *Catalog, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var s Summary

	for i := range c.Questions {
		q := c.Questions[i]
		if _, err := w.PutQuestion(ctx, &q); err != nil {
			logger.ErrorContext(ctx, "failed to seed question", "id", q.ID, "error", err)
			s.Failures++
			continue
		}
		s.Questions++
	}

	for i := range c.Assessments {
		a := c.Assessments[i]
		if _, err := w.PutAssessment(ctx, &a); err != nil {
			logger.ErrorContext(ctx, "failed to seed assessment", "id", a.ID, "error", err)
			s.Failures++
			continue
		}
		s.Assessments++
	}

	for _, doc := range c.Jobs {
		job, err := doc.Job()
		if err == nil {
			_, err = w.PutJob(ctx, job)
		}
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed job", "id", doc.ID, "error", err)
			s.Failures++
			continue
		}
		s.Jobs++
	}

	logger.InfoContext(ctx, "catalog seeded",
		"questions", s.Questions,
		"assessments", s.Assessments,
		"jobs", s.Jobs,
		"failures", s.Failures,
	)
	if s.Failures > 0 {
		return s, fmt.Errorf("%d seed errors; check logs", s.Failures)
	}
	return s, nil
}
