package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/ukaji3/attendance-mailer/pkg/attendance/models"
)

// SubjectFormat is the mail subject; the verb receives the student name.
const SubjectFormat = "Attendance Report for %s"

//go:embed templates/report.html
var reportTemplateRaw string

// Field values are escaped by html/template.
var reportTemplate = template.Must(template.New("report").Parse(reportTemplateRaw))

// Course holds the fixed text of the report.
type Course struct {
	Name         string
	Provider     string
	Program      string
	SupportEmail string
}

// DefaultCourse returns the course the mailer was written for.
func DefaultCourse() Course {
	return Course{
		Name:         "Java FSD Class",
		Provider:     "42 Learn",
		Program:      "PACE",
		SupportEmail: "hello@join42.com",
	}
}

// Renderer builds reports for one session schema and course.
type Renderer struct {
	schema models.SessionSchema
	course Course
}

// NewRenderer creates a Renderer.
func NewRenderer(schema models.SessionSchema, course Course) (*Renderer, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{schema: schema, course: course}, nil
}

type reportView struct {
	Identity models.Identity
	Sessions []models.SessionDuration
	Total    string
	Course   Course
}

// Build aggregates and renders the report for one record. It fails with
// models.ErrMissingField or ErrMalformedSession before anything is rendered.
func (r *Renderer) Build(rec models.StudentRecord) (*models.Report, error) {
	id, err := rec.Identity()
	if err != nil {
		return nil, err
	}
	sessions, err := Sessions(rec, r.schema)
	if err != nil {
		return nil, err
	}

	total := sum(sessions)
	view := reportView{
		Identity: id,
		Sessions: sessions,
		Total:    FormatTotal(total),
		Course:   r.course,
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render report for row %d: %w", rec.Row, err)
	}

	return &models.Report{
		Row:          rec.Row,
		Identity:     id,
		Sessions:     sessions,
		TotalMinutes: total,
		Total:        view.Total,
		Subject:      fmt.Sprintf(SubjectFormat, id.Name),
		HTML:         buf.String(),
	}, nil
}
