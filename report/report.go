package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/kartikmohta/submit-system/ledger"

	"github.com/Noah-Huppert/golog"
)

// Version is shown in the status page banner
const Version = "0.8"

// indexTmpl renders the overview page listing every project with its
// aggregate status counts
var indexTmpl = template.Must(template.New("index").Parse(`{{.Header}}
<h1>Submission monitor: {{.Username}}</h1>
<h4>Updated: {{.Updated}}, version {{.Version}}</h4>
<h2>Project Overviews</h2>
<table>
<tr>
  <th>Project</th>
  <th>Submissions</th>
  <th>Queued</th>
  <th>Completed</th>
  <th>Running</th>
  <th>Failed</th>
</tr>
{{range .Projects}}<tr>
  <td><a href="{{.Name}}.html">{{.Name}}</a></td>
  <td>{{.Submissions}}</td>
  <td>{{.Queued}}</td>
  <td>{{.Completed}}</td>
  <td>{{.Running}}</td>
  <td>{{.Failed}}</td>
</tr>
{{end}}</table>
{{.Footer}}
`))

// projectTmpl renders one project's detail page listing every submission
var projectTmpl = template.Must(template.New("project").Parse(`{{.Header}}
<h1>Submission monitor: {{.Username}}</h1>
<h4>Updated: {{.Updated}}, version {{.Version}}</h4>
<p><a href='index.html'>Back to Overview</a></p>
<h2>Project Submissions: {{.Name}}</h2>
<table>
<tr>
  <th>Name</th>
  <th>Size</th>
  <th>Time Submitted</th>
  <th>Status</th>
</tr>
{{range .Rows}}<tr>
  <td>{{.Name}}</td>
  <td>{{.SizeMB}} MB</td>
  <td>{{.Submitted}}</td>
  <td>{{.Status}} ({{.Updated}})</td>
</tr>
{{end}}</table>
{{.Footer}}
`))

// projectSummary holds one project's aggregate counts on the overview page
type projectSummary struct {
	Name        string
	Submissions int
	Queued      int
	Completed   int
	Running     int

	// Failed merges failed(*), killed and file_too_large
	Failed int
}

// submissionRow holds one rendered line of a project detail page
type submissionRow struct {
	Name      string
	SizeMB    string
	Submitted string
	Status    ledger.Status
	Updated   string
}

// Reporter renders ledger state into the HTML status pages. Rendering reads
// the ledger but never mutates it, re-rendering identical state produces
// identical pages apart from the Updated banner.
type Reporter struct {
	// Logger logs publish failures, publishing is best effort
	Logger golog.Logger

	// Username is shown in the page banner
	Username string

	// WebsitePath is the directory pages are written into
	WebsitePath string

	// HeaderPath and FooterPath name HTML fragments wrapped around every
	// page
	HeaderPath string
	FooterPath string

	// ProjectNames fixes the order projects appear on the overview page
	ProjectNames []string

	// Ledger is the state being rendered
	Ledger *ledger.Ledger
}

// Publish rewrites the overview page and every project detail page from the
// current ledger state. Errors are logged, a failed page write must never
// abort submission processing.
func (r *Reporter) Publish() {
	if err := r.publish(); err != nil {
		r.Logger.Errorf("failed to publish status pages: %s", err.Error())
	}
}

func (r *Reporter) publish() error {
	header, err := os.ReadFile(r.HeaderPath)
	if err != nil {
		return fmt.Errorf("failed to read header fragment: %s", err.Error())
	}

	footer, err := os.ReadFile(r.FooterPath)
	if err != nil {
		return fmt.Errorf("failed to read footer fragment: %s", err.Error())
	}

	updated := time.Now().Format(time.RFC1123)

	summaries := []projectSummary{}
	for _, name := range r.ProjectNames {
		records := r.Ledger.Records(name)

		summary := projectSummary{
			Name:        name,
			Submissions: len(records),
		}
		for _, record := range records {
			switch {
			case record.Status == ledger.StatusQueued:
				summary.Queued++
			case record.Status == ledger.StatusCompleted:
				summary.Completed++
			case record.Status == ledger.StatusRunning:
				summary.Running++
			case record.Status.IsFailure():
				summary.Failed++
			}
		}
		summaries = append(summaries, summary)

		rows := []submissionRow{}
		for _, record := range records {
			rows = append(rows, submissionRow{
				Name:      record.Name,
				SizeMB:    record.SizeMB,
				Submitted: record.Submitted.Format(time.RFC1123),
				Status:    record.Status,
				Updated:   record.Updated.Format(time.RFC1123),
			})
		}

		err = r.writePage(fmt.Sprintf("%s.html", name), projectTmpl, map[string]interface{}{
			"Header":   template.HTML(header),
			"Footer":   template.HTML(footer),
			"Username": r.Username,
			"Updated":  updated,
			"Version":  Version,
			"Name":     name,
			"Rows":     rows,
		})
		if err != nil {
			return err
		}
	}

	return r.writePage("index.html", indexTmpl, map[string]interface{}{
		"Header":   template.HTML(header),
		"Footer":   template.HTML(footer),
		"Username": r.Username,
		"Updated":  updated,
		"Version":  Version,
		"Projects": summaries,
	})
}

// writePage renders one template into the webroot
func (r *Reporter) writePage(name string, tmpl *template.Template, data interface{}) error {
	path := filepath.Join(r.WebsitePath, name)

	pageFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create page %s: %s", path, err.Error())
	}
	defer pageFile.Close()

	if err := tmpl.Execute(pageFile, data); err != nil {
		return fmt.Errorf("failed to render page %s: %s", path, err.Error())
	}

	return nil
}
