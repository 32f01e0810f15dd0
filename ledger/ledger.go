package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Noah-Huppert/golog"
)

// recordFieldCount is the number of comma separated fields in one durable
// ledger line: name,size,updated,timestamp,status
const recordFieldCount = 5

// Record is the latest known state of one submission, identified by its
// project and file name. Exactly one record exists per (project, filename).
type Record struct {
	// Name is the submission file name
	Name string

	// SizeMB is the submission size in megabytes with 4 fraction digits,
	// kept in string form so flush then load round-trips byte identical
	SizeMB string

	// Updated is when the status last changed
	Updated time.Time

	// Submitted is the submission file's modification time. Only a
	// strictly newer modification time makes the same file name a new
	// submission event.
	Submitted time.Time

	// Status is the submission's lifecycle state
	Status Status
}

// Ledger durably maps submission file names to their latest status, one CSV
// file per project. The ledger exclusively owns record storage, every
// mutation is pushed to the publisher hook so the status pages never lag
// behind the recorded state.
type Ledger struct {
	// dir is the directory ledger files live in
	dir string

	// username prefixes ledger file names so one directory can serve
	// several monitored accounts
	username string

	logger golog.Logger

	// publish is invoked after every mutation, nil disables publishing
	publish func()

	// records maps project name -> file name -> record
	records map[string]map[string]Record
}

// New creates an empty Ledger storing its files under dir
func New(logger golog.Logger, dir, username string) *Ledger {
	return &Ledger{
		dir:      dir,
		username: username,
		logger:   logger,
		records:  map[string]map[string]Record{},
	}
}

// SetPublisher registers the hook invoked after every mutation
func (l *Ledger) SetPublisher(publish func()) {
	l.publish = publish
}

// filePath returns the durable file path for a project's records
func (l *Ledger) filePath(project string) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s.%s", l.username, project))
}

// Load replaces the in-memory state for a project from its durable file. A
// missing file loads as empty. Malformed rows are skipped with a warning.
func (l *Ledger) Load(project string) error {
	l.records[project] = map[string]Record{}

	path := l.filePath(project)
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read ledger file %s: %s", path, err.Error())
	}

	for _, line := range strings.Split(string(contents), "\n") {
		if line == "" {
			continue
		}

		record, err := parseRecord(line)
		if err != nil {
			l.logger.Errorf("skipping malformed record in %s: %s", path, err.Error())
			continue
		}

		l.records[project][record.Name] = record
	}

	if l.publish != nil {
		l.publish()
	}

	return nil
}

// Get returns the record for a submission file, false if the file has never
// been recorded for the project
func (l *Ledger) Get(project, name string) (Record, bool) {
	record, ok := l.records[project][name]
	return record, ok
}

// Upsert records a submission's status. Updated is set to the current time
// and the size representation is recomputed, then the publisher hook runs.
func (l *Ledger) Upsert(project, name string, status Status, size int64, mtime time.Time) {
	if _, ok := l.records[project]; !ok {
		l.records[project] = map[string]Record{}
	}

	l.records[project][name] = Record{
		Name:      name,
		SizeMB:    fmt.Sprintf("%.4f", float64(size)/1e6),
		Updated:   time.Now().Truncate(time.Second),
		Submitted: mtime.Truncate(time.Second),
		Status:    status,
	}

	if l.publish != nil {
		l.publish()
	}
}

// Records returns a project's records sorted by file name
func (l *Ledger) Records(project string) []Record {
	records := []Record{}
	for _, record := range l.records[project] {
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	return records
}

// Flush serializes a project's records to its durable file, one record per
// line in stable field order. The file is written to a temporary path and
// renamed into place so a crash mid-write cannot corrupt the previous state.
func (l *Ledger) Flush(project string) error {
	lines := strings.Builder{}
	for _, record := range l.Records(project) {
		lines.WriteString(formatRecord(record))
		lines.WriteString("\n")
	}

	path := l.filePath(project)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, []byte(lines.String()), 0644); err != nil {
		return fmt.Errorf("failed to write ledger file %s: %s", tmpPath, err.Error())
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace ledger file %s: %s", path, err.Error())
	}

	return nil
}

// formatRecord serializes one record in the durable field order. Fields must
// not contain commas, the format has no escaping.
func formatRecord(record Record) string {
	return strings.Join([]string{
		record.Name,
		record.SizeMB,
		strconv.FormatInt(record.Updated.Unix(), 10),
		strconv.FormatInt(record.Submitted.Unix(), 10),
		string(record.Status),
	}, ",")
}

// parseRecord parses one durable ledger line
func parseRecord(line string) (Record, error) {
	fields := strings.Split(line, ",")
	if len(fields) != recordFieldCount {
		return Record{}, fmt.Errorf("expected %d fields, found %d: %s",
			recordFieldCount, len(fields), line)
	}

	updated, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid updated timestamp %s: %s",
			fields[2], err.Error())
	}

	submitted, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid submission timestamp %s: %s",
			fields[3], err.Error())
	}

	return Record{
		Name:      fields[0],
		SizeMB:    fields[1],
		Updated:   time.Unix(updated, 0),
		Submitted: time.Unix(submitted, 0),
		Status:    Status(fields[4]),
	}, nil
}
