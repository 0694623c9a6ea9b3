// Package appfile reads and writes the line-oriented application file.
//
// Each record looks like:
//
//	* 3
//	3,Interview,New,Backend engineer,jdoe,false,
//	- [Review] Applied via site
//	- [Interview] [Accepted] Phone screen booked
//
// The second line holds exactly seven comma-separated fields: id, state,
// applicant type, summary, reviewer, paperwork-processed flag and
// resolution. It is read as a CSV record, so a summary containing a comma
// is written quoted. Every following "- " line is one note.
package appfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/steveyegge/appmgr/internal/types"
)

// FieldCount is the number of fields on a record's data line.
const FieldCount = 7

const (
	headerPrefix = "*"
	notePrefix   = "- "
)

// ErrMalformed marks a record that does not follow the file format.
var ErrMalformed = errors.New("malformed application record")

// LoadError reports why a batch load failed. Line is 0 when the failure is
// not tied to a line (e.g. the file could not be opened).
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	where := e.Path
	if where == "" {
		where = "input"
	}
	if e.Line > 0 {
		return fmt.Sprintf("unable to load %s: line %d: %v", where, e.Line, e.Err)
	}
	return fmt.Sprintf("unable to load %s: %v", where, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func malformed(line int, format string, args ...any) error {
	return &LoadError{Line: line, Err: fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))}
}

// record accumulates one application while scanning.
type record struct {
	headerLine int
	headerID   int
	fields     []string
	fieldsLine int
	notes      []string
}

func (r *record) build() (*types.Application, error) {
	if r.fields == nil {
		return nil, malformed(r.headerLine, "record %d has no field line", r.headerID)
	}
	f := r.fields
	id, err := strconv.Atoi(strings.TrimSpace(f[0]))
	if err != nil {
		return nil, malformed(r.fieldsLine, "invalid id %q", f[0])
	}
	if id != r.headerID {
		return nil, malformed(r.fieldsLine, "id %d does not match header id %d", id, r.headerID)
	}
	processed, err := strconv.ParseBool(strings.TrimSpace(f[5]))
	if err != nil {
		return nil, malformed(r.fieldsLine, "invalid paperwork flag %q", f[5])
	}
	// Summary and reviewer are free text; the CSV quoting already delimits them.
	app, err := types.Rehydrate(id,
		strings.TrimSpace(f[1]),
		strings.TrimSpace(f[2]),
		f[3],
		f[4],
		processed,
		strings.TrimSpace(f[6]),
		r.notes,
	)
	if err != nil {
		return nil, &LoadError{Line: r.fieldsLine, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	return app, nil
}

// Read parses every record from r. Any malformed record fails the whole
// batch and no applications are returned.
func Read(r io.Reader) ([]*types.Application, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var (
		apps    []*types.Application
		current *record
		lineNum int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		app, err := current.build()
		if err != nil {
			return err
		}
		apps = append(apps, app)
		current = nil
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, headerPrefix):
			if err := flush(); err != nil {
				return nil, err
			}
			raw := strings.TrimSpace(strings.TrimPrefix(line, headerPrefix))
			id, err := strconv.Atoi(raw)
			if err != nil {
				return nil, malformed(lineNum, "invalid header %q", line)
			}
			if id < 1 {
				return nil, malformed(lineNum, "id must be positive (got %d)", id)
			}
			current = &record{headerLine: lineNum, headerID: id}

		case current == nil:
			return nil, malformed(lineNum, "data before first record header")

		case current.fields == nil:
			fields, err := parseFields(line)
			if err != nil {
				return nil, malformed(lineNum, "%v", err)
			}
			if len(fields) != FieldCount {
				return nil, malformed(lineNum, "expected %d fields, got %d", FieldCount, len(fields))
			}
			current.fields = fields
			current.fieldsLine = lineNum

		case strings.HasPrefix(line, notePrefix):
			current.notes = append(current.notes, strings.TrimPrefix(line, notePrefix))

		case line == strings.TrimSpace(notePrefix):
			return nil, malformed(lineNum, "empty note")

		default:
			return nil, malformed(lineNum, "unexpected line %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Line: lineNum, Err: err}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return apps, nil
}

func parseFields(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.Read()
}

// ReadFile loads every application from path.
func ReadFile(path string) ([]*types.Application, error) {
	// #nosec G304 -- path is the configured data file
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	apps, err := Read(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return apps, nil
}
