package appfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/steveyegge/appmgr/internal/types"
)

// resolutionField is the resolution written for app; states without a
// projection are written empty.
func resolutionField(app *types.Application) string {
	res := app.Resolution()
	if res == types.NoResolutionLabel {
		return ""
	}
	return res
}

// Fields returns the seven data-line fields for app.
func Fields(app *types.Application) []string {
	return []string{
		strconv.Itoa(app.ID()),
		app.StateName(),
		string(app.Type()),
		app.Summary(),
		app.Reviewer(),
		strconv.FormatBool(app.PaperworkProcessed()),
		resolutionField(app),
	}
}

// Write serializes apps to w in the order given.
func Write(w io.Writer, apps []*types.Application) error {
	bw := bufio.NewWriter(w)
	for _, app := range apps {
		if err := writeRecord(bw, app); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, app *types.Application) error {
	var line bytes.Buffer
	cw := csv.NewWriter(&line)
	if err := cw.Write(Fields(app)); err != nil {
		return fmt.Errorf("application %d: %w", app.ID(), err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("application %d: %w", app.ID(), err)
	}

	if _, err := fmt.Fprintf(w, "%s %d\n", headerPrefix, app.ID()); err != nil {
		return err
	}
	if _, err := w.Write(line.Bytes()); err != nil {
		return err
	}
	for _, note := range app.Notes() {
		if _, err := w.WriteString(notePrefix + note + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes apps to path atomically: the data goes to a temp file in
// the same directory which is then renamed over path.
func WriteFile(path string, apps []*types.Application) (retErr error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, apps); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	return nil
}
