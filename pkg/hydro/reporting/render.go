package reporting

import (
	"embed"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

//go:embed templates/report.gohtml
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.gohtml"))

// Render writes the HTML report for a built table.
func Render(w io.Writer, table *Table) error {
	if err := reportTemplate.Execute(w, table); err != nil {
		return exception.New(exception.KindBuilder, moduleName, "failed to render report", err)
	}
	return nil
}

// WriteFile renders the report to a file, creating parent directories.
func WriteFile(path string, table *Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exception.New(exception.KindBuilder, moduleName, "failed to create report directory "+dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return exception.New(exception.KindBuilder, moduleName, "failed to create report file "+path, err)
	}
	defer f.Close()
	if err := Render(f, table); err != nil {
		return err
	}
	logger.Infof("wrote report %s (%d rows)", path, len(table.Rows))
	return nil
}
