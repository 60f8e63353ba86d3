// Package clob implements the clob subcommand: upload, download, update,
// delete and list text objects held by the data service.
package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "commands.clob"

// Runner executes clob operations against one session.
type Runner struct {
	session *client.Session
}

// NewRunner creates a clob Runner.
func NewRunner(session *client.Session) *Runner {
	return &Runner{session: session}
}

// UploadParams describe one clob upload or update.
type UploadParams struct {
	InputFile   string
	ClobID      string
	Description string
	Overwrite   bool
	DryRun      bool
}

// Upload reads InputFile as text and stores it under ClobID.
func (r *Runner) Upload(ctx context.Context, params UploadParams) error {
	data, err := os.ReadFile(params.InputFile)
	if err != nil {
		return exception.New(exception.KindClient, moduleName, "failed to read file "+params.InputFile, err)
	}
	logger.Infof("read file %s (%d bytes)", params.InputFile, len(data))

	clob := client.Clob{
		OfficeID:    r.session.Office(),
		ID:          strings.ToUpper(params.ClobID),
		Description: params.Description,
		Value:       string(data),
	}

	if params.DryRun {
		preview := clob
		preview.Value = fmt.Sprintf("<%d chars>", len(clob.Value))
		payload, _ := json.MarshalIndent(preview, "", "  ")
		logger.Infof("[dry-run] would store clob %s (fail-if-exists=%t):\n%s",
			clob.ID, !params.Overwrite, payload)
		return nil
	}

	if err := r.session.StoreClob(ctx, clob, !params.Overwrite); err != nil {
		return err
	}
	logger.Infof("uploaded clob %s", clob.ID)
	// IDs containing a slash cannot appear in the URL path.
	if strings.ContainsAny(clob.ID, "/?#") {
		logger.Infof("view: %s", r.session.ViewURL("clobs/ignored",
			url.Values{"clob-id": {clob.ID}, "office": {clob.OfficeID}}))
	} else {
		logger.Infof("view: %s", r.session.ViewURL("clobs/"+clob.ID,
			url.Values{"office": {clob.OfficeID}}))
	}
	return nil
}

// Update patches the value of an existing clob from InputFile.
func (r *Runner) Update(ctx context.Context, params UploadParams) error {
	data, err := os.ReadFile(params.InputFile)
	if err != nil {
		return exception.New(exception.KindClient, moduleName, "failed to read file "+params.InputFile, err)
	}

	clob := client.Clob{
		OfficeID:    r.session.Office(),
		ID:          strings.ToUpper(params.ClobID),
		Description: params.Description,
		Value:       string(data),
	}
	if params.DryRun {
		logger.Infof("[dry-run] would update clob %s with %d chars", clob.ID, len(clob.Value))
		return nil
	}
	if err := r.session.UpdateClob(ctx, clob, true); err != nil {
		return err
	}
	logger.Infof("updated clob %s", clob.ID)
	return nil
}

// Download fetches a clob's text and writes it to dest, defaulting to the
// clob ID with a .txt extension.
func (r *Runner) Download(ctx context.Context, clobID, dest string) (string, error) {
	id := strings.ToUpper(clobID)
	fetched, err := r.session.GetClob(ctx, r.session.Office(), id)
	if err != nil {
		return "", err
	}
	logger.Infof("retrieved clob %s", id)
	value := fetched.Value

	if dest == "" {
		dest = strings.ReplaceAll(id, "/", "_") + ".txt"
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", exception.New(exception.KindClient, moduleName, "failed to create destination directory", err)
		}
	}
	if err := os.WriteFile(dest, []byte(value), 0o644); err != nil {
		return "", exception.New(exception.KindClient, moduleName, "failed to save clob "+id, err)
	}
	logger.Infof("downloaded clob to %s", dest)
	return dest, nil
}

// Delete removes a clob.
func (r *Runner) Delete(ctx context.Context, clobID string, dryRun bool) error {
	id := strings.ToUpper(clobID)
	if dryRun {
		logger.Infof("[dry-run] would delete clob %s", id)
		return nil
	}
	if err := r.session.DeleteClob(ctx, r.session.Office(), id); err != nil {
		return err
	}
	logger.Infof("deleted clob %s", id)
	return nil
}

// List logs the clobs matching idLike, sorted by ID, at most limit entries
// when limit is positive.
func (r *Runner) List(ctx context.Context, idLike string, limit int) ([]client.Clob, error) {
	logger.Infof("listing clobs for office %s", r.session.Office())
	clobs, err := r.session.GetClobs(ctx, r.session.Office(), idLike)
	if err != nil {
		return nil, err
	}

	sort.Slice(clobs, func(i, j int) bool { return clobs[i].ID < clobs[j].ID })
	if limit > 0 && len(clobs) > limit {
		clobs = clobs[:limit]
	}

	logger.Infof("found %d clob(s)", len(clobs))
	for _, c := range clobs {
		logger.Infof("clob ID: %s, description: %s", c.ID, c.Description)
	}
	return clobs, nil
}
