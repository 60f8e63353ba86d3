// Package blob implements the blob subcommand: upload, download and list
// binary objects held by the data service. Blob IDs are upper-cased on the
// way in because the service treats them case-insensitively but stores them
// upper.
package blob

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "commands.blob"

// dataURLRE splits a data URL into its media type and base64 payload.
var dataURLRE = regexp.MustCompile(`(?is)^data:([^;]+);base64,(.+)$`)

// Runner executes blob operations against one session.
type Runner struct {
	session *client.Session
}

// NewRunner creates a blob Runner.
func NewRunner(session *client.Session) *Runner {
	return &Runner{session: session}
}

// UploadParams describe one blob upload.
type UploadParams struct {
	InputFile   string
	BlobID      string
	Description string
	// MediaType overrides the type guessed from the file extension.
	MediaType string
	// Overwrite stores over an existing blob instead of failing.
	Overwrite bool
	DryRun    bool
}

// Upload reads InputFile and stores it as a base64 blob. In dry-run mode the
// payload is logged with the value elided and nothing is sent.
func (r *Runner) Upload(ctx context.Context, params UploadParams) error {
	data, err := os.ReadFile(params.InputFile)
	if err != nil {
		return exception.New(exception.KindClient, moduleName, "failed to read file "+params.InputFile, err)
	}
	logger.Infof("read file %s (%d bytes)", params.InputFile, len(data))

	mediaType := params.MediaType
	if mediaType == "" {
		mediaType = guessMediaType(params.InputFile)
	}

	blob := client.Blob{
		OfficeID:    r.session.Office(),
		ID:          strings.ToUpper(params.BlobID),
		Description: params.Description,
		MediaTypeID: mediaType,
		Value:       base64.StdEncoding.EncodeToString(data),
	}

	if params.DryRun {
		preview := blob
		preview.Value = fmt.Sprintf("<base64:%d chars>", len(blob.Value))
		payload, _ := json.MarshalIndent(preview, "", "  ")
		logger.Infof("[dry-run] would store blob %s (fail-if-exists=%t):\n%s",
			blob.ID, !params.Overwrite, payload)
		return nil
	}

	if err := r.session.StoreBlob(ctx, blob, !params.Overwrite); err != nil {
		return err
	}
	logger.Infof("stored blob %s", blob.ID)
	logger.Infof("view: %s", r.session.ViewURL("blobs/"+blob.ID, url.Values{"office": {blob.OfficeID}}))
	return nil
}

// Download fetches a blob and writes its decoded bytes next to the current
// directory. dest defaults to the blob ID; a missing extension is guessed
// from the media type when one is known.
func (r *Runner) Download(ctx context.Context, blobID, dest string) (string, error) {
	id := strings.ToUpper(blobID)
	value, err := r.session.GetBlob(ctx, r.session.Office(), id)
	if err != nil {
		return "", err
	}
	logger.Infof("retrieved blob %s", id)

	if dest == "" {
		dest = id
	}
	path, err := saveBase64(value, dest, "")
	if err != nil {
		return "", exception.New(exception.KindClient, moduleName, "failed to save blob "+id, err)
	}
	logger.Infof("downloaded blob to %s", path)
	return path, nil
}

// List logs the blobs matching idLike, sorted by ID, at most limit entries
// when limit is positive. The matched blobs are returned for callers that
// want more than the log output.
func (r *Runner) List(ctx context.Context, idLike string, limit int) ([]client.Blob, error) {
	logger.Infof("listing blobs for office %s", r.session.Office())
	blobs, err := r.session.GetBlobs(ctx, r.session.Office(), idLike)
	if err != nil {
		return nil, err
	}

	sort.Slice(blobs, func(i, j int) bool { return blobs[i].ID < blobs[j].ID })
	if limit > 0 && len(blobs) > limit {
		blobs = blobs[:limit]
	}

	logger.Infof("found %d blob(s)", len(blobs))
	for _, b := range blobs {
		logger.Infof("blob ID: %s, description: %s", b.ID, b.Description)
	}
	return blobs, nil
}

// guessMediaType maps a file name to a MIME type, defaulting to a generic
// byte stream.
func guessMediaType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		// TypeByExtension may append a charset parameter.
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return "application/octet-stream"
}

// saveBase64 decodes a base64 or data-URL payload to dest. When dest has no
// extension one is derived from the media type, falling back to .bin.
func saveBase64(payload, dest, mediaTypeHint string) (string, error) {
	mediaType := mediaTypeHint
	b64 := payload
	if m := dataURLRE.FindStringSubmatch(strings.TrimSpace(payload)); m != nil {
		mediaType = m[1]
		b64 = m[2]
	}

	compact := strings.Join(strings.Fields(b64), "")
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		// Tolerate stripped padding.
		if pad := len(compact) % 4; pad != 0 {
			data, err = base64.StdEncoding.DecodeString(compact + strings.Repeat("=", 4-pad))
		}
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(compact)
		}
		if err != nil {
			return "", err
		}
	}

	if filepath.Ext(dest) == "" {
		ext := extensionFor(mediaType)
		dest += ext
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

func extensionFor(mediaType string) string {
	if mediaType == "" {
		return ".bin"
	}
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	exts, err := mime.ExtensionsByType(strings.ToLower(mediaType))
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	// Prefer the common jpg spelling.
	for _, e := range exts {
		if e == ".jpg" {
			return e
		}
	}
	return exts[0]
}
