// Package report persists the traversal artifact: the report document, the
// screenshots the traversal wrote, optional thumbnails and an optional
// animated trace. Everything stays on the local filesystem; upload and
// database writes live outside this tool.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/v0xg/surveywalk/internal/survey"
)

const thumbnailWidth = 320

// Envelope wraps the survey report with run metadata.
type Envelope struct {
	RunID      string               `json:"runId"`
	Tool       string               `json:"tool"`
	Version    string               `json:"version"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt time.Time            `json:"finishedAt"`
	Incomplete bool                 `json:"incomplete"`
	Error      string               `json:"error,omitempty"`
	Report     *survey.SurveyReport `json:"report"`
}

// Writer persists runs under a base directory, one subdirectory per run.
type Writer struct {
	baseDir string
	log     *zap.Logger
}

func NewWriter(baseDir string, log *zap.Logger) *Writer {
	return &Writer{baseDir: baseDir, log: log}
}

// NewRunDir creates the directory for a run and returns its path and the
// run id. Screenshots are written here by the capturer during traversal.
func (w *Writer) NewRunDir(identity survey.SurveyIdentity) (dir, runID string, err error) {
	runID = uuid.NewString()
	name := fmt.Sprintf("%s_%s_%s",
		time.Now().UTC().Format("20060102-150405"),
		sanitize(identity.PackageName),
		runID[:8])
	dir = filepath.Join(w.baseDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create run dir: %w", err)
	}
	return dir, runID, nil
}

// Persist writes the report envelope as report.json inside the run dir.
func (w *Writer) Persist(dir string, env Envelope) error {
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(dir, "report.json")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	w.log.Info("report persisted",
		zap.String("path", path),
		zap.Int("pages", len(env.Report.Pages)),
		zap.Int("questions", env.Report.QuestionCount()))
	return nil
}

// Thumbnails writes a downscaled copy next to every page screenshot, for
// quick review listings.
func (w *Writer) Thumbnails(dir string, rep *survey.SurveyReport) error {
	for _, page := range rep.Pages {
		for _, file := range []string{page.OnEntryScreenshot, page.OnExitScreenshot} {
			if file == "" {
				continue
			}
			if err := w.thumbnail(dir, file); err != nil {
				w.log.Warn("thumbnail failed", zap.String("file", file), zap.Error(err))
			}
		}
	}
	return nil
}

func (w *Writer) thumbnail(dir, file string) error {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	small := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)

	out := strings.TrimSuffix(file, ".png") + "_thumb.png"
	f, err := os.Create(filepath.Join(dir, out))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, small)
}

// sanitize keeps directory names shell-friendly.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "survey"
	}
	return b.String()
}
