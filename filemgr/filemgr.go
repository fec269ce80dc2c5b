package filemgr

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"kitabi/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const MaxFileSize = 5 << 20 // 5MB per file

// Uploaded binaries are served back under /uploads/<name>-<rand4hex><ext>.
var allowedExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|mp4|mpeg|mov|mkv|webm|pdf)$`)

func Dir() string {
	if d := os.Getenv("UPLOAD_DIR"); d != "" {
		return d
	}
	return "./uploads"
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

func sanitizeBase(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = regexp.MustCompile(`[^\w.\-]`).ReplaceAllString(base, "_")
	if base == "" {
		base = uuid.NewString()[:8]
	}
	return base
}

// SaveUpload stores one multipart file and returns its public /uploads path.
// Rejects anything that is not an image, common video container or PDF, and
// anything over MaxFileSize.
func SaveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxFileSize {
		return "", fmt.Errorf("file too large: max %d bytes", int64(MaxFileSize))
	}
	if !allowedExt.MatchString(header.Filename) {
		ext := filepath.Ext(header.Filename)
		return "", fmt.Errorf("unsupported file type %s. Only images, videos and PDFs are allowed", ext)
	}

	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%s-%s%s", sanitizeBase(header.Filename), utils.RandomHex(4), ext)
	dst := filepath.Join(Dir(), filename)

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}

	if isImage(filename) {
		go writeThumbnail(dst)
	}

	return "/uploads/" + filename, nil
}

// writeThumbnail renders a 320px-wide thumbnail next to the original as
// <name>.thumb.jpg. Failures are non-fatal: the original already saved.
func writeThumbnail(path string) {
	img, err := imaging.Open(path)
	if err != nil {
		return
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	_ = imaging.Save(thumb, path+".thumb.jpg")
}

// FromForm pulls the named file out of a parsed request, saves it and
// returns its public path. Empty path when the field is absent.
func FromForm(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	defer file.Close()
	return SaveUpload(file, header)
}
