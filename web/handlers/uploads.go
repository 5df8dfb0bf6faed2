package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/services"
)

var (
	allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// Uploads stores product images and staff pictures on disk
type Uploads struct {
	Dir    string
	now    func() time.Time
	suffix services.CodeGenerator
}

// NewUploads creates the upload directory if needed
func NewUploads(dir string) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploads{Dir: dir, now: time.Now, suffix: services.RandomHex}, nil
}

// StoredName turns a client file name into a safe, timestamped one. A
// random suffix keeps two uploads in the same second apart.
func (u *Uploads) StoredName(original string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("%w: invalid file type, allowed types are png, jpg, jpeg, gif", services.ErrValidation)
	}
	stem := unsafeNameChars.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	stem = strings.Trim(stem, "_")
	if stem == "" {
		stem = "upload"
	}
	suffix, err := u.suffix()
	if err != nil {
		return "", fmt.Errorf("name upload: %w", err)
	}
	return fmt.Sprintf("%s_%d_%s%s", stem, u.now().Unix(), suffix, ext), nil
}

// Save stores the file posted under field and returns its name, or ""
// when nothing was uploaded
func (u *Uploads) Save(c *fiber.Ctx, field string) (string, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return "", nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return "", fmt.Errorf("%w: unreadable upload", services.ErrValidation)
	}
	files := form.File[field]
	if len(files) == 0 || files[0].Filename == "" {
		return "", nil
	}

	name, err := u.StoredName(files[0].Filename)
	if err != nil {
		return "", err
	}
	if err := c.SaveFile(files[0], filepath.Join(u.Dir, name)); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file; missing files are ignored
func (u *Uploads) Remove(name string) error {
	if name == "" || filepath.Base(name) != name {
		return nil
	}
	err := os.Remove(filepath.Join(u.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
