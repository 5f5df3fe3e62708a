package http

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Assets locates the static files used by the pages.
type Assets struct {
	Dir         string
	Dataset     string
	Image       string
	SuccessGif  string
	FailureGif  string
	PreviewRows int
	ChartRows   int
}

func (a Assets) path(name string) string {
	return filepath.Join(a.Dir, name)
}

// exists reports whether the named asset is present.
func (a Assets) exists(name string) bool {
	if name == "" {
		return false
	}
	info, err := os.Stat(a.path(name))
	return err == nil && !info.IsDir()
}

// dataURI inlines a gif so the result page needs no second request.
func (a Assets) dataURI(name string) (template.URL, error) {
	data, err := os.ReadFile(a.path(name))
	if err != nil {
		return "", fmt.Errorf("read asset %s: %w", name, err)
	}
	return template.URL("data:image/gif;base64," + base64.StdEncoding.EncodeToString(data)), nil
}
