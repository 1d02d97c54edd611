package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var captureExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// SpoolCapturer picks up image files an external screenshot tool drops
// into a directory.
type SpoolCapturer struct {
	dir string
}

func NewSpoolCapturer(dir string) *SpoolCapturer {
	return &SpoolCapturer{dir: dir}
}

func (s *SpoolCapturer) Pending(ctx context.Context) ([]Capture, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Capture
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.Type().IsRegular() || !captureExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Capture{Name: e.Name(), Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *SpoolCapturer) Done(_ context.Context, c Capture) error {
	err := os.Remove(filepath.Join(s.dir, c.Name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
