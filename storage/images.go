package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ImageStore persists uploaded images in a single directory and serves them
// back by filename under a fixed URL mount.
type ImageStore struct {
	Dir   string // filesystem directory holding the images
	Mount string // URL path prefix the directory is served under, e.g. "/eventimages"
}

// NewImageStore ensures dir exists and returns a store for it.
func NewImageStore(dir, mount string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", dir, err)
	}
	return &ImageStore{Dir: dir, Mount: mount}, nil
}

// Save writes src to the store under filename, replacing any existing file.
func (s *ImageStore) Save(filename string, src io.Reader) error {
	dst, err := os.Create(filepath.Join(s.Dir, filepath.Base(filename)))
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return nil
}

// Remove deletes the file a stored URL points at. Errors are logged and
// swallowed: cleanup is never critical to the surrounding request.
func (s *ImageStore) Remove(url string) {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return
	}

	full := filepath.Join(s.Dir, name)
	if err := os.Remove(full); err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("file", full).Msg("failed to delete image")
		}
		return
	}
	log.Info().Str("file", full).Msg("deleted image")
}

// URL returns the public URL for a stored filename given the request's
// scheme://host base.
func (s *ImageStore) URL(base, filename string) string {
	return base + s.Mount + "/" + filepath.Base(filename)
}

// DiffImages splits an updated image-URL list against the existing one:
// kept are present in both, added only in next, removed only in prev.
func DiffImages(prev, next []string) (kept, added, removed []string) {
	prevSet := make(map[string]bool, len(prev))
	for _, img := range prev {
		prevSet[img] = true
	}
	nextSet := make(map[string]bool, len(next))
	for _, img := range next {
		nextSet[img] = true
	}

	for _, img := range next {
		if prevSet[img] {
			kept = append(kept, img)
		} else {
			added = append(added, img)
		}
	}
	for _, img := range prev {
		if !nextSet[img] {
			removed = append(removed, img)
		}
	}
	return kept, added, removed
}

// Reconcile deletes every file in prev that no longer appears in next and
// returns the merged list (kept then added) that should be stored.
func (s *ImageStore) Reconcile(prev, next []string) []string {
	kept, added, removed := DiffImages(prev, next)
	for _, url := range removed {
		s.Remove(url)
	}
	merged := make([]string, 0, len(kept)+len(added))
	merged = append(merged, kept...)
	merged = append(merged, added...)
	return merged
}
