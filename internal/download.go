package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const packageDir = "packages/corpora"

type ProgressWriter struct {
	Total      int64
	Written    int64
	OnProgress func(written, total int64)
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.Written += int64(n)
	if pw.OnProgress != nil {
		pw.OnProgress(pw.Written, pw.Total)
	}
	return n, nil
}

// Downloader fetches NLTK data packages into a cache filesystem.
type Downloader struct {
	fs      billy.Filesystem
	baseURL string
	token   string
	client  *http.Client
}

func NewDownloader(fs billy.Filesystem, baseURL, token string) *Downloader {
	return &Downloader{
		fs:      fs,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  http.DefaultClient,
	}
}

// WithClient replaces the HTTP client used for downloads.
func (d *Downloader) WithClient(c *http.Client) *Downloader {
	d.client = c
	return d
}

// PackagePath is the cache-relative path of a package archive.
func PackagePath(name string) string {
	return path.Join(packageDir, name+".zip")
}

// EnsurePackage makes sure the named package archive is present in the cache
// and returns its cache-relative path. An existing archive is left alone.
func (d *Downloader) EnsurePackage(ctx context.Context, name string, onProgress func(written, total int64)) (string, error) {
	dest := PackagePath(name)

	if _, err := d.fs.Stat(dest); err == nil {
		return dest, nil
	}

	if err := d.fs.MkdirAll(packageDir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	url := d.baseURL + "/" + dest
	if err := d.download(ctx, url, dest, onProgress); err != nil {
		return "", err
	}

	return dest, nil
}

// Cached reports whether the package archive is present in the cache.
func (d *Downloader) Cached(name string) bool {
	_, err := d.fs.Stat(PackagePath(name))
	return err == nil
}

// Evict removes a cached package so the next EnsurePackage fetches it again.
func (d *Downloader) Evict(name string) error {
	err := d.fs.Remove(PackagePath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("evict %s: %w", name, err)
	}
	return nil
}

func (d *Downloader) download(ctx context.Context, url, dest string, onProgress func(written, total int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s failed: status %d", url, resp.StatusCode)
	}

	tmpFile := dest + ".tmp"
	f, err := d.fs.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	pw := &ProgressWriter{
		Total:      resp.ContentLength,
		OnProgress: onProgress,
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	closeErr := f.Close()

	if err != nil {
		d.fs.Remove(tmpFile)
		return fmt.Errorf("write file: %w", err)
	}
	if closeErr != nil {
		d.fs.Remove(tmpFile)
		return fmt.Errorf("close file: %w", closeErr)
	}

	if err := d.fs.Rename(tmpFile, dest); err != nil {
		d.fs.Remove(tmpFile)
		return fmt.Errorf("rename file: %w", err)
	}

	return nil
}

func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "wordscope", "nltk_data"), nil
}
