package internal

import (
	"archive/zip"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// RawDocument is one unprocessed corpus document.
type RawDocument struct {
	ID   string
	Text string
}

// DocumentSource yields raw documents in the corpus' native order.
type DocumentSource interface {
	FileIDs() []string
	Raw(id string) (string, error)
	Close() error
}

// ResourceProvider resolves the corpus and the stopword list.
type ResourceProvider interface {
	Documents(ctx context.Context) (DocumentSource, error)
	Stopwords(ctx context.Context, language string) ([]string, error)
}

var (
	_ ResourceProvider = (*NLTKStore)(nil)
	_ ResourceProvider = (*StaticResources)(nil)
	_ DocumentSource   = (*ZipCorpus)(nil)
)

// reutersFileIDs matches the documents of the NLTK Reuters reader; cats.txt,
// README and the bundled stopword file are not documents.
var reutersFileIDs = regexp.MustCompile(`^(training|test)/[^/]+$`)

// NLTKStore serves packages from an NLTK data mirror, cached on a billy filesystem.
type NLTKStore struct {
	mu         sync.Mutex
	fs         billy.Filesystem
	downloader *Downloader
	cfg        DataConfig
	logger     *zap.Logger
	onProgress func(pkg string, written, total int64)
}

type PackageStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Cached bool   `json:"cached"`
}

func NewNLTKStore(fs billy.Filesystem, downloader *Downloader, cfg DataConfig, logger *zap.Logger) *NLTKStore {
	return &NLTKStore{
		fs:         fs,
		downloader: downloader,
		cfg:        cfg,
		logger:     orNop(logger),
	}
}

// WithProgress reports download progress of every package fetched afterwards.
func (s *NLTKStore) WithProgress(fn func(pkg string, written, total int64)) *NLTKStore {
	s.onProgress = fn
	return s
}

// Packages reports the cache state of the corpus and stopword packages.
func (s *NLTKStore) Packages() []PackageStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PackageStatus, 0, 2)
	for _, name := range []string{s.cfg.Corpus, s.cfg.Stopwords} {
		out = append(out, PackageStatus{Name: name, Path: PackagePath(name), Cached: s.downloader.Cached(name)})
	}
	return out
}

// Fetch ensures both packages are cached and readable. Safe to call repeatedly.
func (s *NLTKStore) Fetch(ctx context.Context) error {
	for _, name := range []string{s.cfg.Corpus, s.cfg.Stopwords} {
		_, closer, err := s.openPackage(ctx, name)
		if err != nil {
			return err
		}
		closer.Close()
	}
	return nil
}

func (s *NLTKStore) Documents(ctx context.Context) (DocumentSource, error) {
	decode, err := newDecoder(s.cfg.Encoding)
	if err != nil {
		return nil, resourceError("corpus encoding", err)
	}

	zr, closer, err := s.openPackage(ctx, s.cfg.Corpus)
	if err != nil {
		return nil, err
	}

	return newZipCorpus(zr, s.cfg.Corpus, reutersFileIDs, decode, closer), nil
}

func (s *NLTKStore) Stopwords(ctx context.Context, language string) ([]string, error) {
	zr, closer, err := s.openPackage(ctx, s.cfg.Stopwords)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	entry := s.cfg.Stopwords + "/" + language
	rc, err := zr.Open(entry)
	if err != nil {
		return nil, resourceError("open stopword list "+language, err)
	}
	defer rc.Close()

	words, err := readLines(rc)
	if err != nil {
		return nil, resourceError("read stopword list "+language, err)
	}
	return words, nil
}

// openPackage fetches the archive if needed and opens it. An unreadable cached
// archive is evicted and fetched once more.
func (s *NLTKStore) openPackage(ctx context.Context, name string) (*zip.Reader, io.Closer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var progress func(written, total int64)
	if s.onProgress != nil {
		progress = func(written, total int64) { s.onProgress(name, written, total) }
	}

	p, err := s.downloader.EnsurePackage(ctx, name, progress)
	if err != nil {
		return nil, nil, resourceError("fetch "+name, err)
	}

	zr, closer, err := s.openZip(p)
	if err == nil {
		return zr, closer, nil
	}

	s.logger.Warn("cached package unreadable, fetching again",
		zap.String("package", name), zap.Error(err))

	if err := s.downloader.Evict(name); err != nil {
		return nil, nil, resourceError("evict "+name, err)
	}
	if p, err = s.downloader.EnsurePackage(ctx, name, progress); err != nil {
		return nil, nil, resourceError("fetch "+name, err)
	}
	if zr, closer, err = s.openZip(p); err != nil {
		return nil, nil, resourceError("open "+name, err)
	}
	return zr, closer, nil
}

func (s *NLTKStore) openZip(p string) (*zip.Reader, io.Closer, error) {
	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, nil, fmt.Errorf("stat archive: %w", err)
	}

	f, err := s.fs.Open(p)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("read archive: %w", err)
	}
	return zr, f, nil
}

// ZipCorpus reads documents straight out of a package archive.
type ZipCorpus struct {
	files  map[string]*zip.File
	ids    []string
	decode func([]byte) (string, error)
	closer io.Closer
}

func newZipCorpus(zr *zip.Reader, pkg string, pattern *regexp.Regexp, decode func([]byte) (string, error), closer io.Closer) *ZipCorpus {
	prefix := pkg + "/"
	files := make(map[string]*zip.File)
	ids := make([]string, 0, len(zr.File))

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		id := strings.TrimPrefix(f.Name, prefix)
		if !pattern.MatchString(id) {
			continue
		}
		files[id] = f
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &ZipCorpus{files: files, ids: ids, decode: decode, closer: closer}
}

func (z *ZipCorpus) FileIDs() []string {
	out := make([]string, len(z.ids))
	copy(out, z.ids)
	return out
}

func (z *ZipCorpus) Raw(id string) (string, error) {
	f, ok := z.files[id]
	if !ok {
		return "", fmt.Errorf("unknown document %q", id)
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", id, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", id, err)
	}

	text, err := z.decode(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", id, err)
	}
	return text, nil
}

func (z *ZipCorpus) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}

// StaticResources serves an in-memory corpus and stopword list.
type StaticResources struct {
	Docs  []RawDocument
	Words []string
}

func (s *StaticResources) Documents(context.Context) (DocumentSource, error) {
	return staticSource(s.Docs), nil
}

func (s *StaticResources) Stopwords(context.Context, string) ([]string, error) {
	return s.Words, nil
}

type staticSource []RawDocument

func (s staticSource) FileIDs() []string {
	ids := make([]string, len(s))
	for i, d := range s {
		ids[i] = d.ID
	}
	return ids
}

func (s staticSource) Raw(id string) (string, error) {
	for _, d := range s {
		if d.ID == id {
			return d.Text, nil
		}
	}
	return "", fmt.Errorf("unknown document %q", id)
}

func (s staticSource) Close() error { return nil }

func newDecoder(name string) (func([]byte) (string, error), error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return func(b []byte) (string, error) {
			if !utf8.Valid(b) {
				return "", errors.New("invalid utf-8")
			}
			return string(b), nil
		}, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return func(b []byte) (string, error) {
		out, err := enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
