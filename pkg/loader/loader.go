// Package loader fetches taxonomy documents from built-in, file and HTTP
// sources. All documents are loaded before the chart is built; a single
// failure aborts the whole load.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/flavor-wheel/pkg/datasets"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
)

// ErrUnknownSource is returned for a source string that names nothing.
var ErrUnknownSource = errors.New("unknown source")

// BuiltinPrefix marks a source that refers to an embedded dataset.
const BuiltinPrefix = "builtin:"

// maxBody bounds the size of a fetched document.
const maxBody = 8 << 20

// Source locates one taxonomy document: "builtin:<name>", a file path
// (.json, .yaml, .yml) or an http(s) URL.
type Source string

// Kind classifies the source.
func (s Source) Kind() string {
	str := string(s)
	switch {
	case strings.HasPrefix(str, BuiltinPrefix):
		return "builtin"
	case strings.HasPrefix(str, "http://"), strings.HasPrefix(str, "https://"):
		return "http"
	case str == "":
		return ""
	default:
		return "file"
	}
}

// Loader holds the collaborators used to resolve sources.
type Loader struct {
	Client *http.Client
	Logger *zap.Logger
}

// New returns a loader using http.DefaultClient.
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Client: http.DefaultClient, Logger: logger}
}

// Load resolves every source concurrently. The first failure cancels the
// remaining fetches and is returned; no partial result is returned.
func (l *Loader) Load(ctx context.Context, sources map[string]Source) (map[string]*taxonomy.Document, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	docs := make(map[string]*taxonomy.Document, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		src := sources[name]
		g.Go(func() error {
			doc, err := l.LoadOne(gctx, src)
			if err != nil {
				return fmt.Errorf("loading %s from %s: %w", name, src, err)
			}
			mu.Lock()
			docs[name] = doc
			mu.Unlock()
			l.Logger.Debug("dataset loaded",
				zap.String("name", name),
				zap.String("source", string(src)),
				zap.Int("categories", len(doc.Children)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.Logger.Error("dataset load failed", zap.Error(err))
		return nil, err
	}
	return docs, nil
}

// LoadOne resolves and validates a single source.
func (l *Loader) LoadOne(ctx context.Context, src Source) (*taxonomy.Document, error) {
	var (
		doc *taxonomy.Document
		err error
	)
	switch src.Kind() {
	case "builtin":
		return datasets.Builtin(strings.TrimPrefix(string(src), BuiltinPrefix))
	case "http":
		doc, err = l.fetch(ctx, string(src))
	case "file":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err = taxonomy.ParseFile(string(src))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, src)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (*taxonomy.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	return taxonomy.ParseFormat(data, formatOf(path.Ext(u.Path), resp.Header.Get("Content-Type")))
}

// formatOf picks a parser extension from the URL path, falling back to the
// response content type.
func formatOf(ext, contentType string) string {
	if ext != "" {
		return ext
	}
	if strings.Contains(contentType, "yaml") {
		return ".yaml"
	}
	return ".json"
}

// Load resolves sources with a default loader.
func Load(ctx context.Context, sources map[string]Source, logger *zap.Logger) (map[string]*taxonomy.Document, error) {
	return New(logger).Load(ctx, sources)
}

// FileSources returns the file-backed sources keyed by dataset name, with
// absolute paths, for use with a Watcher.
func FileSources(sources map[string]Source) map[string]string {
	out := make(map[string]string)
	for name, src := range sources {
		if src.Kind() != "file" {
			continue
		}
		p, err := filepath.Abs(string(src))
		if err != nil {
			p = string(src)
		}
		out[name] = p
	}
	return out
}
