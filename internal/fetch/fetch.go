// Package fetch retrieves foundation files from local paths or remote
// sources (http, s3, git, ...) through go-getter.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	get "github.com/hashicorp/go-getter"
)

// Fetcher downloads single files into a local directory.
type Fetcher struct {
	dir string
	log *slog.Logger
}

// New creates a Fetcher that stores downloads in dir.
func New(dir string, log *slog.Logger) *Fetcher {
	return &Fetcher{dir: dir, log: log}
}

// Fetch retrieves src and returns the local path of the file. src is any
// go-getter address, e.g. "./world.json", "https://host/world.json" or
// "s3::https://s3.amazonaws.com/bucket/world.json".
func (f *Fetcher) Fetch(ctx context.Context, src string) (string, error) {
	name := fileName(src)
	if name == "" {
		return "", fmt.Errorf("fetch %q: cannot derive a file name", src)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", f.dir, err)
	}
	dst, err := filepath.Abs(filepath.Join(f.dir, name))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	if local, err := filepath.Abs(src); err == nil && local == dst {
		return dst, nil
	}
	if err := os.RemoveAll(dst); err != nil {
		return "", fmt.Errorf("clear %s: %w", dst, err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}

	f.log.Info("fetching foundation", "src", src, "dst", dst)
	client := &get.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: get.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("fetch %s: %w", src, err)
	}
	return dst, nil
}

// fileName returns the last path element of src without forced getter
// prefix, subdirectory or query.
func fileName(src string) string {
	if i := strings.Index(src, "::"); i >= 0 {
		src = src[i+2:]
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	src = strings.TrimRight(filepath.ToSlash(src), "/")
	name := path.Base(src)
	if name == "." || name == "/" || name == "" {
		return ""
	}
	return name
}
