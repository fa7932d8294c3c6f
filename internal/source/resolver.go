// Package source resolves a requested file name to spreadsheet bytes, either
// from a configured remote catalog or from a local data directory.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Kind string

const (
	KindWorkbook Kind = "workbook"
	KindCSV      Kind = "csv"
)

var ErrNotFound = errors.New("file not found")

// UnknownFileError means the requested name is not one this service will
// serve.
type UnknownFileError struct {
	Name   string
	Reason string
}

func (e *UnknownFileError) Error() string {
	return fmt.Sprintf("unknown file %q: %s", e.Name, e.Reason)
}

type File struct {
	Name string
	Data []byte
	Kind Kind
}

var allowedExt = map[string]Kind{
	".xlsx": KindWorkbook,
	".xlsm": KindWorkbook,
	".xls":  KindWorkbook,
	".csv":  KindCSV,
}

type Resolver struct {
	// Remote maps a public file name to the URL it is fetched from.
	Remote  map[string]string
	Dir     string
	Fetcher *Fetcher

	// MaxBytes caps local file size; zero means no cap.
	MaxBytes int64
}

// Open returns the contents of name. Remote catalog entries take precedence
// over local files of the same name.
func (r *Resolver) Open(ctx context.Context, name string) (*File, error) {
	kind, err := kindOf(name)
	if err != nil {
		return nil, err
	}

	if url, ok := r.Remote[name]; ok {
		if r.Fetcher == nil {
			return nil, fmt.Errorf("no fetcher configured for %q", name)
		}
		data, err := r.Fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return &File{Name: name, Data: data, Kind: kind}, nil
	}

	return r.openLocal(name, kind)
}

// Names lists the remote catalog followed by readable local files.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.Remote))
	seen := make(map[string]bool)
	for name := range r.Remote {
		names = append(names, name)
		seen[name] = true
	}
	sort.Strings(names)

	if r.Dir == "" {
		return names
	}
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return names
	}
	for _, e := range entries {
		if e.IsDir() || seen[e.Name()] {
			continue
		}
		if _, err := kindOf(e.Name()); err == nil {
			names = append(names, e.Name())
		}
	}
	return names
}

func (r *Resolver) openLocal(name string, kind Kind) (*File, error) {
	if r.Dir == "" {
		return nil, &UnknownFileError{Name: name, Reason: "no local data directory"}
	}

	path := filepath.Join(r.Dir, name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &UnknownFileError{Name: name, Reason: "is a directory"}
	}
	if r.MaxBytes > 0 && info.Size() > r.MaxBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit %d", name, info.Size(), r.MaxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &File{Name: name, Data: data, Kind: kind}, nil
}

// kindOf accepts bare file names with a spreadsheet extension only.
func kindOf(name string) (Kind, error) {
	if name == "" {
		return "", &UnknownFileError{Name: name, Reason: "empty name"}
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", &UnknownFileError{Name: name, Reason: "not a plain file name"}
	}

	kind, ok := allowedExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", &UnknownFileError{Name: name, Reason: "unsupported extension"}
	}
	return kind, nil
}
