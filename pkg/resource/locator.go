// Package resource opens and parses the linguistic resources (word lists, rule
// sets, reference tables) the extraction passes depend on.
package resource

import (
	"archive/zip"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

//go:embed builtin
var builtinFS embed.FS

// Kind tells where a resource lives.
type Kind int

const (
	// Builtin resources are compiled into the binary.
	Builtin Kind = iota
	// Filesystem resources are plain files.
	Filesystem
	// Archive resources are entries of a zip archive.
	Archive
)

func (k Kind) String() string {
	switch k {
	case Builtin:
		return "builtin"
	case Filesystem:
		return "file"
	case Archive:
		return "zip"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrNotFound is returned when a located resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Locator addresses one resource. Path is the file path for Filesystem, the
// embedded path for Builtin, and the entry path inside Archive otherwise.
type Locator struct {
	Kind    Kind
	Path    string
	Archive string
}

// ParseLocator reads the textual form of a locator:
//
//	builtin:en/prefixes.txt
//	file:/data/prefixes.txt   (or a bare path)
//	zip:/data/res.zip!en/prefixes.txt
func ParseLocator(s string) (Locator, error) {
	switch {
	case s == "":
		return Locator{}, fmt.Errorf("empty resource locator")
	case strings.HasPrefix(s, "builtin:"):
		p := strings.TrimPrefix(s, "builtin:")
		if p == "" {
			return Locator{}, fmt.Errorf("locator %q: missing path", s)
		}
		return Locator{Kind: Builtin, Path: path.Clean(p)}, nil
	case strings.HasPrefix(s, "zip:"):
		archive, entry, ok := strings.Cut(strings.TrimPrefix(s, "zip:"), "!")
		if !ok || archive == "" || entry == "" {
			return Locator{}, fmt.Errorf("locator %q: expected zip:<archive>!<entry>", s)
		}
		return Locator{Kind: Archive, Archive: archive, Path: path.Clean(strings.TrimPrefix(entry, "/"))}, nil
	case strings.HasPrefix(s, "file:"):
		return Locator{Kind: Filesystem, Path: strings.TrimPrefix(s, "file:")}, nil
	}
	return Locator{Kind: Filesystem, Path: s}, nil
}

// BuiltinLocator returns the locator of an embedded resource.
func BuiltinLocator(p string) Locator { return Locator{Kind: Builtin, Path: p} }

func (l Locator) String() string {
	switch l.Kind {
	case Builtin:
		return "builtin:" + l.Path
	case Archive:
		return "zip:" + l.Archive + "!" + l.Path
	}
	return "file:" + l.Path
}

// UnmarshalText lets locators appear as plain strings in configuration files.
func (l *Locator) UnmarshalText(b []byte) error {
	parsed, err := ParseLocator(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l Locator) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Open opens the resource for reading.
func Open(l Locator) (io.ReadCloser, error) {
	switch l.Kind {
	case Builtin:
		f, err := builtinFS.Open(path.Join("builtin", l.Path))
		if err != nil {
			return nil, wrapNotFound(l, err)
		}
		return f, nil
	case Filesystem:
		f, err := os.Open(l.Path)
		if err != nil {
			return nil, wrapNotFound(l, err)
		}
		return f, nil
	case Archive:
		return openArchiveEntry(l)
	}
	return nil, fmt.Errorf("open %s: unknown locator kind", l)
}

// Exists checks that the resource can be opened.
func Exists(l Locator) error {
	rc, err := Open(l)
	if err != nil {
		return err
	}
	return rc.Close()
}

type archiveEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (e archiveEntry) Close() error {
	err := e.ReadCloser.Close()
	if cerr := e.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func openArchiveEntry(l Locator) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(l.Archive)
	if err != nil {
		return nil, wrapNotFound(l, err)
	}
	f, err := zr.Open(l.Path)
	if err != nil {
		zr.Close()
		return nil, wrapNotFound(l, err)
	}
	return archiveEntry{ReadCloser: f, archive: zr}, nil
}

func wrapNotFound(l Locator, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("open %s: %w", l, ErrNotFound)
	}
	return fmt.Errorf("open %s: %w", l, err)
}
