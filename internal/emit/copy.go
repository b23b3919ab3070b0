package emit

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/logfields"
)

func (e *emitter) copy(name string, p buildgraph.CopyPlugin) error {
	for _, pat := range p.Patterns {
		info, err := os.Stat(pat.From)
		if errors.Is(err, os.ErrNotExist) {
			e.log.Warn("Copy source missing; skipping", logfields.Plugin(name), logfields.Path(pat.From))
			continue
		}
		if err != nil {
			return ferrors.FileSystemError("stat copy source").WithCause(err).WithContext("path", pat.From).Build()
		}

		switch {
		case pat.Match != "":
			err = e.copyMatching(name, pat)
		case info.IsDir():
			err = e.copyTree(name, pat.From, pat.To)
		default:
			to := pat.To
			if to == "" || strings.HasSuffix(to, "/") {
				to += filepath.Base(pat.From)
			}
			err = e.copyFile(name, pat.From, to)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) copyTree(name, from, to string) error {
	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		return e.copyFile(name, path, filepath.ToSlash(filepath.Join(to, rel)))
	})
}

func (e *emitter) copyMatching(name string, pat buildgraph.CopyPattern) error {
	return filepath.WalkDir(pat.From, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(pat.Match, d.Name())
		if err != nil {
			return ferrors.BuildError("invalid copy pattern").WithCause(err).WithContext("pattern", pat.Match).Build()
		}
		if !ok {
			return nil
		}
		return e.copyFile(name, path, ExpandTarget(pat.To, d.Name()))
	})
}

// ExpandTarget substitutes [name] and [ext] in to with the base name of file
// (without extension) and its extension (without the dot).
func ExpandTarget(to, file string) string {
	ext := filepath.Ext(file)
	r := strings.NewReplacer("[name]", strings.TrimSuffix(file, ext), "[ext]", strings.TrimPrefix(ext, "."))
	return r.Replace(to)
}

func (e *emitter) copyFile(name, src, to string) error {
	dst, err := e.target(to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ferrors.FileSystemError("create output directory").WithCause(err).WithContext("path", filepath.Dir(dst)).Build()
	}

	in, err := os.Open(src)
	if err != nil {
		return ferrors.FileSystemError("open copy source").WithCause(err).WithContext("path", src).Build()
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return ferrors.FileSystemError("create copy target").WithCause(err).WithContext("path", dst).Build()
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ferrors.FileSystemError("copy file").WithCause(err).WithContext("path", dst).Build()
	}

	e.record(File{Path: e.rel(dst), Source: src, Size: n, Plugin: name})
	return nil
}

// target resolves a slash-separated output path. It rejects paths escaping
// the output directory and the reserved constants manifest.
func (e *emitter) target(to string) (string, error) {
	dst := filepath.Join(e.out, filepath.FromSlash(to))
	rel, err := filepath.Rel(e.out, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ferrors.BuildError("copy target escapes output directory").WithContext("path", to).Build()
	}
	if rel == ManifestFile {
		return "", ferrors.BuildError("copy target overwrites the build constants").WithContext("path", to).Build()
	}
	return dst, nil
}
