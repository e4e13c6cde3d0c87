package message

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/exp/maps"
)

// Upload error codes, with the same meanings as the codes reported by web servers for
// multipart form uploads.
const (
	UploadErrOK        = 0
	UploadErrIniSize   = 1
	UploadErrFormSize  = 2
	UploadErrPartial   = 3
	UploadErrNoFile    = 4
	UploadErrNoTmpDir  = 6
	UploadErrCantWrite = 7
	UploadErrExtension = 8
)

var (
	// ErrFileMoved is returned when an uploaded file is accessed after MoveTo succeeded.
	ErrFileMoved = errors.New("uploaded file has already been moved")

	// ErrUploadFailed is returned when accessing an uploaded file whose error code is not UploadErrOK.
	ErrUploadFailed = errors.New("cannot access a failed upload")
)

// UploadedFile is a file received as part of a multipart form request.
type UploadedFile interface {
	// Stream returns the file content.
	Stream() (Stream, error)
	// MoveTo moves the file to a new path. It can only succeed once.
	MoveTo(targetPath string) error
	Size() int64
	// ErrorCode is one of the UploadErr constants.
	ErrorCode() int
	ClientFilename() string
	ClientMediaType() string
}

// UploadedFiles maps form field names to either an UploadedFile or, for array-style fields
// such as "files[a][b]", a nested UploadedFiles.
type UploadedFiles map[string]interface{}

type fileUpload struct {
	path      string
	name      string
	mediaType string
	size      int64
	errorCode int
	moved     bool
}

// NewUploadedFile creates an UploadedFile for a file that has been stored at path.
func NewUploadedFile(path, clientFilename, clientMediaType string, size int64, errorCode int) UploadedFile {
	return &fileUpload{
		path:      path,
		name:      clientFilename,
		mediaType: clientMediaType,
		size:      size,
		errorCode: errorCode,
	}
}

func (f *fileUpload) Size() int64             { return f.size }
func (f *fileUpload) ErrorCode() int          { return f.errorCode }
func (f *fileUpload) ClientFilename() string  { return f.name }
func (f *fileUpload) ClientMediaType() string { return f.mediaType }

func (f *fileUpload) check() error {
	if f.errorCode != UploadErrOK {
		return fmt.Errorf("%w (error code %d)", ErrUploadFailed, f.errorCode)
	}
	if f.moved {
		return ErrFileMoved
	}
	return nil
}

func (f *fileUpload) Stream() (Stream, error) {
	if err := f.check(); err != nil {
		return Stream{}, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return Stream{}, err
	}
	defer func() { _ = file.Close() }()
	return ReadStream(file)
}

func (f *fileUpload) MoveTo(targetPath string) error {
	if err := f.check(); err != nil {
		return err
	}
	if targetPath == "" {
		return errors.New("target path for uploaded file must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return err
	}
	if err := os.Rename(f.path, targetPath); err != nil {
		if err := copyFile(f.path, targetPath); err != nil {
			return fmt.Errorf("could not move uploaded file to %s: %w", targetPath, err)
		}
		_ = os.Remove(f.path)
	}
	f.moved = true
	return nil
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Get follows a path of field names through nested UploadedFiles and returns the file at the
// end of it, or nil if there is none.
func (u UploadedFiles) Get(path ...string) UploadedFile {
	var current interface{} = u
	for _, name := range path {
		m, ok := current.(UploadedFiles)
		if !ok {
			return nil
		}
		current = m[name]
	}
	f, _ := current.(UploadedFile)
	return f
}

// Each calls fn for every file in the tree, in sorted order of field names, passing the path
// of field names that leads to it.
func (u UploadedFiles) Each(fn func(path []string, file UploadedFile)) {
	u.each(nil, fn)
}

func (u UploadedFiles) each(prefix []string, fn func([]string, UploadedFile)) {
	keys := maps.Keys(u)
	sort.Strings(keys)
	for _, k := range keys {
		path := append(append([]string(nil), prefix...), k)
		switch v := u[k].(type) {
		case UploadedFile:
			fn(path, v)
		case UploadedFiles:
			v.each(path, fn)
		}
	}
}

// Count returns the number of files in the tree.
func (u UploadedFiles) Count() int {
	n := 0
	u.Each(func([]string, UploadedFile) { n++ })
	return n
}
