// Package asset materializes binary resources (the launcher's shortcut icon)
// from an encoded text form kept in the repository.
//
// The encoded form is base64. The decoded payload may be the file itself or
// a compressed container holding it: xz, gzip, bzip2, tar, zip and 7z are
// recognized by their magic bytes.
package asset

import (
	"archive/tar"    // For reading .tar members
	"archive/zip"    // For reading .zip members
	"bytes"
	"compress/bzip2" // For reading .bz2 payloads
	"compress/gzip"  // For reading .gz payloads
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/bodgit/sevenzip" // For reading .7z members
	"github.com/xi2/xz"          // For reading .xz payloads

	"website-launcher/internal/logger"
)

// ErrNoResource means the encoded resource file does not exist.
var ErrNoResource = errors.New("encoded resource not found")

// maxPayload caps decompressed sizes; icons are a few hundred KiB at most.
const maxPayload = 16 << 20

// maxDepth bounds nested containers such as tar inside xz.
const maxDepth = 3

// Kind is the container format detected in a decoded payload.
type Kind string

// Formats recognized by Detect.
const (
	Raw      Kind = "raw"
	XZ       Kind = "xz"
	Gzip     Kind = "gzip"
	Bzip2    Kind = "bzip2"
	Tar      Kind = "tar"
	Zip      Kind = "zip"
	SevenZip Kind = "7z"
)

// magics maps leading bytes to formats. Tar has no prefix and is checked separately.
var magics = []struct {
	kind  Kind
	magic []byte
}{
	{XZ, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},
	{SevenZip, []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
	{Gzip, []byte{0x1F, 0x8B}},
	{Bzip2, []byte("BZh")},
	{Zip, []byte("PK\x03\x04")},
}

// Detect returns the container format of data.
func Detect(data []byte) Kind {
	for _, m := range magics {
		if bytes.HasPrefix(data, m.magic) {
			return m.kind
		}
	}
	// POSIX and GNU tar headers carry "ustar" at offset 257
	if len(data) >= 262 && string(data[257:262]) == "ustar" {
		return Tar
	}
	return Raw
}

// Materialize writes target from the encoded resource if target is absent
// and returns target. An existing target is returned untouched.
func Materialize(resource, target string) (string, error) {
	// Never overwrite an icon the user may have replaced
	if _, err := os.Stat(target); err == nil {
		logger.Debug("[DEBUG] Asset %s already present\n", target)
		return target, nil
	}

	// Read the encoded text
	encoded, err := os.ReadFile(resource)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNoResource, resource)
		}
		return "", fmt.Errorf("failed to read %s: %w", resource, err)
	}

	// Base64 to bytes
	data, err := Decode(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", resource, err)
	}

	// Unwrap compression and archives until the file itself is left
	payload, err := unpack(data, filepath.Ext(target), 0)
	if err != nil {
		return "", fmt.Errorf("failed to unpack %s: %w", resource, err)
	}

	// Write it in one step
	if err := writeAtomic(target, payload); err != nil {
		return "", err
	}
	logger.Debug("[DEBUG] Materialized %s (%d bytes) from %s\n", target, len(payload), resource)
	return target, nil
}

// Decode strips whitespace and an optional data URI prefix, then base64-decodes.
func Decode(encoded []byte) ([]byte, error) {
	// Encoders wrap lines, so drop every whitespace rune
	text := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(encoded))

	// data:image/x-icon;base64,AAAB...
	if strings.HasPrefix(text, "data:") {
		if _, after, ok := strings.Cut(text, ","); ok {
			text = after
		}
	}

	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		// Some encoders drop the padding.
		if raw, rerr := base64.RawStdEncoding.DecodeString(strings.TrimRight(text, "=")); rerr == nil {
			return raw, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("resource is empty")
	}
	return data, nil
}

// unpack peels one container layer per call and recurses until a raw
// payload is left. ext steers the member choice inside archives.
func unpack(data []byte, ext string, depth int) ([]byte, error) {
	if depth > maxDepth {
		return nil, errors.New("too many nested containers")
	}

	kind := Detect(data)
	logger.Debug("[DEBUG] Payload kind is %s\n", kind)

	var (
		out []byte
		err error
	)
	switch kind {
	case Raw:
		// Nothing left to unwrap
		return data, nil
	case XZ:
		var r io.Reader
		if r, err = xz.NewReader(bytes.NewReader(data), 0); err == nil {
			out, err = readLimited(r)
		}
	case Gzip:
		var gr *gzip.Reader
		if gr, err = gzip.NewReader(bytes.NewReader(data)); err == nil {
			out, err = readLimited(gr)
			gr.Close()
		}
	case Bzip2:
		out, err = readLimited(bzip2.NewReader(bytes.NewReader(data)))
	// Archives yield a single member
	case Tar:
		out, err = fromTar(data, ext)
	case Zip:
		out, err = fromZip(data, ext)
	case SevenZip:
		out, err = from7z(data, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	// The inner payload may be a container again (e.g. .tar.xz)
	return unpack(out, ext, depth+1)
}

// readLimited reads r fully, failing once maxPayload is exceeded.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayload+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPayload {
		return nil, fmt.Errorf("payload exceeds %d bytes", maxPayload)
	}
	return data, nil
}

// member is one regular file inside an archive.
type member struct {
	name string
	open func() (io.ReadCloser, error)
}

// pick chooses the archive member to materialize: one with the target's
// extension, else an icon or image, else the first regular file.
func pick(members []member, ext string) (member, error) {
	if len(members) == 0 {
		return member{}, errors.New("archive has no regular files")
	}
	// Order of preference; ext may be empty when the target has none
	preferred := []string{strings.ToLower(ext), ".ico", ".png"}
	for _, want := range preferred {
		if want == "" {
			continue
		}
		for _, m := range members {
			if strings.EqualFold(filepath.Ext(m.name), want) {
				return m, nil
			}
		}
	}
	// Fall back to the first regular file
	return members[0], nil
}

// readMember opens m and reads it within maxPayload.
func readMember(m member) ([]byte, error) {
	rc, err := m.open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", m.name, err)
	}
	defer rc.Close()
	return readLimited(rc)
}

// fromTar returns the preferred regular file of a tar archive.
func fromTar(data []byte, ext string) ([]byte, error) {
	// Tar streams cannot be reopened, so members are buffered while scanning.
	contents := make(map[string][]byte)
	var members []member

	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		// Skip directories, links and other non-regular entries
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		body, err := readLimited(tr)
		if err != nil {
			return nil, err
		}
		name := hdr.Name
		contents[name] = body
		members = append(members, member{name: name, open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(contents[name])), nil
		}})
	}

	m, err := pick(members, ext)
	if err != nil {
		return nil, err
	}
	return readMember(m)
}

// fromZip returns the preferred file of a zip archive.
func fromZip(data []byte, ext string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var members []member
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members = append(members, member{name: f.Name, open: f.Open})
	}
	m, err := pick(members, ext)
	if err != nil {
		return nil, err
	}
	return readMember(m)
}

// from7z returns the preferred file of a 7z archive.
func from7z(data []byte, ext string) ([]byte, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	var members []member
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members = append(members, member{name: f.Name, open: f.Open})
	}
	m, err := pick(members, ext)
	if err != nil {
		return nil, err
	}
	return readMember(m)
}

// writeAtomic writes data to a temporary file next to target and renames it
// into place, so an interrupted run never leaves a truncated icon behind.
func writeAtomic(target string, data []byte) (err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}
	// Hidden temp file in the same directory so the rename stays on one filesystem
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("create temp file failed: %w", err)
	}
	// Clean up the temp file on any failure below
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}
