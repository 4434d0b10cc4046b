package download

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/ulikunitz/xz"
)

var (
	zipMagic = []byte("PK\x03\x04")
	xzMagic  = []byte("\xfd7zXZ\x00")
)

var errBinaryNotInArchive = errors.New("ffmpeg binary not found in archive")

// extractBinary copies the archive entry whose base name is name from
// archivePath into dst. The archive format is sniffed from its header.
func extractBinary(archivePath, name string, dst io.Writer) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 6)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read archive header: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return extractZip(archivePath, name, dst)
	case bytes.HasPrefix(head, xzMagic):
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return extractTarXZ(f, name, dst)
	default:
		return fmt.Errorf("unsupported archive format (header %x)", head)
	}
}

func extractZip(archivePath, name string, dst io.Writer) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || path.Base(zf.Name) != name {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", zf.Name, err)
		}
		_, err = io.Copy(dst, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("extract %s: %w", zf.Name, err)
		}
		return nil
	}
	return errBinaryNotInArchive
}

func extractTarXZ(r io.Reader, name string, dst io.Writer) error {
	xr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("open xz: %w", err)
	}
	tr := tar.NewReader(xr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return errBinaryNotInArchive
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || path.Base(hdr.Name) != name {
			continue
		}
		if _, err := io.Copy(dst, tr); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
		return nil
	}
}
