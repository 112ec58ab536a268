package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/ulikoehler/slinktree/pkg/model"
)

// CompressedExt marks container files wrapped in an xz stream.
const CompressedExt = ".xz"

// Write encodes doc to w.
func Write(w io.Writer, doc *model.SystemDoc) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Read decodes a container from r.
func Read(r io.Reader) (*model.SystemDoc, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	return Decode(data)
}

// SaveFile writes doc to path, xz-compressed when path ends in ".xz".
func SaveFile(path string, doc *model.SystemDoc) (err error) {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, CompressedExt) {
		_, err = f.Write(data)
		return err
	}
	bw := bufio.NewWriter(f)
	zw, err := xz.NewWriter(bw)
	if err != nil {
		return fmt.Errorf("xz writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("xz write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("xz close: %w", err)
	}
	return bw.Flush()
}

// LoadFile reads a container written by SaveFile.
func LoadFile(path string) (*model.SystemDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, CompressedExt) {
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		r = zr
	}
	return Read(r)
}

// Sniff reports whether the file at path is a container, compressed or not.
func Sniff(path string) (bool, error) {
	if strings.HasSuffix(path, CompressedExt) {
		return true, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var head [len(Magic)]byte
	n, err := io.ReadFull(f, head[:])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsContainer(head[:n]), nil
}
