// Package archive unpacks the input ZIP and reads the hotel CSVs inside it.
package archive

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"hotel_weather/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Unpack extracts every *.csv member of zipPath into dir, keeping the
// member's relative path. Other members are ignored.
func Unpack(zipPath, dir string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, &domain.InputFormatError{Path: zipPath, Err: err}
	}
	defer zr.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create extraction dir: %w", err)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		dst := filepath.Join(root, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dst, root+string(os.PathSeparator)) {
			return nil, &domain.InputFormatError{Path: zipPath, Err: fmt.Errorf("illegal member path %q", f.Name)}
		}
		if err := extract(f, dst); err != nil {
			return nil, err
		}
		files = append(files, dst)
	}
	log.Debug().Str("zip", zipPath).Int("csv_files", len(files)).Msg("archive unpacked")
	return files, nil
}

func extract(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// Assemble reads every CSV under dir, in lexical path order, and
// concatenates their rows. Columns are matched by header name.
func Assemble(dir string) ([]domain.RawRecord, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".csv") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)

	var all []domain.RawRecord
	for _, p := range paths {
		rows, err := readCSV(p)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

func readCSV(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	var rows []domain.RawRecord
	if err := gocsv.Unmarshal(br, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
