package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"strings"
)

// ErrFileNotFound is returned when the wanted file is not in the archive
var ErrFileNotFound = errors.New("file not found in archive")

// ExtractFile returns the contents of the first entry whose name ends
// with fileName. GitHub zipballs nest everything under a generated
// top-level directory, so a suffix match is used instead of an exact one.
func ExtractFile(data []byte, fileName string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	for _, entry := range reader.File {
		if entry.Name != fileName && !strings.HasSuffix(entry.Name, "/"+fileName) {
			continue
		}
		f, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", entry.Name, err)
		}
		defer f.Close()

		content, err := ioutil.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name, err)
		}
		return content, nil
	}

	return nil, fmt.Errorf("%s: %w", fileName, ErrFileNotFound)
}
