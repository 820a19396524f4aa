package hashio

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrContentEqual = errors.New("hash of the content is equivalent to the previous version")

const defaultFileMode os.FileMode = 0o644

// WriteFileIfChanged writes body to fileName unless the file already holds content with the same hash.
// In that case ErrContentEqual is returned and the file is left untouched. The mode of an existing file is kept
func WriteFileIfChanged(fileName string, body []byte, hasherFunc func() hash.Hash) error {
	if hasherFunc == nil {
		return ErrHashFuncNotFound
	}

	mode := defaultFileMode
	info, err := os.Stat(fileName)
	switch {
	case err == nil:
		mode = info.Mode()

		oldHash, err := ReadFile(os.DirFS(filepath.Dir(fileName)), filepath.Base(fileName), HashSumFunc(hasherFunc))
		if err != nil {
			return fmt.Errorf("hashing file content: %w", err)
		}

		newHash, err := ReadAll(bytes.NewReader(body), hasherFunc())
		if err != nil {
			return fmt.Errorf("hashing body content: %w", err)
		}

		if bytes.Equal(oldHash, newHash) {
			return ErrContentEqual
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	default:
		return fmt.Errorf("stat %s: %w", fileName, err)
	}

	if err := os.WriteFile(fileName, body, mode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
