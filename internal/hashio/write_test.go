package hashio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteFileIfChanged(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		previous []byte
		body     []byte
		err      error
	}{
		{
			name: "test_write_new_file",
			body: []byte("<rdf:RDF/>"),
		},
		{
			name:     "test_write_changed_file",
			previous: []byte("<rdf:RDF></rdf:RDF>"),
			body:     []byte("<rdf:RDF/>"),
		},
		{
			name:     "test_write_equal_file",
			previous: []byte("<rdf:RDF/>"),
			body:     []byte("<rdf:RDF/>"),
			err:      ErrContentEqual,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fileName := filepath.Join(t.TempDir(), "nested", "fxref-usd.xml")
			if tc.previous != nil {
				if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
				if err := os.WriteFile(fileName, tc.previous, 0o600); err != nil {
					t.Fatalf("write previous: %v", err)
				}
			}

			err := WriteFileIfChanged(fileName, tc.body, MD5())
			if !errors.Is(err, tc.err) {
				t.Fatalf("error mismatch: want %v, got %v", tc.err, err)
			}

			got, err := os.ReadFile(fileName)
			if err != nil {
				t.Fatalf("read file: %v", err)
			}

			if diff := cmp.Diff(string(tc.body), string(got)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if tc.previous != nil {
				info, err := os.Stat(fileName)
				if err != nil {
					t.Fatalf("stat: %v", err)
				}

				if diff := cmp.Diff(os.FileMode(0o600), info.Mode().Perm()); diff != "" {
					t.Errorf("file mode mismatch (-want, +got):\n%s", diff)
				}
			}
		})
	}
}

func TestWriteFileIfChangedNilHasher(t *testing.T) {
	t.Parallel()

	err := WriteFileIfChanged(filepath.Join(t.TempDir(), "home"), []byte("x"), nil)
	if !errors.Is(err, ErrHashFuncNotFound) {
		t.Errorf("expected ErrHashFuncNotFound, got %v", err)
	}
}
