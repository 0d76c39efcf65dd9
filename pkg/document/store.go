package document

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store reads and writes document bytes by path
type Store interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// FileStore is a Store on the local filesystem. Relative paths resolve against Root.
type FileStore struct {
	Root string
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

func (s *FileStore) resolve(path string) string {
	if filepath.IsAbs(path) || s.Root == "" {
		return path
	}
	return filepath.Join(s.Root, path)
}

// Read returns the file contents or an *IoError
func (s *FileStore) Read(path string) ([]byte, error) {
	full := s.resolve(path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, &IoError{Op: "read", Path: full, Err: err}
	}
	return data, nil
}

// Write replaces the file contents, creating parent directories as needed
func (s *FileStore) Write(path string, data []byte) error {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return &IoError{Op: "write", Path: full, Err: err}
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return &IoError{Op: "write", Path: full, Err: err}
	}
	return nil
}

// LoadPattern reads and decodes a pattern document
func LoadPattern(s Store, path string) (*PatternDocument, error) {
	data, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	doc, err := DecodePattern(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return doc, nil
}

// SavePattern encodes and writes a pattern document
func SavePattern(s Store, path string, doc *PatternDocument) error {
	data, err := EncodePattern(doc)
	if err != nil {
		return err
	}
	return s.Write(path, data)
}

// LoadCostume reads and decodes a costume document
func LoadCostume(s Store, path string) (Costume, error) {
	data, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	c, err := DecodeCostume(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return c, nil
}

// SaveCostume encodes and writes a costume document
func SaveCostume(s Store, path string, c Costume) error {
	data, err := EncodeCostume(c)
	if err != nil {
		return err
	}
	return s.Write(path, data)
}

// LoadScenario reads and decodes a scenario document
func LoadScenario(s Store, path string) (*Scenario, error) {
	data, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	sc, err := DecodeScenario(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return sc, nil
}

// SaveScenario encodes and writes a scenario document
func SaveScenario(s Store, path string, sc *Scenario) error {
	data, err := EncodeScenario(sc)
	if err != nil {
		return err
	}
	return s.Write(path, data)
}

// Catalog subdirectories
const (
	PatternsDir = "patterns"
	CostumesDir = "costumes"
	MusicDir    = "music"
)

// MusicPath locates a pattern's track. Absolute filenames are used as they are;
// relative ones are read from musicDir.
func MusicPath(musicDir, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(musicDir, filename)
}

// Entry is one file in a catalog directory
type Entry struct {
	Filename string `json:"filename"`
	Name     string `json:"name"` // filename up to the first dot
	Path     string `json:"path"`
}

// Catalog lists the documents and tracks available in a data directory
type Catalog struct {
	Patterns []Entry `json:"patterns"`
	Costumes []Entry `json:"costumes"`
	Music    []Entry `json:"music"`
}

// ReadCatalog lists root/patterns, root/costumes and root/music.
// A missing directory yields an empty list.
func ReadCatalog(root string) (*Catalog, error) {
	var c Catalog
	var err error
	if c.Patterns, err = listDir(filepath.Join(root, PatternsDir)); err != nil {
		return nil, err
	}
	if c.Costumes, err = listDir(filepath.Join(root, CostumesDir)); err != nil {
		return nil, err
	}
	if c.Music, err = listDir(filepath.Join(root, MusicDir)); err != nil {
		return nil, err
	}
	return &c, nil
}

func listDir(dir string) ([]Entry, error) {
	entries := []Entry{}
	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, &IoError{Op: "list", Path: dir, Err: err}
	}
	for _, de := range des {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		name := de.Name()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[:i]
		}
		entries = append(entries, Entry{
			Filename: de.Name(),
			Name:     name,
			Path:     filepath.Join(dir, de.Name()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Filename < entries[j].Filename })
	return entries, nil
}
