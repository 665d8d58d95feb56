package colstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"abrdata/internal/frame"
)

const (
	kindArray = "array"
	kindTable = "table"

	metaFileName = "meta.json"
	dataFileName = "data.bin"

	sampleSize = 8 // one little-endian float64 per sample
)

// arrayMeta is the persisted description of an array dataset.
type arrayMeta struct {
	Kind       string  `json:"kind"`
	Length     int64   `json:"length"`
	SampleRate float64 `json:"samplerate"`
}

// columnSpec describes one persisted table column.
type columnSpec struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
}

// tableMeta is the persisted description of a table dataset.
type tableMeta struct {
	Kind    string       `json:"kind"`
	Columns []columnSpec `json:"columns"`
}

// Store provides access to the datasets below one recording's base path.
type Store struct {
	basePath string
}

// Open opens the store rooted at basePath.
func Open(basePath string) (*Store, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store path %s is not a directory", basePath)
	}
	return &Store{basePath: basePath}, nil
}

// BasePath returns the directory the store was opened at.
func (s *Store) BasePath() string {
	return s.basePath
}

// ArrayNames returns the names of all array datasets in the store, sorted.
func (s *Store) ArrayNames() []string {
	return s.datasetNames(kindArray)
}

// TableNames returns the names of all table datasets in the store, sorted.
func (s *Store) TableNames() []string {
	return s.datasetNames(kindTable)
}

func (s *Store) datasetNames(kind string) []string {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.basePath, entry.Name(), metaFileName))
		if err != nil {
			continue
		}
		var probe struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}
		if probe.Kind == kind {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// LoadTable loads a named table dataset fully into memory.
func (s *Store) LoadTable(name string) (*frame.Table, error) {
	dir := filepath.Join(s.basePath, name)
	meta, err := readTableMeta(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", name, err)
	}

	table := &frame.Table{Columns: make([]frame.Column, 0, len(meta.Columns))}
	for _, spec := range meta.Columns {
		switch spec.Dtype {
		case string(frame.ColumnString):
			raw, err := os.ReadFile(filepath.Join(dir, spec.Name+".json"))
			if err != nil {
				return nil, fmt.Errorf("failed to read column %s of table %s: %w", spec.Name, name, err)
			}
			var values []string
			if err := json.Unmarshal(raw, &values); err != nil {
				return nil, fmt.Errorf("failed to decode column %s of table %s: %w", spec.Name, name, err)
			}
			table.Columns = append(table.Columns, frame.Column{
				Name: spec.Name, Type: frame.ColumnString, Strings: values,
			})
		case string(frame.ColumnFloat):
			values, err := readFloatFile(filepath.Join(dir, spec.Name+".f64"))
			if err != nil {
				return nil, fmt.Errorf("failed to read column %s of table %s: %w", spec.Name, name, err)
			}
			table.Columns = append(table.Columns, frame.Column{
				Name: spec.Name, Type: frame.ColumnFloat, Floats: values,
			})
		default:
			return nil, fmt.Errorf("table %s column %s has unknown dtype %q", name, spec.Name, spec.Dtype)
		}
	}
	return table, nil
}

// OpenSignal opens a named array dataset without materializing its samples.
// A corrupt or truncated array reports zero length until repaired.
func (s *Store) OpenSignal(name string) (*Signal, error) {
	dir := filepath.Join(s.basePath, name)
	meta, err := readArrayMeta(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open signal %s: %w", name, err)
	}

	length := meta.Length
	backed, err := backedLength(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open signal %s: %w", name, err)
	}
	if backed < length {
		// The data file cannot back the recorded length.
		length = 0
	}

	return &Signal{
		dir:        dir,
		name:       name,
		length:     length,
		sampleRate: meta.SampleRate,
	}, nil
}

// Repair rewrites a named array's recorded length in place to the largest
// whole-sample count its data file supports.
func (s *Store) Repair(name string) error {
	dir := filepath.Join(s.basePath, name)
	meta, err := readArrayMeta(dir)
	if err != nil {
		return fmt.Errorf("failed to repair array %s: %w", name, err)
	}
	backed, err := backedLength(dir)
	if err != nil {
		return fmt.Errorf("failed to repair array %s: %w", name, err)
	}
	meta.Length = backed
	if err := writeArrayMeta(dir, meta); err != nil {
		return fmt.Errorf("failed to repair array %s: %w", name, err)
	}
	return nil
}

func readArrayMeta(dir string) (*arrayMeta, error) {
	raw, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, err
	}
	var meta arrayMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	if meta.Kind != kindArray {
		return nil, fmt.Errorf("dataset at %s is not an array", dir)
	}
	return &meta, nil
}

func writeArrayMeta(dir string, meta *arrayMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, metaFileName), raw, 0644)
}

func readTableMeta(dir string) (*tableMeta, error) {
	raw, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, err
	}
	var meta tableMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	if meta.Kind != kindTable {
		return nil, fmt.Errorf("dataset at %s is not a table", dir)
	}
	return &meta, nil
}

// backedLength returns the number of whole samples the data file holds.
func backedLength(dir string) (int64, error) {
	info, err := os.Stat(filepath.Join(dir, dataFileName))
	if err != nil {
		return 0, err
	}
	return info.Size() / sampleSize, nil
}

func readFloatFile(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	n := len(raw) / sampleSize
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(raw[i*sampleSize:])
		values[i] = math.Float64frombits(bits)
	}
	return values, nil
}
