package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rowjay/insights-synth/internal/errs"
)

// ErrNotFound is returned when the requested entry file does not exist.
var ErrNotFound = errors.New("manifest entry not found")

// UpdateTimeSeries replaces the results list of the time-series entry in dir
// with one persisted RawFileProvider descriptor per relative path. Every other
// field of the entry is written back untouched. A missing entry returns
// ErrNotFound and leaves dir unchanged.
func UpdateTimeSeries(dir string, relPaths []string) error {
	path := filepath.Join(dir, TimeSeriesFile)
	fields, mode, err := readFields(path)
	if err != nil {
		return err
	}

	descriptors := make([]FileDescriptor, 0, len(relPaths))
	for _, rel := range relPaths {
		descriptors = append(descriptors, FileDescriptor{
			Type:   RawFileProvider,
			Object: FileObject{SaveAs: true, RelativePath: rel},
		})
	}
	raw, err := json.Marshal(descriptors)
	if err != nil {
		return errs.Manifest("encode descriptors", "%w", err)
	}
	fields.set(resultsKey, raw)

	return writeJSON(path, fields, mode)
}

// ReadTimeSeries returns the relative paths currently advertised by the
// time-series entry in dir.
func ReadTimeSeries(dir string) ([]string, error) {
	path := filepath.Join(dir, TimeSeriesFile)
	fields, _, err := readFields(path)
	if err != nil {
		return nil, err
	}
	var descriptors []FileDescriptor
	if raw, ok := fields.values[resultsKey]; ok {
		if err := json.Unmarshal(raw, &descriptors); err != nil {
			return nil, errs.Manifest("parse "+TimeSeriesFile, "results: %w", err)
		}
	}
	paths := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		paths = append(paths, d.Object.RelativePath)
	}
	return paths, nil
}

// WriteDocument stores doc as dir/name. Existing files are left alone and
// reported with written=false.
func WriteDocument(dir, name string, doc Document) (written bool, err error) {
	if doc.Errors == nil {
		doc.Errors = []string{}
	}
	path := filepath.Join(dir, name)
	if _, err := os.Lstat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errs.Manifest("stat "+name, "%w", err)
	}
	if err := writeJSON(path, doc, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// orderedFields holds a JSON object's members in document order.
type orderedFields struct {
	keys   []string
	values map[string]json.RawMessage
}

func (f *orderedFields) set(key string, v json.RawMessage) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
}

func (f *orderedFields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	f.keys = nil
	f.values = map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		f.set(key, raw)
	}
	_, err = dec.Token()
	return err
}

func (f orderedFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func readFields(path string) (*orderedFields, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, errs.Manifest("stat "+filepath.Base(path), "%w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errs.Manifest("read "+filepath.Base(path), "%w", err)
	}
	f := &orderedFields{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, 0, errs.Manifest("parse "+filepath.Base(path), "%w", err)
	}
	return f, info.Mode().Perm(), nil
}

func writeJSON(path string, v any, mode os.FileMode) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Manifest("encode "+filepath.Base(path), "%w", err)
	}
	if err := os.WriteFile(path, payload, mode); err != nil {
		return errs.Manifest("write "+filepath.Base(path), "%w", err)
	}
	return nil
}
