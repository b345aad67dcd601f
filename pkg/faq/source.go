package faq

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTitle is given to documents whose data has no title field. An
// explicit empty title is kept as is.
const DefaultTitle = "Info"

// Document is one entry of clinic information.
type Document struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Content string `json:"content" yaml:"content"`
}

// Source supplies the documents an Index is built from.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// FileSource reads documents from a JSON or YAML file holding an array of
// {title, content} objects. The format is chosen by extension; anything
// other than .yaml or .yml is parsed as JSON.
type FileSource struct {
	Path string
}

// Documents reads and validates the file. Every document needs content.
func (s FileSource) Documents(_ context.Context) ([]Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading FAQ data %s: %w", s.Path, err)
	}

	docs, err := parseDocuments(data, filepath.Ext(s.Path))
	if err != nil {
		return nil, fmt.Errorf("parsing FAQ data %s: %w", s.Path, err)
	}
	return docs, nil
}

// StaticSource serves a fixed set of documents.
type StaticSource []Document

// Documents returns a copy of the slice.
func (s StaticSource) Documents(_ context.Context) ([]Document, error) {
	if err := validateDocuments(s); err != nil {
		return nil, err
	}
	out := make([]Document, len(s))
	copy(out, s)
	return out, nil
}

//go:embed clinic_info.yaml
var defaultClinicInfo []byte

// DefaultSource returns the built-in clinic information used when no data
// file is configured.
func DefaultSource() StaticSource {
	docs, err := parseDocuments(defaultClinicInfo, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("faq: built-in clinic info is invalid: %v", err))
	}
	return StaticSource(docs)
}

// rawDocument tells a missing title apart from an empty one.
type rawDocument struct {
	Title   *string `json:"title" yaml:"title"`
	Content string  `json:"content" yaml:"content"`
}

func parseDocuments(data []byte, ext string) ([]Document, error) {
	var raw []rawDocument
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	docs := make([]Document, len(raw))
	for i, r := range raw {
		docs[i] = Document{Title: DefaultTitle, Content: r.Content}
		if r.Title != nil {
			docs[i].Title = *r.Title
		}
	}
	if err := validateDocuments(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func validateDocuments(docs []Document) error {
	for i, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			return fmt.Errorf("document %d (%q) has no content", i, d.Title)
		}
	}
	return nil
}
