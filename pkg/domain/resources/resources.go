// Package resources implements the MCP Resources surface: domain knowledge
// (metric glossaries, recognized OS/run-type identifiers) and query
// examples exposed as domain://glossary/* and domain://examples/* URIs, so
// a client can fetch them the same way it calls a tool.
package resources

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed jsondata/glossary/*.json jsondata/examples/*.json
var jsonData embed.FS

// Resource is one MCP resource: metadata plus its parsed JSON content.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Content     map[string]interface{}
}

// Meta is the resources/list entry shape (metadata only, no content).
type Meta struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// ToMeta converts a Resource to its resources/list representation.
func (r Resource) ToMeta() Meta {
	return Meta{URI: r.URI, Name: r.Name, Description: r.Description, MimeType: r.MimeType}
}

// ReadContent is one entry of the resources/read "contents" array.
type ReadContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// ReadResult is the resources/read response shape.
type ReadResult struct {
	Contents []ReadContent `json:"contents"`
}

// Registry holds resources loaded from the embedded glossary/examples tree.
type Registry struct {
	resources map[string]Resource
	order     []string
}

// NewRegistry loads every embedded glossary/* and examples/* JSON file into
// a Registry keyed by its domain://<category>/<stem> URI.
func NewRegistry(logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{resources: make(map[string]Resource)}

	categories := []struct {
		dir      string
		prefix   string
		category string
	}{
		{"jsondata/glossary", "domain://glossary/", "Domain Glossary"},
		{"jsondata/examples", "domain://examples/", "Query Examples"},
	}

	for _, c := range categories {
		entries, err := jsonData.ReadDir(c.dir)
		if err != nil {
			return nil, fmt.Errorf("read embedded dir %s: %w", c.dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			if err := r.loadOne(path.Join(c.dir, entry.Name()), c.prefix, c.category); err != nil {
				logger.Error("resources.load_failed", "file", entry.Name(), "error", err)
				continue
			}
		}
	}

	logger.Info("resources.loaded", "count", len(r.resources))
	return r, nil
}

func (r *Registry) loadOne(filePath, uriPrefix, category string) error {
	raw, err := jsonData.ReadFile(filePath)
	if err != nil {
		return err
	}

	var content map[string]interface{}
	if err := json.Unmarshal(raw, &content); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}

	stem := strings.TrimSuffix(path.Base(filePath), ".json")
	uri := uriPrefix + stem

	description, _ := content["description"].(string)
	if description == "" {
		description = fmt.Sprintf("%s: %s", category, titleize(stem))
	}
	name, _ := content["name"].(string)
	if name == "" {
		name = titleize(stem)
	}

	resource := Resource{
		URI:         uri,
		Name:        name,
		Description: description,
		MimeType:    "application/json",
		Content:     content,
	}

	if _, exists := r.resources[uri]; !exists {
		r.order = append(r.order, uri)
	}
	r.resources[uri] = resource
	return nil
}

func titleize(stem string) string {
	words := strings.Split(strings.ReplaceAll(stem, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// List returns every resource's metadata, sorted by URI.
func (r *Registry) List() []Meta {
	uris := make([]string, 0, len(r.resources))
	for uri := range r.resources {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	out := make([]Meta, 0, len(uris))
	for _, uri := range uris {
		out = append(out, r.resources[uri].ToMeta())
	}
	return out
}

// Read returns the resources/read payload for uri, or false if not found.
func (r *Registry) Read(uri string) (ReadResult, bool) {
	resource, ok := r.resources[uri]
	if !ok {
		return ReadResult{}, false
	}
	encoded, err := json.MarshalIndent(resource.Content, "", "  ")
	if err != nil {
		return ReadResult{}, false
	}
	return ReadResult{
		Contents: []ReadContent{{URI: resource.URI, MimeType: resource.MimeType, Text: string(encoded)}},
	}, true
}

// Content returns the raw parsed content of uri, for internal (non-MCP)
// callers such as the LLM orchestrator's prompt assembly.
func (r *Registry) Content(uri string) (map[string]interface{}, bool) {
	resource, ok := r.resources[uri]
	if !ok {
		return nil, false
	}
	return resource.Content, true
}
