package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ContentPipeline/internal/ports"
)

// Artifact file names written under artifacts/<topic-id>/.
const (
	SourcesFile   = "sources.json"
	ChunksFile    = "research_chunks.json"
	NarrativeFile = "narrative.md"
	ScriptFile    = "script.md"
	ArticleFile   = "article.md"
	ShotListFile  = "shotlist.json"
)

// AllArtifacts lists every file a complete run leaves behind.
var AllArtifacts = []string{SourcesFile, ChunksFile, NarrativeFile, ScriptFile, ArticleFile, ShotListFile}

// FileStore writes stage outputs to a directory per topic.
type FileStore struct {
	root string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore roots the store at dir; directories are created lazily.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Path returns where name is stored for topicID.
func (s *FileStore) Path(topicID, name string) string {
	return filepath.Join(s.root, topicID, name)
}

// WriteJSON stores v as indented JSON.
func (s *FileStore) WriteJSON(topicID, name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return s.write(topicID, name, raw)
}

// WriteText stores content verbatim.
func (s *FileStore) WriteText(topicID, name, content string) error {
	return s.write(topicID, name, []byte(content))
}

func (s *FileStore) write(topicID, name string, raw []byte) error {
	path := s.Path(topicID, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// FixtureDir serves simulation fixtures from a flat directory.
type FixtureDir struct {
	dir string
}

var _ ports.FixtureSource = (*FixtureDir)(nil)

// NewFixtureDir points at the fixture directory.
func NewFixtureDir(dir string) *FixtureDir {
	return &FixtureDir{dir: dir}
}

// ReadFixture returns the content of dir/name.
func (f *FixtureDir) ReadFixture(name string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}
	return raw, nil
}
