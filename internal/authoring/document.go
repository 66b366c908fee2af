package authoring

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/examprep/internal/block"
)

// DocumentVersion is written by Export. Import accepts any v1.x.y.
const DocumentVersion = "v1.0.0"

// Document is the YAML exchange form of a lesson. TASK_GROUP blocks are
// spelled out as fields instead of the serialized record used in storage.
type Document struct {
	Version string     `yaml:"version"`
	Title   string     `yaml:"title"`
	Blocks  []DocBlock `yaml:"blocks"`
}

// DocBlock is one block of a Document.
type DocBlock struct {
	Type    string  `yaml:"type"`
	Content string  `yaml:"content,omitempty"`
	TopicID *string `yaml:"topicId,omitempty"`
	Count   *int    `yaml:"count,omitempty"`
}

// Export writes the editor's title and blocks as a YAML document.
func (e *Editor) Export(w io.Writer) error {
	e.mu.Lock()
	doc := Document{Version: DocumentVersion, Title: e.title}
	for _, en := range e.entries {
		doc.Blocks = append(doc.Blocks, toDocBlock(en.Block))
	}
	e.mu.Unlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode lesson document: %w", err)
	}
	return enc.Close()
}

// Import reads a YAML document and replaces the editor's title and
// blocks. Blocks are not validated here; Submit does that.
func (e *Editor) Import(r io.Reader) error {
	title, blocks, err := ReadDocument(r)
	if err != nil {
		return err
	}
	e.Replace(title, blocks)
	return nil
}

// ReadDocument parses a lesson document.
func ReadDocument(r io.Reader) (string, []block.Block, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return "", nil, fmt.Errorf("decode lesson document: %w", err)
	}

	v := doc.Version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", nil, fmt.Errorf("lesson document: invalid version %q", doc.Version)
	}
	if major := semver.Major(v); major != semver.Major(DocumentVersion) {
		return "", nil, fmt.Errorf("lesson document: unsupported version %s (want %s)", doc.Version, semver.Major(DocumentVersion))
	}

	blocks := make([]block.Block, len(doc.Blocks))
	for i, db := range doc.Blocks {
		b, err := fromDocBlock(db)
		if err != nil {
			return "", nil, fmt.Errorf("lesson document: block %d: %w", i+1, err)
		}
		blocks[i] = b
	}
	return doc.Title, blocks, nil
}

func toDocBlock(b block.Block) DocBlock {
	if g, ok := b.Content.(block.TaskGroup); ok {
		count := g.Count
		return DocBlock{Type: string(block.TagTaskGroup), TopicID: g.TopicID, Count: &count}
	}
	w := block.Encode(b)
	return DocBlock{Type: w.Type, Content: w.Content}
}

func fromDocBlock(db DocBlock) (block.Block, error) {
	tag, err := block.ParseTag(db.Type)
	if err != nil {
		return block.Block{}, err
	}
	if tag == block.TagTaskGroup {
		g := block.TaskGroup{Count: block.DefaultTaskGroupCount}
		if db.Count != nil {
			g.Count = *db.Count
		}
		if db.TopicID != nil {
			if id := strings.TrimSpace(*db.TopicID); id != "" {
				g.TopicID = &id
			}
		}
		return block.Block{Content: g}, nil
	}
	return block.Decode(block.Wire{Type: db.Type, Content: db.Content})
}
