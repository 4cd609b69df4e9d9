package index

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	ManifestFile  = "manifest.yaml"
	DataFile      = "index.json"
	FormatVersion = 1
)

// Manifest describes a persisted index directory
type Manifest struct {
	FormatVersion  int       `yaml:"format_version"`
	EmbeddingModel string    `yaml:"embedding_model"`
	Dimension      int       `yaml:"dimension"`
	Count          int       `yaml:"count"`
	CreatedAt      time.Time `yaml:"created_at"`
	Checksum       string    `yaml:"sha256"`
}

type record struct {
	entity.Chunk
	Vector []float32 `json:"vector"`
}

type dataFile struct {
	Records []record `json:"records"`
}

// Exists reports whether a published index lives at path
func Exists(path string) bool {
	info, err := os.Stat(filepath.Join(path, ManifestFile))
	return err == nil && info.Mode().IsRegular()
}

// Save publishes ix at path. Files are written into a hidden sibling directory
// and renamed into place, so readers see either no index or a complete one.
func Save(ix *Index, path string) error {
	if Exists(path) {
		return fmt.Errorf("save index %s: %w", path, entity.ErrIndexExists)
	}

	path = filepath.Clean(path)
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create index parent dir: %w", err)
	}

	tmp := filepath.Join(parent, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), uuid.NewString()))
	if err := os.Mkdir(tmp, 0o755); err != nil {
		return fmt.Errorf("create temp index dir: %w", err)
	}

	published := false
	defer func() {
		if !published {
			os.RemoveAll(tmp)
		}
	}()

	data := dataFile{Records: make([]record, ix.Len())}
	for i := range ix.chunks {
		data.Records[i] = record{Chunk: ix.chunks[i], Vector: ix.vectors[i]}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode index data: %w", err)
	}
	if err := writeFileSync(filepath.Join(tmp, DataFile), raw); err != nil {
		return err
	}

	sum := sha256.Sum256(raw)
	manifest := Manifest{
		FormatVersion:  FormatVersion,
		EmbeddingModel: ix.model,
		Dimension:      ix.dimension,
		Count:          ix.Len(),
		CreatedAt:      time.Now().UTC(),
		Checksum:       hex.EncodeToString(sum[:]),
	}

	manifestRaw, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("encode index manifest: %w", err)
	}
	if err := writeFileSync(filepath.Join(tmp, ManifestFile), manifestRaw); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish index: %w", err)
	}
	published = true

	syncDir(parent)
	return nil
}

// Load reads and verifies the index at path. Every failure wraps entity.ErrIndexUnavailable.
func Load(path string) (*Index, error) {
	ix, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrIndexUnavailable, path, err)
	}
	return ix, nil
}

func load(path string) (*Index, error) {
	manifest, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if manifest.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", manifest.FormatVersion)
	}

	raw, err := os.ReadFile(filepath.Join(path, DataFile))
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(raw)
	if hex.EncodeToString(sum[:]) != manifest.Checksum {
		return nil, errors.New("data checksum mismatch")
	}

	var data dataFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if len(data.Records) != manifest.Count {
		return nil, fmt.Errorf("manifest lists %d chunks, data has %d", manifest.Count, len(data.Records))
	}

	ix := New(manifest.EmbeddingModel, manifest.Dimension)
	chunks := make([]entity.Chunk, len(data.Records))
	vectors := make([][]float32, len(data.Records))
	for i, r := range data.Records {
		chunks[i] = r.Chunk
		vectors[i] = r.Vector
	}
	if err := ix.Add(chunks, vectors); err != nil {
		return nil, err
	}
	return ix, nil
}

// ReadManifest decodes the manifest of the index at path
func ReadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(path, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no index at %s", path)
		}
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

func writeFileSync(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(name), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(name), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(name), err)
	}
	return f.Close()
}

// syncDir persists the rename; failures are ignored as some filesystems do not support it
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
