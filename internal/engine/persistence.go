package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/celerix-dev/celerix-records/internal/vault"
	"github.com/celerix-dev/celerix-records/pkg/engine"
)

// Persistence handles the disk I/O for the MemStore: one JSON file per collection.
type Persistence struct {
	DataDir   string
	mu        sync.Mutex // Protects concurrent writes to the filesystem
	masterKey []byte
	written   map[string]uint64 // last snapshot sequence saved per collection
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	// Ensure the data directory exists
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir, written: make(map[string]uint64)}, nil
}

// SetMasterKey turns on AES-GCM encryption of collection files.
func (p *Persistence) SetMasterKey(key []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.masterKey = key
}

// SaveCollection writes a single collection to disk atomically.
// Snapshots older than the last one written are dropped, so late goroutines cannot roll data back.
func (p *Persistence) SaveCollection(name string, seq uint64, docs map[uuid.UUID]engine.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != 0 && seq <= p.written[name] {
		return nil
	}

	filePath := filepath.Join(p.DataDir, name+".json")
	tempPath := filePath + ".tmp"

	byID := make(map[string]engine.Document, len(docs))
	for id, doc := range docs {
		byID[id.String()] = doc
	}
	bytes, err := json.MarshalIndent(byID, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}

	if p.masterKey != nil {
		if bytes, err = vault.Seal(bytes, p.masterKey); err != nil {
			return fmt.Errorf("encrypt collection %s: %w", name, err)
		}
	}

	// Write to a temporary file first, then swap it in.
	// A crash leaves either the old file or the new one, never a torn write.
	if err := os.WriteFile(tempPath, bytes, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		return err
	}
	p.written[name] = seq
	return nil
}

// LoadAll returns every collection found in the data directory.
func (p *Persistence) LoadAll() (map[string]map[uuid.UUID]engine.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	allData := make(map[string]map[uuid.UUID]engine.Document)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(file.Name(), ".json")

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", file.Name()).Msg("could not read collection file")
			continue // Skip unreadable files
		}
		if p.masterKey != nil {
			if content, err = vault.Open(content, p.masterKey); err != nil {
				return nil, fmt.Errorf("decrypt collection %s: %w", name, err)
			}
		}

		var byID map[string]engine.Document
		if err := json.Unmarshal(content, &byID); err != nil {
			log.Warn().Err(err).Str("file", file.Name()).Msg("could not decode collection file")
			continue
		}

		docs := make(map[uuid.UUID]engine.Document, len(byID))
		for rawID, doc := range byID {
			id, err := engine.ParseID(rawID)
			if err != nil {
				log.Warn().Err(err).Str("collection", name).Msg("skipping document with bad id")
				continue
			}
			docs[id] = doc
		}
		allData[name] = docs
	}
	return allData, nil
}
