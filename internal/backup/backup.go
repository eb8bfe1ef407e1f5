// Package backup moves the list store's durable records in and out of a
// single passphrase-encrypted document.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bhi-elliot/ScrappyMart/internal/liststore"
	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

const formatVersion = 1

var ErrInvalidBackup = errors.New("backup: invalid document")

// Document is the plaintext form of a backup.
type Document struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Records   map[string]string `json:"records"`
}

var recordKeys = []string{liststore.KeyLists, liststore.KeyActiveList}

// Export reads both records from p and seals them under passphrase.
// Absent records are omitted.
func Export(ctx context.Context, p liststore.Persister, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("backup: passphrase is required")
	}

	doc := Document{
		Version:   formatVersion,
		CreatedAt: time.Now().UTC(),
		Records:   make(map[string]string, len(recordKeys)),
	}
	for _, key := range recordKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, ok, err := p.Load(key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		if ok {
			doc.Records[key] = v
		}
	}

	plaintext, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return Seal(plaintext, passphrase)
}

// Restore opens data and writes its records back through p. The lists record
// must parse as a list collection; nothing is written if it does not.
func Restore(p liststore.Persister, data []byte, passphrase string) (Document, error) {
	plaintext, err := Open(data, passphrase)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if doc.Version != formatVersion {
		return Document{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, doc.Version)
	}
	if raw, ok := doc.Records[liststore.KeyLists]; ok {
		var lists []model.List
		if err := json.Unmarshal([]byte(raw), &lists); err != nil {
			return Document{}, fmt.Errorf("%w: lists record: %v", ErrInvalidBackup, err)
		}
	}

	for _, key := range recordKeys {
		v, ok := doc.Records[key]
		if !ok {
			continue
		}
		if err := p.Save(key, v); err != nil {
			return Document{}, fmt.Errorf("save %s: %w", key, err)
		}
	}
	return doc, nil
}
