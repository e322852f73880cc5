package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Version identifies one build output. Hash depends only on catalog content,
// so equal hashes mean nothing changed upstream; Timestamp and RunID only
// identify the run.
type Version struct {
	Hash      string `json:"hash" yaml:"hash"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	RunID     string `json:"runId" yaml:"runId"`
	Types     int    `json:"types" yaml:"types"`
	OneOfs    int    `json:"oneOfs" yaml:"oneOfs"`
	Enums     int    `json:"enums" yaml:"enums"`
	Endpoints int    `json:"endpoints" yaml:"endpoints"`
}

// ContentHash returns the hex SHA-256 of the catalog's JSON encoding.
func ContentHash(c *Catalog) (string, error) {
	data, err := Marshal(c, FormatJSON)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// NewVersion creates the version record of c, stamped with the current time.
func NewVersion(c *Catalog) (*Version, error) {
	return newVersion(c, time.Now(), uuid.NewString())
}

func newVersion(c *Catalog, now time.Time, runID string) (*Version, error) {
	hash, err := ContentHash(c)
	if err != nil {
		return nil, err
	}
	return &Version{
		Hash:      hash,
		Timestamp: now.UTC().Format(time.RFC3339),
		RunID:     runID,
		Types:     len(c.Types),
		OneOfs:    len(c.OneOfs),
		Enums:     len(c.Enums),
		Endpoints: len(c.Endpoints),
	}, nil
}

// Changed reports whether the catalog content differs from prev.
func (v *Version) Changed(prev *Version) bool {
	return prev == nil || prev.Hash != v.Hash
}
