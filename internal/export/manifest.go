package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"
)

// Manifest is a machine-readable sidecar describing one artifact.
type Manifest struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Format      Format    `json:"format"`
	Records     int       `json:"records"`
	SHA256      string    `json:"sha256"`
	Chars       int       `json:"chars"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewManifest describes payload as saved from ref.
func NewManifest(ref DocumentRef, format Format, payload string, records int, at time.Time) Manifest {
	return Manifest{
		Source:      ref.Location,
		Title:       ref.Title,
		Format:      format,
		Records:     records,
		SHA256:      computeSHA256Hex(payload),
		Chars:       len([]rune(payload)),
		GeneratedAt: at.UTC(),
	}
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ManifestPath returns the sidecar path next to an artifact.
func ManifestPath(artifactPath string) string {
	return artifactPath + ".manifest.json"
}

// WriteSidecar writes the manifest next to artifactPath.
func (m Manifest) WriteSidecar(artifactPath string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ManifestPath(artifactPath), b, 0o644)
}
