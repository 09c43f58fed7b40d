// Package imagename generates collision-resistant names for uploaded images.
// A generated name is unique within its namespace regardless of the original
// filename, which is only consulted for its extension.
package imagename

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for image name generation strategies
type Generator interface {
	// Generate creates a storage name for an upload with the given original
	// filename.
	Generate(originalName string) string
}

// RandomGenerator names images with 32 hex characters of fresh UUID entropy
// plus the sanitized original extension.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) Generate(originalName string) string {
	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	return name + sanitizeExt(filepath.Ext(originalName))
}

// sanitizeExt keeps only a plain lowercase alphanumeric extension; anything
// else is dropped rather than carried into a storage key.
func sanitizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	ext = strings.ToLower(ext)
	for _, ch := range ext[1:] {
		if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') {
			return ""
		}
	}
	if len(ext) == 1 {
		return ""
	}
	return ext
}

// CustomFuncGenerator allows callers to provide their own naming function
type CustomFuncGenerator struct {
	GenerateFunc func(originalName string) string
}

func NewCustomFuncGenerator(fn func(originalName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) Generate(originalName string) string {
	return g.GenerateFunc(originalName)
}
