package objectstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// KeyPrefix is the namespace every media object lives under. The reconcile
// worker sweeps this prefix when looking for orphaned objects.
const KeyPrefix = "profiles/"

// GenerateKey creates a unique object key for a profile's file. The original
// file name contributes only its extension (lower-cased); the base name is
// replaced with a UUID so two uploads can never collide, even for the same
// file uploaded twice.
func GenerateKey(profileID string, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s%s/media/%s%s", KeyPrefix, profileID, uuid.New().String(), ext)
}
