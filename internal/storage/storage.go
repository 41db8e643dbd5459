package storage

import (
	"github.com/ashok9315-cmyk/profolia.art/internal/types"
	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

type Storage interface {
	CreateProfile(username, profession string) (types.Profile, error)
	GetProfile(id string) (types.Profile, error)

	CreateMediaAsset(asset *media.MediaAsset) (*media.MediaAsset, error)
	GetMediaAsset(id string) (*media.MediaAsset, error)
	ListMediaByProfile(profileID string) ([]media.MediaAsset, error)
	DeleteMediaAsset(id string) error
	UpdateDisplayOrder(profileID string, orderedIDs []string) error
	NextDisplayOrder(profileID string) (int, error)

	// ObjectKeys returns the set of every object key a media record points
	// at. The reconcile worker diffs it against the bucket contents.
	ObjectKeys() (map[string]struct{}, error)
}
