package domain

import "time"

type AssetType string

const (
	AssetTypePhoto AssetType = "IMAGE"
	AssetTypeVideo AssetType = "VIDEO"
	AssetTypeOther AssetType = "OTHER"
)

// ParseAssetType maps the remote type string to an AssetType. Unknown kinds
// are reported as AssetTypeOther.
func ParseAssetType(s string) AssetType {
	switch s {
	case "IMAGE", "PHOTO", "image", "photo":
		return AssetTypePhoto
	case "VIDEO", "video":
		return AssetTypeVideo
	default:
		return AssetTypeOther
	}
}

type Asset struct {
	ID       string    `json:"id"`
	Type     AssetType `json:"type"`
	Filename string    `json:"filename"`
	TakenAt  time.Time `json:"takenAt"`
}

func (a *Asset) IsVideo() bool {
	return a != nil && a.Type == AssetTypeVideo
}

// SameAs reports whether both assets are non-nil and share an identifier.
func (a *Asset) SameAs(other *Asset) bool {
	return a != nil && other != nil && a.ID == other.ID
}
