package domain

type Album struct {
	ID         string `json:"id"`
	Name       string `json:"albumName"`
	AssetCount int    `json:"assetCount"`
}
