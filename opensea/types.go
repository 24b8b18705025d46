package opensea

import (
	"fmt"
	"strconv"
	"strings"
)

// Asset is one NFT row from the OpenSea assets endpoint. Fields are immutable
// once fetched; the gallery only ever appends assets.
type Asset struct {
	ID                int64
	TokenID           string
	ContractAddress   string
	Name              string
	Description       string
	ImageURL          string
	ImageThumbnailURL string
	Permalink         string
	CollectionName    string
	Traits            []Trait
}

// Trait is a single attribute attached to an asset, such as "Background: Blue".
type Trait struct {
	Type  string
	Value string
}

// Key returns the contract/token composite key identifying an asset across
// fetches. Showcase item IDs use the same form.
func (a Asset) Key() string {
	return strings.ToLower(a.ContractAddress) + "/" + a.TokenID
}

// DisplayName returns the asset name, falling back to the token ID for assets
// minted without one.
func (a Asset) DisplayName() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return "#" + a.TokenID
}

// ThumbnailURL returns the small image variant, falling back to the full
// image for collections that never generated thumbnails.
func (a Asset) ThumbnailURL() string {
	if a.ImageThumbnailURL != "" {
		return a.ImageThumbnailURL
	}
	return a.ImageURL
}

// FullImageURL returns the full-size image, falling back to the thumbnail.
func (a Asset) FullImageURL() string {
	if a.ImageURL != "" {
		return a.ImageURL
	}
	return a.ImageThumbnailURL
}

type assetsResponse struct {
	Assets []wireAsset `json:"assets"`
}

type wireAsset struct {
	ID                int64          `json:"id"`
	TokenID           string         `json:"token_id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	ImageURL          string         `json:"image_url"`
	ImageThumbnailURL string         `json:"image_thumbnail_url"`
	Permalink         string         `json:"permalink"`
	AssetContract     wireContract   `json:"asset_contract"`
	Collection        wireCollection `json:"collection"`
	Traits            []wireTrait    `json:"traits"`
}

type wireContract struct {
	Address string `json:"address"`
}

type wireCollection struct {
	Name string `json:"name"`
}

type wireTrait struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

func (w wireAsset) toAsset() Asset {
	asset := Asset{
		ID:                w.ID,
		TokenID:           w.TokenID,
		ContractAddress:   w.AssetContract.Address,
		Name:              w.Name,
		Description:       w.Description,
		ImageURL:          w.ImageURL,
		ImageThumbnailURL: w.ImageThumbnailURL,
		Permalink:         w.Permalink,
		CollectionName:    w.Collection.Name,
	}
	for _, t := range w.Traits {
		asset.Traits = append(asset.Traits, Trait{
			Type:  t.TraitType,
			Value: traitValueString(t.Value),
		})
	}
	return asset
}

// traitValueString renders a trait value for display. OpenSea serializes
// numeric traits as JSON numbers and everything else as strings.
func traitValueString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
