package gallery

import (
	"strings"

	"github.com/josebetomex/nft-gallery/opensea"
)

// showcaseAssets filters the accumulated list down to the items named by
// ids, each a contract/tokenID composite key. Output order follows the
// accumulated list, not the id list. A missing or empty id set selects
// nothing. The filter never fetches; it only sees what the loader has
// already accumulated.
func showcaseAssets(assets []opensea.Asset, ids []string) []opensea.Asset {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if key := normalizeItemID(id); key != "" {
			want[key] = true
		}
	}
	if len(want) == 0 {
		return nil
	}

	var selected []opensea.Asset
	for _, asset := range assets {
		if want[asset.Key()] {
			selected = append(selected, asset)
		}
	}
	return selected
}

// normalizeItemID canonicalizes a showcase id for comparison against
// Asset.Key: trimmed, lowercased contract, contract/tokenID shape required.
func normalizeItemID(id string) string {
	trimmed := strings.TrimSpace(id)
	contract, tokenID, ok := strings.Cut(trimmed, "/")
	if !ok || contract == "" || tokenID == "" {
		return ""
	}
	return strings.ToLower(contract) + "/" + tokenID
}
