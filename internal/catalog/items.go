// Package catalog holds the read-only shop catalog and sale pricing rules.
// The catalog is supplied externally; the core never mutates it.
package catalog

// Rarity buckets for display ordering in the client.
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityEpic     Rarity = "epic"
)

// DefaultMaxStack applies to stackable items that don't set their own cap.
const DefaultMaxStack = 10

// Item is one shop catalog entry.
type Item struct {
	ID        string
	Name      string
	Rarity    Rarity
	BasePrice int64
	Icon      string
	Desc      string
	Stackable bool
	MaxStack  int
}

// EffectiveMaxStack returns the stack cap for stackable items, applying
// the default when unset. Non-stackable items always cap at 1.
func (i Item) EffectiveMaxStack() int {
	if !i.Stackable {
		return 1
	}
	if i.MaxStack <= 0 {
		return DefaultMaxStack
	}
	return i.MaxStack
}

// Items contains all available shop items in display order.
var Items = []Item{
	{ID: "usa-cap", Name: "USA Cap", Rarity: RarityCommon, BasePrice: 250, Icon: "assets/shop/items/usa-cap.png", Desc: "Clean white cap with the USA logo."},
	{ID: "usa-jersey", Name: "USA Jersey", Rarity: RarityUncommon, BasePrice: 600, Icon: "assets/shop/items/usa-jersey.png", Desc: "Official league jersey."},
	{ID: "usa-duffle", Name: "USA Duffle", Rarity: RarityRare, BasePrice: 1200, Icon: "assets/shop/items/usa-duffle.png", Desc: "Haul your gear in style."},
	{ID: "usa-baseball", Name: "USA Baseball", Rarity: RarityCommon, BasePrice: 180, Icon: "assets/shop/items/usa-baseball.png", Desc: "Collector baseball.", Stackable: true, MaxStack: 10},
	{ID: "usa-bat", Name: "USA Bat", Rarity: RarityUncommon, BasePrice: 700, Icon: "assets/shop/items/usa-bat.png", Desc: "Wood bat with league branding."},
	{ID: "usa-helmet", Name: "USA Helmet", Rarity: RarityRare, BasePrice: 1400, Icon: "assets/shop/items/usa-helmet.png", Desc: "Game-ready helmet."},
	{ID: "ronald-figure", Name: "Ronald Figure", Rarity: RarityEpic, BasePrice: 2200, Icon: "assets/shop/items/ronald-figure.png", Desc: "A rare collectible figure."},
	{ID: "nashville-duffle", Name: "Nashville Duffle", Rarity: RarityUncommon, BasePrice: 800, Icon: "assets/shop/items/nashville-duffle.png", Desc: "Knights-themed duffle bag."},
	{ID: "comet-baseball", Name: "Comet Eons Baseball", Rarity: RarityCommon, BasePrice: 200, Icon: "assets/shop/items/comet-baseball.png", Desc: "Team baseball with Comet Eons style.", Stackable: true, MaxStack: 10},
	{ID: "narf-cap", Name: "Narf Bullets Cap", Rarity: RarityCommon, BasePrice: 260, Icon: "assets/shop/items/narf-cap.png", Desc: "Cap with Narf Bullets colors."},
	{ID: "dreary-helmet", Name: "Dreary Helmet", Rarity: RarityRare, BasePrice: 1500, Icon: "assets/shop/items/dreary-helmet.png", Desc: "Helmet from the Dreary Lane vault."},
	{ID: "eggbeater-bat", Name: "Egg Beaters Bat", Rarity: RarityUncommon, BasePrice: 650, Icon: "assets/shop/items/eggbeater-bat.png", Desc: "Bat with Egg Beaters branding."},
}

var byID = func() map[string]Item {
	m := make(map[string]Item, len(Items))
	for _, it := range Items {
		m[it.ID] = it
	}
	return m
}()

// GetItem returns the item config for a given id.
func GetItem(id string) (Item, bool) {
	it, ok := byID[id]
	return it, ok
}

// AllItems returns all shop items in display order.
func AllItems() []Item {
	out := make([]Item, len(Items))
	copy(out, Items)
	return out
}
