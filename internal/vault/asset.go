package vault

import "github.com/shopspring/decimal"

type AssetType string

const (
	AssetAudio AssetType = "audio"
	AssetVideo AssetType = "video"
	AssetImage AssetType = "image"
)

// Params is the creator's licensing policy for one asset. It is read-only
// to the negotiation core.
type Params struct {
	MinPrice          decimal.Decimal `json:"min_price"` // ETH
	RoyaltyPercentage float64         `json:"royalty_percentage"`
	DurationDays      int             `json:"duration_days"`
	AllowCommercial   bool            `json:"allow_commercial"`
	Exclusive         bool            `json:"exclusive"`
}

// Asset is a licensable work registered in the vault.
type Asset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Creator   string    `json:"creator"`
	Type      AssetType `json:"type"`
	Thumbnail string    `json:"thumbnail"`
	Params    Params    `json:"params"`
}

// RevenuePoint is one month of creator revenue, in ETH.
type RevenuePoint struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Forecast decimal.Decimal `json:"forecast"`
}
