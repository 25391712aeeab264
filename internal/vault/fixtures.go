package vault

import "github.com/shopspring/decimal"

var seedAssets = []Asset{
	{
		ID:        "as-001",
		Name:      "Cyberpunk Soundscape Vol 1",
		Creator:   "0x71C...492",
		Type:      AssetAudio,
		Thumbnail: "https://picsum.photos/seed/music/400/225",
		Params: Params{
			MinPrice:          decimal.RequireFromString("0.2"),
			RoyaltyPercentage: 5,
			DurationDays:      365,
			AllowCommercial:   true,
			Exclusive:         false,
		},
	},
	{
		ID:        "as-002",
		Name:      "Neon Streets - 4K Loop",
		Creator:   "0x71C...492",
		Type:      AssetVideo,
		Thumbnail: "https://picsum.photos/seed/neon/400/225",
		Params: Params{
			MinPrice:          decimal.RequireFromString("0.5"),
			RoyaltyPercentage: 10,
			DurationDays:      180,
			AllowCommercial:   false,
			Exclusive:         true,
		},
	},
}

var seedRevenue = []RevenuePoint{
	{Month: "Jan", Revenue: decimal.RequireFromString("1.2"), Forecast: decimal.RequireFromString("1.2")},
	{Month: "Feb", Revenue: decimal.RequireFromString("1.5"), Forecast: decimal.RequireFromString("1.6")},
	{Month: "Mar", Revenue: decimal.RequireFromString("2.1"), Forecast: decimal.RequireFromString("2.3")},
	{Month: "Apr", Revenue: decimal.RequireFromString("1.8"), Forecast: decimal.RequireFromString("2.5")},
	{Month: "May", Revenue: decimal.RequireFromString("2.4"), Forecast: decimal.RequireFromString("3.2")},
	{Month: "Jun", Revenue: decimal.Zero, Forecast: decimal.RequireFromString("4.5")},
}

// SampleContract is the licence contract shown by the plain-language viewer.
const SampleContract = `
// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

contract CreatorVaultLicense {
    address public creator;
    address public licensee;
    uint256 public expiration;
    uint256 public royaltyBps;
    bool public isExclusive;

    constructor(
        address _creator,
        address _licensee,
        uint256 _duration,
        uint256 _royalty,
        bool _exclusive
    ) payable {
        creator = _creator;
        licensee = _licensee;
        expiration = block.timestamp + _duration;
        royaltyBps = _royalty;
        isExclusive = _exclusive;
    }

    function releaseRoyalty() external {
        require(block.timestamp <= expiration, "License expired");
        // Automated distribution logic here
    }
}
`
