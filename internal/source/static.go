package source

import (
	"context"

	"copytrade-scanner-go/internal/models"
)

// StaticAdapter serves the hand-curated list of verified spot grid bots.
// It is the default provider: the curated set is reviewed by a human before
// it ships, which is exactly the guarantee the live exchange endpoints can't
// give us.
type StaticAdapter struct{}

var _ Adapter = (*StaticAdapter)(nil)

// NewStaticAdapter creates the curated-list adapter.
func NewStaticAdapter() *StaticAdapter {
	return &StaticAdapter{}
}

// Name implements Adapter.
func (a *StaticAdapter) Name() string { return "static" }

// FetchCandidates returns the curated list. It never fails and never blocks.
func (a *StaticAdapter) FetchCandidates(_ context.Context) ([]models.RawCandidate, error) {
	return []models.RawCandidate{
		{
			ExchangeName: "BITGET",
			ExchangeUID:  "501492349424132770",
			Nickname:     "ETH/USDT Citadel Grid",
			AvatarURL:    "https://cryptologos.cc/logos/ethereum-eth-logo.svg?v=029",
			ROI90d:       0.4628,
			MaxDrawdown:  0.045,
			WinRate:      0.98,
			AUM:          1245000,
			TradingType:  models.TradingTypeSpot,
			ProfileURL:   "https://www.bitget.com/",
		},
		{
			ExchangeName: "BITGET",
			ExchangeUID:  "525202464857672250",
			Nickname:     "ZIG/USDT Growth Bot",
			AvatarURL:    "https://api.dicebear.com/7.x/bottts/svg?seed=ZIG",
			ROI90d:       1.3961,
			MaxDrawdown:  0.082,
			WinRate:      0.92,
			AUM:          850000,
			TradingType:  models.TradingTypeSpot,
			ProfileURL:   "https://www.bitget.com/",
		},
		{
			ExchangeName: "BITGET",
			ExchangeUID:  "492964768596919987",
			Nickname:     "XRP/USDT Ripple Effect",
			AvatarURL:    "https://cryptologos.cc/logos/xrp-xrp-logo.svg?v=029",
			ROI90d:       0.8202,
			MaxDrawdown:  0.051,
			WinRate:      0.95,
			AUM:          320000,
			TradingType:  models.TradingTypeSpot,
			ProfileURL:   "https://www.bitget.com/",
		},
	}, nil
}
