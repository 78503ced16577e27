package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Trading types a record may carry. Anything the feed sends that we don't
// recognize is normalized to SPOT, which is all the curated list contains today.
const (
	TradingTypeSpot    = "SPOT"
	TradingTypeFutures = "FUTURES"
)

// Validation failures for raw candidates. Matched with errors.Is by callers
// that want to report why a candidate was dropped.
var (
	ErrMissingExchangeName = errors.New("exchange_name is empty")
	ErrMissingExchangeUID  = errors.New("exchange_uid is empty")
	ErrMissingNickname     = errors.New("nickname is empty")
)

// TraderRecord is the canonical trader entity held in the catalog.
//
// The pair (ExchangeName, ExchangeUID) is the natural key: the store enforces
// it as a uniqueness constraint and the synchronizer uses it as the upsert
// conflict target. Rows are only ever written by a full resync, so there is
// no soft delete and no incremental mutation; gorm.Model is deliberately not
// embedded because its DeletedAt column would turn the wipe into a soft
// delete and block reuse of the natural key.
type TraderRecord struct {
	ID           uint      `gorm:"primarykey" json:"-"`
	ExchangeName string    `gorm:"column:exchange_name;uniqueIndex:idx_traders_natural_key;not null" json:"exchange_name"`
	ExchangeUID  string    `gorm:"column:exchange_uid;uniqueIndex:idx_traders_natural_key;not null" json:"exchange_uid"`
	Nickname     string    `gorm:"column:nickname;not null" json:"nickname"`
	AvatarURL    string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	ROI90d       float64   `gorm:"column:roi_90d" json:"roi_90d"`
	MaxDrawdown  float64   `gorm:"column:max_drawdown" json:"max_drawdown"`
	WinRate      float64   `gorm:"column:win_rate" json:"win_rate"`
	AUM          float64   `gorm:"column:aum" json:"aum,omitempty"`
	TradingType  string    `gorm:"column:trading_type" json:"trading_type"`
	ProfileURL   string    `gorm:"column:profile_url" json:"profile_url"`
	LastUpdated  time.Time `gorm:"column:last_updated" json:"last_updated"`
}

// TableName keeps the table name the store schema defines.
func (TraderRecord) TableName() string {
	return "master_traders"
}

// Key returns the natural key as a single comparable value.
func (t *TraderRecord) Key() string {
	return t.ExchangeName + "/" + t.ExchangeUID
}

// RawCandidate is a trader record as produced by a source adapter, typed but
// not yet validated. Untyped provider payloads stop at the adapter boundary;
// only RawCandidate crosses into the synchronizer.
type RawCandidate struct {
	ExchangeName string
	ExchangeUID  string
	Nickname     string
	AvatarURL    string
	ROI90d       float64
	MaxDrawdown  float64
	WinRate      float64
	AUM          float64
	TradingType  string
	ProfileURL   string
}

// Normalize validates a candidate and converts it into a canonical
// TraderRecord with LastUpdated set to now.
//
// Identity fields (exchange name, uid, nickname) are hard requirements; a
// candidate missing any of them is rejected. Numeric fields outside their
// plausible bounds are clamped rather than rejected so that a minor provider
// glitch in one number does not cost us the whole row.
func (r RawCandidate) Normalize(now time.Time) (TraderRecord, error) {
	if strings.TrimSpace(r.ExchangeName) == "" {
		return TraderRecord{}, ErrMissingExchangeName
	}
	if strings.TrimSpace(r.ExchangeUID) == "" {
		return TraderRecord{}, ErrMissingExchangeUID
	}
	if strings.TrimSpace(r.Nickname) == "" {
		return TraderRecord{}, fmt.Errorf("candidate %s/%s: %w", r.ExchangeName, r.ExchangeUID, ErrMissingNickname)
	}

	return TraderRecord{
		ExchangeName: strings.ToUpper(strings.TrimSpace(r.ExchangeName)),
		ExchangeUID:  strings.TrimSpace(r.ExchangeUID),
		Nickname:     strings.TrimSpace(r.Nickname),
		AvatarURL:    r.AvatarURL,
		ROI90d:       clamp(r.ROI90d, -1, maxROI),
		MaxDrawdown:  clamp(r.MaxDrawdown, 0, 1),
		WinRate:      clamp(r.WinRate, 0, 1),
		AUM:          clamp(r.AUM, 0, maxAUM),
		TradingType:  normalizeTradingType(r.TradingType),
		ProfileURL:   r.ProfileURL,
		LastUpdated:  now,
	}, nil
}

// Upper clamp bounds. ROI and AUM have no meaningful ceiling; these exist
// only so clamp has a closed interval to work with.
const (
	maxROI = 1e9
	maxAUM = 1e15
)

func normalizeTradingType(t string) string {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case TradingTypeFutures:
		return TradingTypeFutures
	default:
		return TradingTypeSpot
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
