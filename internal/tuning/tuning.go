package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	RequestExpirySeconds int `yaml:"request_expiry_seconds"`
	SessionIdleSeconds   int `yaml:"session_idle_seconds"`
	SweepEverySeconds    int `yaml:"sweep_every_seconds"`

	MaxCoinsPerTrade int64 `yaml:"max_coins_per_trade"`
	MaxItemsPerOffer int   `yaml:"max_items_per_offer"`

	RateLimits RateLimits `yaml:"rate_limits"`
}

type RateLimits struct {
	TradeRequestWindowSeconds int `yaml:"trade_request_window_seconds"`
	TradeRequestMax           int `yaml:"trade_request_max"`
	OfferUpdateWindowSeconds  int `yaml:"offer_update_window_seconds"`
	OfferUpdateMax            int `yaml:"offer_update_max"`
	ConfirmWindowSeconds      int `yaml:"confirm_window_seconds"`
	ConfirmMax                int `yaml:"confirm_max"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:      "1.0",
		RequestExpirySeconds: 60,
		SessionIdleSeconds:   600,
		SweepEverySeconds:    5,
		MaxCoinsPerTrade:     1_000_000,
		MaxItemsPerOffer:     32,
		RateLimits: RateLimits{
			TradeRequestWindowSeconds: 60,
			TradeRequestMax:           5,
			OfferUpdateWindowSeconds:  60,
			OfferUpdateMax:            20,
			ConfirmWindowSeconds:      60,
			ConfirmMax:                10,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
