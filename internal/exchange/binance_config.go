package exchange

import (
	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// BinanceConfig contains credentials and endpoint selection for Binance.
type BinanceConfig struct {
	APIKey    string `yaml:"api_key" validate:"required"`
	SecretKey string `yaml:"secret_key" validate:"required"`
	// BaseURL overrides the API endpoint. Takes precedence over UseTestnet.
	BaseURL    string `yaml:"base_url"`
	UseTestnet bool   `yaml:"use_testnet"`
}

// Validate validates the BinanceConfig struct.
func (c *BinanceConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance config", err)
	}

	return nil
}
