package exchange

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/momentum-bot/internal/types"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// Service interfaces for mocking the Binance API

// KlinesService interface for fetching candlestick data.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// ListPricesService interface for fetching last prices.
type ListPricesService interface {
	Symbol(symbol string) ListPricesService
	Do(ctx context.Context) ([]*binance.SymbolPrice, error)
}

// GetAccountService interface for getting account info.
type GetAccountService interface {
	Do(ctx context.Context) (*binance.Account, error)
}

// ExchangeInfoService interface for fetching symbol metadata.
type ExchangeInfoService interface {
	Symbol(symbol string) ExchangeInfoService
	Do(ctx context.Context) (*binance.ExchangeInfo, error)
}

// ListPriceChangeStatsService interface for fetching 24h ticker statistics.
type ListPriceChangeStatsService interface {
	Do(ctx context.Context) ([]*binance.PriceChangeStats, error)
}

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// CreateOCOService interface for creating one-cancels-the-other sell brackets.
type CreateOCOService interface {
	Symbol(symbol string) CreateOCOService
	Side(side binance.SideType) CreateOCOService
	Quantity(quantity string) CreateOCOService
	Price(price string) CreateOCOService
	StopPrice(stopPrice string) CreateOCOService
	StopLimitPrice(stopLimitPrice string) CreateOCOService
	StopLimitTimeInForce(tif binance.TimeInForceType) CreateOCOService
	Do(ctx context.Context) (*binance.CreateOCOResponse, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewKlinesService() KlinesService
	NewListPricesService() ListPricesService
	NewGetAccountService() GetAccountService
	NewExchangeInfoService() ExchangeInfoService
	NewListPriceChangeStatsService() ListPriceChangeStatsService
	NewCreateOrderService() CreateOrderService
	NewCreateOCOService() CreateOCOService
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewKlinesService() KlinesService {
	return &realKlinesService{service: r.client.NewKlinesService()}
}

func (r *realBinanceClient) NewListPricesService() ListPricesService {
	return &realListPricesService{service: r.client.NewListPricesService()}
}

func (r *realBinanceClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

func (r *realBinanceClient) NewExchangeInfoService() ExchangeInfoService {
	return &realExchangeInfoService{service: r.client.NewExchangeInfoService()}
}

func (r *realBinanceClient) NewListPriceChangeStatsService() ListPriceChangeStatsService {
	return &realListPriceChangeStatsService{service: r.client.NewListPriceChangeStatsService()}
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceClient) NewCreateOCOService() CreateOCOService {
	return &realCreateOCOService{service: r.client.NewCreateOCOService()}
}

// Real service wrappers

type realKlinesService struct {
	service *binance.KlinesService
}

func (s *realKlinesService) Symbol(symbol string) KlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realKlinesService) Interval(interval string) KlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realKlinesService) Limit(limit int) KlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type realListPricesService struct {
	service *binance.ListPricesService
}

func (s *realListPricesService) Symbol(symbol string) ListPricesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realListPricesService) Do(ctx context.Context) ([]*binance.SymbolPrice, error) {
	return s.service.Do(ctx)
}

type realGetAccountService struct {
	service *binance.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.service.Do(ctx)
}

type realExchangeInfoService struct {
	service *binance.ExchangeInfoService
}

func (s *realExchangeInfoService) Symbol(symbol string) ExchangeInfoService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realExchangeInfoService) Do(ctx context.Context) (*binance.ExchangeInfo, error) {
	return s.service.Do(ctx)
}

type realListPriceChangeStatsService struct {
	service *binance.ListPriceChangeStatsService
}

func (s *realListPriceChangeStatsService) Do(ctx context.Context) ([]*binance.PriceChangeStats, error) {
	return s.service.Do(ctx)
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realCreateOCOService struct {
	service *binance.CreateOCOService
}

func (s *realCreateOCOService) Symbol(symbol string) CreateOCOService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOCOService) Side(side binance.SideType) CreateOCOService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOCOService) Quantity(quantity string) CreateOCOService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOCOService) Price(price string) CreateOCOService {
	s.service = s.service.Price(price)

	return s
}

func (s *realCreateOCOService) StopPrice(stopPrice string) CreateOCOService {
	s.service = s.service.StopPrice(stopPrice)

	return s
}

func (s *realCreateOCOService) StopLimitPrice(stopLimitPrice string) CreateOCOService {
	s.service = s.service.StopLimitPrice(stopLimitPrice)

	return s
}

func (s *realCreateOCOService) StopLimitTimeInForce(tif binance.TimeInForceType) CreateOCOService {
	s.service = s.service.StopLimitTimeInForce(tif)

	return s
}

func (s *realCreateOCOService) Do(ctx context.Context) (*binance.CreateOCOResponse, error) {
	return s.service.Do(ctx)
}

// BinanceExchange implements Exchange using the Binance spot API.
// It is stateless - all data is fetched directly from the Binance API.
type BinanceExchange struct {
	client BinanceClient
}

// NewBinanceExchange creates a new Binance exchange client.
// If config.UseTestnet is true, connects to Binance Testnet.
// If config.BaseURL is set, it takes precedence over UseTestnet.
func NewBinanceExchange(config BinanceConfig) (*BinanceExchange, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.UseTestnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.APIKey, config.SecretKey)

	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return &BinanceExchange{
		client: &realBinanceClient{client: client},
	}, nil
}

// newBinanceExchangeWithClient creates a Binance exchange with a custom client.
// This is used for testing with mock clients.
func newBinanceExchangeWithClient(client BinanceClient) *BinanceExchange {
	return &BinanceExchange{
		client: client,
	}
}

// GetAccountBalances implements Exchange.
func (b *BinanceExchange) GetAccountBalances(ctx context.Context) (types.AccountSnapshot, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return types.AccountSnapshot{}, errors.Wrap(errors.ErrCodeExchangeUnavailable, "failed to get account info from Binance", err)
	}

	balances := make(map[string]float64, len(account.Balances))

	for _, balance := range account.Balances {
		free, parseErr := strconv.ParseFloat(balance.Free, 64)
		if parseErr != nil {
			continue
		}

		if free > 0 {
			balances[balance.Asset] = free
		}
	}

	return types.AccountSnapshot{
		Balances: balances,
		Time:     time.Now(),
	}, nil
}

// GetPrice implements Exchange.
func (b *BinanceExchange) GetPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to get price for %s", symbol)
	}

	for _, p := range prices {
		if p.Symbol == symbol {
			price, parseErr := strconv.ParseFloat(p.Price, 64)
			if parseErr != nil {
				return 0, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, parseErr, "invalid price for %s", symbol)
			}

			return price, nil
		}
	}

	return 0, errors.Newf(errors.ErrCodeDataNotFound, "no price returned for %s", symbol)
}

// GetPrices implements Exchange.
func (b *BinanceExchange) GetPrices(ctx context.Context) (map[string]float64, error) {
	listed, err := b.client.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExchangeUnavailable, "failed to get prices from Binance", err)
	}

	prices := make(map[string]float64, len(listed))

	for _, p := range listed {
		price, parseErr := strconv.ParseFloat(p.Price, 64)
		if parseErr != nil {
			continue
		}

		prices[p.Symbol] = price
	}

	return prices, nil
}

// GetSymbolFilters implements Exchange. It parses the LOT_SIZE, PRICE_FILTER
// and MIN_NOTIONAL (or NOTIONAL) exchange filters for the symbol.
func (b *BinanceExchange) GetSymbolFilters(ctx context.Context, symbol string) (types.SymbolFilters, error) {
	info, err := b.client.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.SymbolFilters{}, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to get exchange info for %s", symbol)
	}

	for _, s := range info.Symbols {
		if s.Symbol == symbol {
			return parseSymbolFilters(s)
		}
	}

	return types.SymbolFilters{}, errors.Newf(errors.ErrCodeFilterDataMissing, "symbol %s not found in exchange info", symbol)
}

// GetCandles implements Exchange.
func (b *BinanceExchange) GetCandles(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch klines for %s", symbol)
	}

	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		candle, convertErr := convertKlineToCandle(k)
		if convertErr != nil {
			return nil, convertErr
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

// GetDailyStats implements Exchange.
func (b *BinanceExchange) GetDailyStats(ctx context.Context) ([]types.DailyStat, error) {
	tickers, err := b.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExchangeUnavailable, "failed to get 24h ticker stats from Binance", err)
	}

	stats := make([]types.DailyStat, 0, len(tickers))

	for _, t := range tickers {
		quoteVolume, parseErr := strconv.ParseFloat(t.QuoteVolume, 64)
		if parseErr != nil {
			continue
		}

		stats = append(stats, types.DailyStat{
			Symbol:      t.Symbol,
			QuoteVolume: quoteVolume,
		})
	}

	return stats, nil
}

// SubmitMarketBuy implements Exchange. The returned fill price is present
// only when the order response carried fills.
func (b *BinanceExchange) SubmitMarketBuy(ctx context.Context, symbol string, quantity decimal.Decimal) (types.MarketBuyResult, error) {
	resp, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		Quantity(quantity.String()).
		Do(ctx)
	if err != nil {
		return types.MarketBuyResult{}, errors.Wrapf(errors.ErrCodeOrderFailed, err, "market buy rejected for %s", symbol)
	}

	executedQty, err := decimal.NewFromString(resp.ExecutedQuantity)
	if err != nil {
		return types.MarketBuyResult{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid executed quantity for %s", symbol)
	}

	fillPrice := optional.None[float64]()

	if len(resp.Fills) > 0 {
		price, parseErr := strconv.ParseFloat(resp.Fills[0].Price, 64)
		if parseErr == nil {
			fillPrice = optional.Some(price)
		}
	}

	return types.MarketBuyResult{
		Symbol:      symbol,
		ExecutedQty: executedQty,
		FillPrice:   fillPrice,
	}, nil
}

// SubmitExitBracket implements Exchange. The bracket is expressed as a single
// OCO sell order: a resting limit leg at the take-profit price and a
// stop-loss-limit leg at the stop trigger/limit prices, both GTC.
func (b *BinanceExchange) SubmitExitBracket(ctx context.Context, symbol string, bracket types.ExitBracket) error {
	_, err := b.client.NewCreateOCOService().
		Symbol(symbol).
		Side(binance.SideTypeSell).
		Quantity(bracket.Quantity.String()).
		Price(bracket.TakeProfitPrice.String()).
		StopPrice(bracket.StopTriggerPrice.String()).
		StopLimitPrice(bracket.StopLimitPrice.String()).
		StopLimitTimeInForce(binance.TimeInForceTypeGTC).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeBracketFailed, err, "exit bracket rejected for %s", symbol)
	}

	return nil
}

// Helper functions

// parseSymbolFilters extracts step/tick/min-quantity/min-notional values from
// the raw Binance filter list. A missing filter is reported as
// ErrCodeFilterDataMissing so callers can skip the symbol.
func parseSymbolFilters(s binance.Symbol) (types.SymbolFilters, error) {
	filters := types.SymbolFilters{Symbol: s.Symbol}

	var haveLot, havePrice, haveNotional bool

	for _, f := range s.Filters {
		filterType, _ := f["filterType"].(string)

		switch filterType {
		case "LOT_SIZE":
			stepSize, err := decimalFilterValue(f, "stepSize")
			if err != nil {
				return types.SymbolFilters{}, err
			}

			minQty, err := decimalFilterValue(f, "minQty")
			if err != nil {
				return types.SymbolFilters{}, err
			}

			filters.StepSize = stepSize
			filters.MinQty = minQty
			haveLot = true
		case "PRICE_FILTER":
			tickSize, err := decimalFilterValue(f, "tickSize")
			if err != nil {
				return types.SymbolFilters{}, err
			}

			filters.TickSize = tickSize
			havePrice = true
		case "MIN_NOTIONAL", "NOTIONAL":
			minNotional, err := decimalFilterValue(f, "minNotional")
			if err != nil {
				return types.SymbolFilters{}, err
			}

			filters.MinNotional = minNotional
			haveNotional = true
		}
	}

	if !haveLot || !havePrice || !haveNotional {
		return types.SymbolFilters{}, errors.Newf(errors.ErrCodeFilterDataMissing,
			"incomplete filter metadata for %s (lot=%t price=%t notional=%t)",
			s.Symbol, haveLot, havePrice, haveNotional)
	}

	return filters, nil
}

func decimalFilterValue(filter map[string]interface{}, key string) (decimal.Decimal, error) {
	raw, ok := filter[key].(string)
	if !ok {
		return decimal.Zero, errors.Newf(errors.ErrCodeFilterDataMissing, "filter value %s missing", key)
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid filter value %s=%q", key, raw)
	}

	return value, nil
}

func convertKlineToCandle(k *binance.Kline) (types.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return types.Candle{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid kline open", err)
	}

	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return types.Candle{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid kline high", err)
	}

	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return types.Candle{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid kline low", err)
	}

	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return types.Candle{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid kline close", err)
	}

	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return types.Candle{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "invalid kline volume", err)
	}

	return types.Candle{
		OpenTime: time.UnixMilli(k.OpenTime),
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Volume:   volume,
	}, nil
}

// Ensure BinanceExchange implements Exchange.
var _ Exchange = (*BinanceExchange)(nil)
