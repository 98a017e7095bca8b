package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidBracket       ErrorCode = 103

	// Data errors (200-299)
	ErrCodeDataNotFound      ErrorCode = 200
	ErrCodeQueryFailed       ErrorCode = 201
	ErrCodeInsufficientData  ErrorCode = 202
	ErrCodeFilterDataMissing ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Sizing errors (400-499)
	ErrCodeInsufficientBalance ErrorCode = 400

	// Exchange filter errors (500-599)
	ErrCodeBelowMinQty      ErrorCode = 500
	ErrCodeBelowMinNotional ErrorCode = 501

	// Trading errors (600-699)
	ErrCodeOrderFailed     ErrorCode = 600
	ErrCodeBracketFailed   ErrorCode = 601
	ErrCodeEntryInFlight   ErrorCode = 602
	ErrCodeFillUnavailable ErrorCode = 603

	// Market data errors (700-799)
	ErrCodeExchangeUnavailable   ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
)
