package types

type IndicatorType string

const (
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeKDJ            IndicatorType = "kdj"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeVolume         IndicatorType = "volume"
)
