// Package universe holds the static security universe a backtest screens.
package universe

// nifty50 is the default universe: NSE large caps, bare symbols without the
// exchange suffix (the provider layer appends it).
var nifty50 = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "HINDUNILVR", "SBIN",
	"BHARTIARTL", "BAJFINANCE", "KOTAKBANK", "ITC", "LT", "ASIANPAINT",
	"HCLTECH", "MARUTI", "AXISBANK", "SUNPHARMA", "NTPC", "ULTRACEMCO",
	"TITAN", "NESTLEIND", "TATASTEEL", "POWERGRID", "JSWSTEEL", "TECHM",
	"ADANIENT", "ADANIPORTS", "CIPLA", "BAJAJFINSV", "COALINDIA", "ONGC",
	"HDFCLIFE", "GRASIM", "DRREDDY", "DIVISLAB", "BRITANNIA", "BPCL",
	"EICHERMOT", "HINDALCO", "UPL", "SBILIFE", "INDUSINDBK", "HEROMOTOCO",
	"SHREECEM", "TATAMOTORS", "WIPRO", "BAJAJ-AUTO", "M&M", "APOLLOHOSP",
	"ICICIPRULI",
}

// Default returns a copy of the built-in universe.
func Default() []string {
	out := make([]string, len(nifty50))
	copy(out, nifty50)
	return out
}
