package collector

import "strings"

// DefaultSymbols is the NSE F&O universe scanned when no list is configured.
var DefaultSymbols = []string{
	"360ONE", "ABB", "ABCAPITAL", "ADANIENSOL", "ADANIENT", "ADANIGREEN", "ADANIPORTS", "ALKEM",
	"AMBER", "AMBUJACEM", "ANGELONE", "APLAPOLLO", "APOLLOHOSP", "ASHOKLEY", "ASIANPAINT", "ASTRAL",
	"AUBANK", "AUROPHARMA", "AXISBANK", "BAJAJ_AUTO", "BAJAJFINSV", "BAJFINANCE", "BANDHANBNK",
	"BANKBARODA", "BANKINDIA", "BANKNIFTY", "BDL", "BEL", "BHARATFORG", "BHARTIARTL", "BHEL",
	"BIOCON", "BLUESTARCO", "BOSCHLTD", "BPCL", "BRITANNIA", "BSE", "CAMS", "CANBK", "CDSL",
	"CGPOWER", "CHOLAFIN", "CIPLA", "CNXFINANCE", "CNXMIDCAP", "COALINDIA", "COFORGE", "COLPAL",
	"CONCOR", "CROMPTON", "CUMMINSIND", "CYIENT", "DABUR", "DALBHARAT", "DELHIVERY", "DIVISLAB",
	"DIXON", "DLF", "DMART", "DRREDDY", "EICHERMOT", "ETERNAL", "EXIDEIND", "FEDERALBNK", "FORTIS",
	"GAIL", "GLENMARK", "GMRAIRPORT", "GODREJCP", "GODREJPROP", "GRASIM", "HAL", "HAVELLS",
	"HCLTECH", "HDFCAMC", "HDFCBANK", "HDFCLIFE", "HEROMOTOCO", "HFCL", "HINDALCO", "HINDPETRO",
	"HINDUNILVR", "HINDZINC", "HUDCO", "ICICIBANK", "ICICIGI", "ICICIPRULI", "IDEA", "IDFCFIRSTB",
	"IEX", "IGL", "IIFL", "INDHOTEL", "INDIANB", "INDIGO", "INDUSINDBK", "INDUSTOWER", "INFY",
	"INOXWIND", "IOC", "IRCTC", "IREDA", "IRFC", "ITC", "JINDALSTEL", "JIOFIN", "JSWENERGY",
	"JSWSTEEL", "JUBLFOOD", "KALYANKJIL", "KAYNES", "KEI", "KFINTECH", "KOTAKBANK", "KPITTECH",
	"LAURUSLABS", "LICHSGFIN", "LICI", "LODHA", "LT", "LTF", "LTIM", "LUPIN", "M&M", "MANAPPURAM",
	"MANKIND", "MARICO", "MARUTI", "MAXHEALTH", "MAZDOCK", "MCX", "MFSL", "MOTHERSON", "MPHASIS",
	"MUTHOOTFIN", "NATIONALUM", "NAUKRI", "NBCC", "NCC", "NESTLEIND", "NHPC", "NIFTY", "NIFTYJR",
	"NMDC", "NTPC", "NUVAMA", "NYKAA", "OBEROIRLTY", "OFSS", "OIL", "ONGC", "PAGEIND", "PATANJALI",
	"PAYTM", "PERSISTENT", "PETRONET", "PFC", "PGEL", "PHOENIXLTD", "PIDILITIND", "PIIND", "PNB",
	"PNBHOUSING", "POLICYBZR", "POLYCAB", "POWERGRID", "PPLPHARMA", "PRESTIGE", "RBLBANK", "RECLTD",
	"RELIANCE", "RVNL", "SAIL", "SAMMAANCAP", "SBICARD", "SBILIFE", "SBIN", "SHREECEM", "SHRIRAMFIN",
	"SIEMENS", "SOLARINDS", "SONACOMS", "SRF", "SUNPHARMA", "SUPREMEIND", "SUZLON", "SYNGENE",
	"TATACONSUM", "TATAELXSI", "TATAMOTORS", "TATAPOWER", "TATASTEEL", "TATATECH", "TCS", "TECHM",
	"TIINDIA", "TITAGARH", "TITAN", "TORNTPHARM", "TORNTPOWER", "TRENT", "TVSMOTOR", "ULTRACEMCO",
	"UNIONBANK", "UNITDSPR", "UNOMINDA", "UPL", "VBL", "VEDL", "VOLTAS", "WIPRO", "YESBANK", "ZYDUSLIFE",
}

// indexTickers maps index names to their Yahoo tickers.
var indexTickers = map[string]string{
	"NIFTY":      "^NSEI",
	"BANKNIFTY":  "^NSEBANK",
	"CNXFINANCE": "NIFTY_FIN_SERVICE.NS",
	"CNXMIDCAP":  "^NSEMDCP50",
	"NIFTYJR":    "^NSMIDCP",
}

// YahooTicker converts an exchange symbol to a Yahoo ticker. Indices use
// fixed tickers, equities get suffix appended.
func YahooTicker(symbol, suffix string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if t, ok := indexTickers[symbol]; ok {
		return t
	}
	if strings.HasPrefix(symbol, "^") || strings.Contains(symbol, ".") {
		return symbol
	}
	return strings.ReplaceAll(symbol, "_", "-") + suffix
}
