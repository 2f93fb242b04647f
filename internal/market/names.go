package market

// Curated display names for well-known tickers, checked before any provider
// call so the common case costs nothing.

var stockNamesTW = map[string]string{
	"2330": "台積電", "2317": "鴻海", "2454": "聯發科", "2308": "台達電",
	"2412": "中華電", "2303": "聯電", "1301": "台塑", "1303": "南亞",
	"2891": "中信金", "2882": "國泰金", "2886": "兆豐金", "2892": "第一金",
	"2881": "富邦金", "2301": "光寶科", "2379": "瑞昱", "2382": "廣達",
	"2357": "華碩", "2327": "國巨", "3008": "大立光", "2409": "友達",
	"3481": "群創", "1101": "台泥", "2002": "中鋼", "2912": "統一超",
	"2207": "和泰車", "2603": "長榮", "2609": "陽明", "2618": "長榮航",
}

var stockNamesUS = map[string]string{
	"AAPL": "Apple", "MSFT": "Microsoft", "GOOGL": "Alphabet",
	"AMZN": "Amazon", "META": "Meta Platforms", "TSLA": "Tesla",
	"NVDA": "NVIDIA", "BRK.B": "Berkshire Hathaway B",
	"JPM": "JPMorgan Chase", "V": "Visa",
}
