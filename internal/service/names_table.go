package service

// Static code->name tables used when the reference store has no entry.
// Keys are upper-case codes.

var airlineNames = map[string]string{
	"WF": "Widerøe",
	"SK": "SAS",
	"DY": "Norwegian",
	"KL": "KLM",
	"LH": "Lufthansa",
	"BA": "British Airways",
	"AF": "Air France",
	"LN": "Linjeflyg",
	"FI": "Icelandair",
	"QF": "Qantas",
	"EK": "Emirates",
	"LX": "Swiss International",
	"OS": "Austrian Airlines",
	"TP": "TAP Air Portugal",
}

var destinationNames = map[string]string{
	"OSL": "Oslo Lufthavn",
	"BOO": "Bodø Lufthavn",
	"TRD": "Trondheim Lufthavn",
	"BGO": "Bergen Lufthavn",
	"SVG": "Stavanger Lufthavn",
	"AES": "Ålesund Lufthavn",
	"KRS": "Kristiansand Lufthavn",
	"TOS": "Tromsø Lufthavn",
	"EVE": "Evenes Lufthavn",
	"ALF": "Alta Lufthavn",
	"LKN": "Leknes Lufthavn",
	"LYR": "Longyearbyen Lufthavn",
	"CPH": "København",
	"ARN": "Stockholm",
	"LHR": "London Heathrow",
	"AMS": "Amsterdam",
	"CDG": "Paris Charles de Gaulle",
	"FRA": "Frankfurt",
}

func FallbackAirlineName(code string) (string, bool) {
	n, ok := airlineNames[normCode(code)]
	return n, ok
}

func FallbackDestinationName(code string) (string, bool) {
	n, ok := destinationNames[normCode(code)]
	return n, ok
}
