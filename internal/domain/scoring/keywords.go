package scoring

// Fixed ruleset: whitelist, keyword sets, and provider type tags. These are
// tuning data, not configuration; changing them changes what the engine
// considers nightlife.

// whitelistNames force acceptance by exact lowercased, trimmed name match.
var whitelistNames = []string{
	"the spare room",
	"dots space la",
	"plaza nightclub and dance hall",
	"the dime fairfax",
	"offshore beach house",
	"kings row gastropub",
	"el cid",
	"the edmon",
	"shrine room karaoke | la",
	"rocco’s weho",
	"poppy",
	"perch",
	"keys",
	"wolfsglen",
	"ōwa",
}

// positiveKeywords are nightlife cues. Single words match on word
// boundaries; phrases match as plain substrings.
var positiveKeywords = []string{
	"bar", "club", "lounge", "nightclub", "pub", "tavern",
	"karaoke", "speakeasy", "cantina", "saloon", "brewery",
	"taproom", "cocktail", "dive", "house", "agave",
	"tiki", "gastropub", "cerveceria",
	"beer garden", "wine bar", "dance hall", "beer hall",
}

// negativeKeywords mark businesses that are never nightlife on their own.
// They only reject when the candidate shows zero positive cues.
var negativeKeywords = []string{
	"dispensary", "grocery", "supermarket", "liquor store",
	"pharmacy", "clinic", "hospital", "bank", "atm",
	"barber", "nail", "spa", "tanning", "market",
	"school", "academy", "daycare", "hardware", "laundromat",
	"dry cleaner",
}

// beautyTerms combined with "salon" identify beauty businesses whose names
// would otherwise slip past the negative list.
var beautyTerms = []string{"beauty", "hair", "nail", "barber", "spa"}

// nightlifeTypes are the provider machine tags worth an immediate type bonus.
var nightlifeTypes = []string{"bar", "night_club"}
