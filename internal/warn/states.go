package warn

import "strings"

// StateLookup resolves state names to postal abbreviations and back.
// Built once at startup and passed explicitly to components that need it.
type StateLookup struct {
	nameToAbbrev map[string]string
	abbrevToName map[string]string
}

// NewStateLookup builds the lookup from the standard FIPS state list.
func NewStateLookup() *StateLookup {
	l := &StateLookup{
		nameToAbbrev: make(map[string]string, len(stateNames)),
		abbrevToName: make(map[string]string, len(stateNames)),
	}
	for abbrev, name := range stateNames {
		l.nameToAbbrev[strings.ToLower(name)] = abbrev
		l.abbrevToName[abbrev] = name
	}
	return l
}

// Abbrev returns the postal abbreviation for a state name.
func (l *StateLookup) Abbrev(name string) (string, bool) {
	abbrev, ok := l.nameToAbbrev[strings.ToLower(strings.TrimSpace(name))]
	return abbrev, ok
}

// Name returns the state name for a postal abbreviation.
func (l *StateLookup) Name(abbrev string) (string, bool) {
	name, ok := l.abbrevToName[strings.ToUpper(strings.TrimSpace(abbrev))]
	return name, ok
}

var stateNames = map[string]string{
	"AL": "Alabama",
	"AK": "Alaska",
	"AZ": "Arizona",
	"AR": "Arkansas",
	"CA": "California",
	"CO": "Colorado",
	"CT": "Connecticut",
	"DE": "Delaware",
	"DC": "District of Columbia",
	"FL": "Florida",
	"GA": "Georgia",
	"HI": "Hawaii",
	"ID": "Idaho",
	"IL": "Illinois",
	"IN": "Indiana",
	"IA": "Iowa",
	"KS": "Kansas",
	"KY": "Kentucky",
	"LA": "Louisiana",
	"ME": "Maine",
	"MD": "Maryland",
	"MA": "Massachusetts",
	"MI": "Michigan",
	"MN": "Minnesota",
	"MS": "Mississippi",
	"MO": "Missouri",
	"MT": "Montana",
	"NE": "Nebraska",
	"NV": "Nevada",
	"NH": "New Hampshire",
	"NJ": "New Jersey",
	"NM": "New Mexico",
	"NY": "New York",
	"NC": "North Carolina",
	"ND": "North Dakota",
	"OH": "Ohio",
	"OK": "Oklahoma",
	"OR": "Oregon",
	"PA": "Pennsylvania",
	"PR": "Puerto Rico",
	"RI": "Rhode Island",
	"SC": "South Carolina",
	"SD": "South Dakota",
	"TN": "Tennessee",
	"TX": "Texas",
	"UT": "Utah",
	"VT": "Vermont",
	"VA": "Virginia",
	"WA": "Washington",
	"WV": "West Virginia",
	"WI": "Wisconsin",
	"WY": "Wyoming",
}
