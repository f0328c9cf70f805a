package chart

// worldNames maps dataset country names onto the region names of the echarts world map
var worldNames = map[string]string{
	"US":                               "United States",
	"Korea, South":                     "Korea",
	"Korea, North":                     "Dem. Rep. Korea",
	"Taiwan*":                          "Taiwan",
	"Congo (Kinshasa)":                 "Dem. Rep. Congo",
	"Congo (Brazzaville)":              "Congo",
	"Czechia":                          "Czech Rep.",
	"Burma":                            "Myanmar",
	"Cote d'Ivoire":                    "Côte d'Ivoire",
	"West Bank and Gaza":               "Palestine",
	"North Macedonia":                  "Macedonia",
	"Eswatini":                         "Swaziland",
	"Laos":                             "Lao PDR",
	"Bosnia and Herzegovina":           "Bosnia and Herz.",
	"Central African Republic":         "Central African Rep.",
	"Dominican Republic":               "Dominican Rep.",
	"Equatorial Guinea":                "Eq. Guinea",
	"South Sudan":                      "S. Sudan",
	"Western Sahara":                   "W. Sahara",
	"Solomon Islands":                  "Solomon Is.",
	"Holy See":                         "Vatican",
	"Cabo Verde":                       "Cape Verde",
	"Sao Tome and Principe":            "São Tomé and Principe",
	"Saint Vincent and the Grenadines": "St. Vin. and Gren.",
	"Antigua and Barbuda":              "Antigua and Barb.",
}

// WorldName returns the world map region of a dataset country. Unknown names are
// returned unchanged.
func WorldName(country string) string {
	if name, exists := worldNames[country]; exists {
		return name
	}
	return country
}
