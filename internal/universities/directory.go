// Package universities holds the static directory of participating
// universities: canonical display name, normalized code, and home city.
package universities

import "strings"

// University is one entry in the static directory.
type University struct {
	Name string
	Code string
	City string
}

// The directory is fixed for a tournament year. Codes are derived from the
// canonical name via Normalize and must stay unique.
var directory = []University{
	{Name: "Oxford", City: "Oxford"},
	{Name: "Cambridge", City: "Cambridge"},
	{Name: "Imperial College London", City: "London"},
	{Name: "UCL", City: "London"},
	{Name: "King's College London", City: "London"},
	{Name: "LSE", City: "London"},
	{Name: "Queen Mary", City: "London"},
	{Name: "City University", City: "London"},
	{Name: "Westminster", City: "London"},
	{Name: "Manchester", City: "Manchester"},
	{Name: "Salford", City: "Manchester"},
	{Name: "Leeds", City: "Leeds"},
	{Name: "Sheffield", City: "Sheffield"},
	{Name: "Sheffield Hallam", City: "Sheffield"},
	{Name: "Birmingham", City: "Birmingham"},
	{Name: "Aston", City: "Birmingham"},
	{Name: "Nottingham", City: "Nottingham"},
	{Name: "Nottingham Trent", City: "Nottingham"},
	{Name: "Bristol", City: "Bristol"},
	{Name: "Bath", City: "Bath"},
	{Name: "Warwick", City: "Coventry"},
	{Name: "Coventry", City: "Coventry"},
	{Name: "Edinburgh", City: "Edinburgh"},
	{Name: "Glasgow", City: "Glasgow"},
	{Name: "St Andrews", City: "St Andrews"},
	{Name: "Durham", City: "Durham"},
	{Name: "Newcastle", City: "Newcastle"},
	{Name: "Northumbria", City: "Newcastle"},
	{Name: "York", City: "York"},
	{Name: "Liverpool", City: "Liverpool"},
	{Name: "Lancaster", City: "Lancaster"},
	{Name: "Southampton", City: "Southampton"},
	{Name: "Portsmouth", City: "Portsmouth"},
	{Name: "Brighton", City: "Brighton"},
	{Name: "Sussex", City: "Brighton"},
	{Name: "Exeter", City: "Exeter"},
	{Name: "Cardiff", City: "Cardiff"},
	{Name: "Swansea", City: "Swansea"},
	{Name: "Surrey", City: "Guildford"},
	{Name: "Reading", City: "Reading"},
	{Name: "Kent", City: "Canterbury"},
	{Name: "Essex", City: "Colchester"},
	{Name: "Leicester", City: "Leicester"},
	{Name: "De Montfort", City: "Leicester"},
	{Name: "Loughborough", City: "Loughborough"},
	{Name: "East Anglia", City: "Norwich"},
	{Name: "Hertfordshire", City: "Hatfield"},
	{Name: "Aberdeen", City: "Aberdeen"},
	{Name: "Strathclyde", City: "Glasgow"},
	{Name: "Queen's Belfast", City: "Belfast"},
}

var byCode = make(map[string]University, len(directory))

func init() {
	for i := range directory {
		directory[i].Code = Normalize(directory[i].Name)
		byCode[directory[i].Code] = directory[i]
	}
}

// Normalize converts a university name to its directory code: lowercased
// with all spaces removed, so user-typed variants compare equal.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "")
}

// Lookup returns the directory entry for a name or code.
func Lookup(nameOrCode string) (University, bool) {
	u, ok := byCode[Normalize(nameOrCode)]
	return u, ok
}

// IsValid reports whether the name or code is in the directory.
func IsValid(nameOrCode string) bool {
	_, ok := Lookup(nameOrCode)
	return ok
}

// CanonicalName returns the display name for a name or code.
func CanonicalName(nameOrCode string) (string, bool) {
	u, ok := Lookup(nameOrCode)
	return u.Name, ok
}

// CityFor returns the home city for a name or code. The empty string is
// returned when the university is unknown.
func CityFor(nameOrCode string) (string, bool) {
	u, ok := Lookup(nameOrCode)
	return u.City, ok
}

// All returns the directory in declaration order.
func All() []University {
	out := make([]University, len(directory))
	copy(out, directory)
	return out
}
