package constants

import "strings"

// ServiceID is the canonical name of one shipping product tier. The set is
// closed: rate sheets only ever publish these services, and lookup queries
// must resolve to one of them.
type ServiceID string

const (
	FirstOvernight    ServiceID = "First Overnight"
	PriorityOvernight ServiceID = "Priority Overnight"
	StandardOvernight ServiceID = "Standard Overnight"
	TwoDayAM          ServiceID = "2Day A.M."
	TwoDay            ServiceID = "2Day"
	ExpressSaver      ServiceID = "Express Saver"
	Ground            ServiceID = "Ground"
	HomeDelivery      ServiceID = "Home Delivery"
)

// serviceKeys maps the cleaned (lower-cased, punctuation-stripped) surface
// form of each service to its canonical ID. Order matters: longer keys come
// first so "2day am" wins over the "2day" substring.
var serviceKeys = []struct {
	Key string
	ID  ServiceID
}{
	{"priority overnight", PriorityOvernight},
	{"standard overnight", StandardOvernight},
	{"first overnight", FirstOvernight},
	{"home delivery", HomeDelivery},
	{"express saver", ExpressSaver},
	{"2day am", TwoDayAM},
	{"ground", Ground},
	{"2day", TwoDay},
}

var allServices = []ServiceID{
	FirstOvernight,
	PriorityOvernight,
	StandardOvernight,
	TwoDayAM,
	TwoDay,
	ExpressSaver,
	Ground,
	HomeDelivery,
}

// MatchService resolves a cleaned text fragment to a ServiceID by substring
// containment, longest key first.
func MatchService(cleaned string) (ServiceID, bool) {
	if cleaned == "" {
		return "", false
	}
	for _, sk := range serviceKeys {
		if strings.Contains(cleaned, sk.Key) {
			return sk.ID, true
		}
	}
	return "", false
}

// AsStringSlice returns every canonical service name, for validation
// error payloads and schema enums.
func AsStringSlice() []ServiceID {
	result := make([]ServiceID, len(allServices))
	copy(result, allServices)
	return result
}
