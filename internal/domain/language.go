package domain

// LanguagePair is a source/target combination offered to the user.
type LanguagePair struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// LanguagePairs lists the supported pairs in display order; the first one is the default.
var LanguagePairs = []LanguagePair{
	{From: "English", To: "Spanish", Label: "English → Spanish"},
	{From: "English", To: "Yoruba", Label: "English → Yoruba"},
	{From: "English", To: "French", Label: "English → French"},
	{From: "Spanish", To: "English", Label: "Spanish → English"},
	{From: "Yoruba", To: "English", Label: "Yoruba → English"},
	{From: "French", To: "English", Label: "French → English"},
}

// DefaultLanguagePair is used when no pair is selected.
func DefaultLanguagePair() LanguagePair {
	return LanguagePairs[0]
}

// FindLanguagePair looks a pair up by its label.
func FindLanguagePair(label string) (LanguagePair, bool) {
	for _, p := range LanguagePairs {
		if p.Label == label {
			return p, true
		}
	}
	return LanguagePair{}, false
}
