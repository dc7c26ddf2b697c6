package consistency

// TraitPair holds the two opposite poles of one behaviour dimension
type TraitPair struct {
	Name     string
	Positive []string
	Negative []string
}

// TermSet is a named vocabulary
type TermSet struct {
	Name  string
	Terms []string
}

// Technology is a term with the earliest year it can plausibly appear
type Technology struct {
	Term string
	Year int
}

// PropState maps a state word onto a canonical prop state
type PropState struct {
	Word  string
	State string
}

// Transition is a prop state change
type Transition struct {
	From string
	To   string
}

// Prop states
const (
	PropBroken = "broken"
	PropFixed  = "fixed"
	PropLost   = "lost"
	PropFound  = "found"
)

// Rules is the keyword ruleset behind every heuristic detector. Detectors
// read the tables only; editing a table never requires touching control flow.
type Rules struct {
	PersonalityPairs []TraitPair
	LowEducation     []string
	GoalStopWords    []string

	Seasons      []TermSet
	Technologies []Technology

	SetupTerms       []string
	ResolutionTerms  []string
	DeusExMachina    []string
	AttributeClasses []TermSet
	ChekhovStopNouns []string

	Dialects    []TermSet
	SpeechVerbs []string

	PropStates           []PropState
	IllogicalTransitions []Transition
	InjuryTerms          []string
	RecoveryTerms        []string
	ClothingVerbs        []string
	SceneBreaks          []string

	MagicTerms      []string
	NegationTerms   []string
	Eras            []TermSet
	EraExplanations []string
	Cultures        []TermSet
}

// DefaultRules returns a fresh copy of the built-in ruleset
func DefaultRules() *Rules {
	return &Rules{
		PersonalityPairs: []TraitPair{
			{
				Name:     "courage",
				Positive: []string{"brave", "courageous", "fearless", "bold", "heroic", "valiant"},
				Negative: []string{"cowardly", "coward", "timid", "cowered", "spineless", "craven"},
			},
			{
				Name:     "kindness",
				Positive: []string{"kind", "gentle", "compassionate", "generous", "tender"},
				Negative: []string{"cruel", "callous", "heartless", "vicious", "merciless"},
			},
			{
				Name:     "honesty",
				Positive: []string{"honest", "truthful", "sincere", "candid"},
				Negative: []string{"deceitful", "dishonest", "lied", "treacherous"},
			},
		},
		LowEducation: []string{"low", "none", "basic", "minimal", "elementary", "uneducated", "illiterate"},
		GoalStopWords: []string{
			"the", "and", "for", "with", "from", "into", "that", "this", "their", "her", "his",
			"find", "get", "make", "become", "want", "wants", "some", "about",
		},

		Seasons: []TermSet{
			{Name: "spring", Terms: []string{"spring", "blossom", "blossoms", "thaw", "budding"}},
			{Name: "summer", Terms: []string{"summer", "midsummer", "sweltering", "heatwave"}},
			{Name: "autumn", Terms: []string{"autumn", "harvest", "fallen leaves"}},
			{Name: "winter", Terms: []string{"winter", "snow", "snowfall", "frost", "blizzard", "icicles"}},
		},
		Technologies: []Technology{
			{Term: "smartphone", Year: 2007},
			{Term: "internet", Year: 1983},
			{Term: "television", Year: 1927},
			{Term: "airplane", Year: 1903},
		},

		SetupTerms:      []string{"discovered", "found", "revealed"},
		ResolutionTerms: []string{"solved", "resolved", "explained"},
		DeusExMachina: []string{
			"suddenly appeared", "out of nowhere", "miraculously", "coincidentally", "just in time",
		},
		AttributeClasses: []TermSet{
			{Name: "color", Terms: []string{
				"red", "blue", "green", "black", "white", "yellow", "purple", "grey", "gray",
				"brown", "golden", "silver", "crimson", "scarlet", "violet", "orange",
			}},
			{Name: "material", Terms: []string{
				"wooden", "stone", "iron", "steel", "glass", "brass", "bronze", "copper", "leather", "marble",
			}},
			{Name: "size", Terms: []string{"tiny", "small", "large", "huge", "enormous", "massive"}},
		},
		ChekhovStopNouns: []string{
			"man", "woman", "boy", "girl", "person", "people", "moment", "lot", "way", "thing",
			"bit", "while", "few", "little", "figure", "shadow", "chance", "sign", "look", "glimpse",
		},

		Dialects: []TermSet{
			{Name: "british", Terms: []string{
				"colour", "favourite", "lorry", "realise", "whilst", "rubbish", "petrol", "queue", "bloke",
			}},
			{Name: "american", Terms: []string{
				"color", "favorite", "truck", "realize", "gotten", "gasoline", "sidewalk", "trash", "apartment",
			}},
			{Name: "regional", Terms: []string{
				"y'all", "ain't", "reckon", "aye", "lass", "howdy", "fixin'", "wee",
			}},
		},
		SpeechVerbs: []string{
			"said", "asked", "replied", "whispered", "shouted", "murmured", "called", "answered", "cried", "snapped",
		},

		PropStates: []PropState{
			{Word: "broken", State: PropBroken},
			{Word: "shattered", State: PropBroken},
			{Word: "smashed", State: PropBroken},
			{Word: "fixed", State: PropFixed},
			{Word: "repaired", State: PropFixed},
			{Word: "mended", State: PropFixed},
			{Word: "lost", State: PropLost},
			{Word: "missing", State: PropLost},
			{Word: "found", State: PropFound},
			{Word: "recovered", State: PropFound},
		},
		IllogicalTransitions: []Transition{
			{From: PropLost, To: PropBroken},
			{From: PropLost, To: PropFixed},
		},
		InjuryTerms: []string{
			"wounded", "injured", "bleeding", "limping", "stabbed", "sprained", "broken arm", "broken leg", "concussed",
		},
		RecoveryTerms: []string{
			"healed", "recovered", "fully recovered", "no longer limping", "wound had closed", "back on her feet", "back on his feet",
		},
		ClothingVerbs: []string{"wore", "was wearing", "wearing", "dressed in", "clad in"},
		SceneBreaks:   []string{"***", "* * *", "---", "#"},

		MagicTerms:    []string{"magic", "spell", "spells", "enchantment", "sorcery", "cast"},
		NegationTerms: []string{"cannot", "can't", "couldn't", "could not", "failed", "unable", "not"},
		Eras: []TermSet{
			{Name: "medieval", Terms: []string{"crossbow", "trebuchet", "catapult", "longsword", "chainmail", "drawbridge"}},
			{Name: "industrial", Terms: []string{"steam engine", "locomotive", "telegraph", "gaslight", "steam-powered"}},
			{Name: "modern", Terms: []string{"smartphone", "computer", "internet", "television", "automobile"}},
			{Name: "futuristic", Terms: []string{"laser", "hologram", "starship", "teleporter", "warp drive", "plasma rifle"}},
		},
		EraExplanations: []string{
			"time travel", "time traveler", "time traveller", "portal", "anachronism", "from the future", "another world",
		},
		Cultures: []TermSet{
			{Name: "greetings", Terms: []string{
				"hello", "greetings", "good morning", "well met", "hail", "salutations", "howdy", "namaste", "shalom", "bonjour",
			}},
			{Name: "customs", Terms: []string{
				"bowed", "curtsied", "handshake", "kissed both cheeks", "toast", "libation", "blessing", "fasting", "pilgrimage", "tithe",
			}},
			{Name: "foods", Terms: []string{
				"bread", "stew", "porridge", "mead", "ale", "wine", "cheese", "roast", "rice", "noodles", "dumplings", "pie",
			}},
		},
	}
}

// propState returns the canonical state of a state word
func (r *Rules) propState(word string) (string, bool) {
	for _, ps := range r.PropStates {
		if ps.Word == word {
			return ps.State, true
		}
	}
	return "", false
}

func (r *Rules) illogical(from, to string) bool {
	for _, t := range r.IllogicalTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

func (r *Rules) attributeClass(value string) (string, bool) {
	for _, class := range r.AttributeClasses {
		for _, v := range class.Terms {
			if v == value {
				return class.Name, true
			}
		}
	}
	return "", false
}

func (r *Rules) lowEducation(level string) bool {
	return inFoldedSet(r.LowEducation, level)
}
