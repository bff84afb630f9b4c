package domain

// Mode selects one of the four fixed optimization strategies.
type Mode string

const (
	ModeCoding     Mode = "coding"
	ModeResearch   Mode = "research"
	ModeConcise    Mode = "concise"
	ModeStructured Mode = "structured"
)

// Modes returns the fixed mode set in display order.
func Modes() []Mode {
	return []Mode{ModeCoding, ModeResearch, ModeConcise, ModeStructured}
}

const (
	// UnknownWinner marks a judgment whose response could not be parsed.
	UnknownWinner = "Unknown"
	// DefaultScore is the mid-range score assumed when the judge omits a variant.
	DefaultScore = 6
)

type Variant struct {
	Mode   Mode
	Text   string
	Failed bool
}

type Judgment struct {
	Scores map[Mode]int
	Winner string
	Reason string
}

type TokenStats struct {
	OriginalTokens int
	FusionTokens   int
	Saved          int
}

type OptimizationRun struct {
	Id        string
	RawPrompt string
	Model     string
	Variants  []Variant
	Judgment  Judgment
	Fusion    string
	Tokens    TokenStats
}

// Variant returns the variant produced for the given mode.
func (r OptimizationRun) Variant(mode Mode) (Variant, bool) {
	for i := 0; i < len(r.Variants); i++ {
		if r.Variants[i].Mode == mode {
			return r.Variants[i], true
		}
	}

	return Variant{}, false
}
