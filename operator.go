package fiql

// Operator is one of the two FIQL connectives. Operators are compared by
// precedence only: And binds tighter than Or.
//
// The zero Operator means "no operator".
type Operator struct {
	symbol string
}

type operatorInfo struct {
	name       string
	precedence int
}

var operators = map[string]operatorInfo{
	";": {name: "AND", precedence: 2},
	",": {name: "OR", precedence: 1},
}

var (
	// And is the FIQL ";" operator.
	And = Operator{symbol: ";"}
	// Or is the FIQL "," operator.
	Or = Operator{symbol: ","}
)

// NewOperator returns the operator for a FIQL symbol (";" or ",").
func NewOperator(symbol string) (Operator, error) {
	if _, ok := operators[symbol]; !ok {
		return Operator{}, newObjectError("%q is not a valid FIQL operator", symbol)
	}
	return Operator{symbol: symbol}, nil
}

func (Operator) isElement() {}

// IsValid reports whether o is And or Or.
func (o Operator) IsValid() bool {
	_, ok := operators[o.symbol]
	return ok
}

// Symbol returns the FIQL symbol.
func (o Operator) Symbol() string {
	return o.symbol
}

// Name returns "AND" or "OR", or "" for the zero Operator.
func (o Operator) Name() string {
	return operators[o.symbol].name
}

// Precedence returns the binding strength; higher binds tighter.
// The zero Operator has precedence 0.
func (o Operator) Precedence() int {
	return operators[o.symbol].precedence
}

// Less reports whether o binds looser than other.
func (o Operator) Less(other Operator) bool {
	return o.Precedence() < other.Precedence()
}

// Greater reports whether o binds tighter than other.
func (o Operator) Greater(other Operator) bool {
	return o.Precedence() > other.Precedence()
}

// Equal reports whether o and other have the same precedence.
func (o Operator) Equal(other Operator) bool {
	return o.Precedence() == other.Precedence()
}

// String returns the FIQL symbol.
func (o Operator) String() string {
	return o.symbol
}

// orDefault returns o, or And when o is the zero Operator.
func (o Operator) orDefault() Operator {
	if !o.IsValid() {
		return And
	}
	return o
}
