package lendingpool

type OracleSetup uint8

const (
	StaticOracle OracleSetup = iota
	MixinOracle
)

func (os OracleSetup) String() string {
	switch os {
	case StaticOracle:
		return "Static"
	case MixinOracle:
		return "Mixin"
	default:
		return "Unknown"
	}
}

func ParseOracleSetup(s string) (OracleSetup, error) {
	switch s {
	case "", "static", "Static":
		return StaticOracle, nil
	case "mixin", "Mixin":
		return MixinOracle, nil
	default:
		return 0, ErrUnknownOracleSetup
	}
}
