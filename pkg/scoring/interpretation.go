package scoring

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Color string

const (
	ColorRed   Color = "red"
	ColorAmber Color = "amber"
	ColorGreen Color = "green"
)

// Interpretation is a display hint for a metric score.
type Interpretation struct {
	Level Level `json:"level"`
	Color Color `json:"color"`
}

// Interpret buckets a score: 40 and below is low, 41 to 70 medium, above 70 high.
func Interpret(score int) Interpretation {
	switch {
	case score <= 40:
		return Interpretation{Level: LevelLow, Color: ColorRed}
	case score <= 70:
		return Interpretation{Level: LevelMedium, Color: ColorAmber}
	default:
		return Interpretation{Level: LevelHigh, Color: ColorGreen}
	}
}
