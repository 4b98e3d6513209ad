package models

// TemperatureScale selects Celsius or Fahrenheit. It affects only the
// default boil threshold and default temperatures in seeded schedules;
// core arithmetic treats the value opaquely.
type TemperatureScale int

const (
	Celsius TemperatureScale = iota
	Fahrenheit
)

func (s TemperatureScale) String() string {
	if s == Fahrenheit {
		return "Fahrenheit"
	}
	return "Celsius"
}

// BoilThreshold returns the default boil temperature for the scale.
func (s TemperatureScale) BoilThreshold() float64 {
	if s == Fahrenheit {
		return 212
	}
	return 100
}

// BoostStatus is a three-state enum: never model this as two booleans.
type BoostStatus int

const (
	BoostOff BoostStatus = iota
	Boost
	Rest
)

func (b BoostStatus) String() string {
	switch b {
	case Boost:
		return "Boost"
	case Rest:
		return "Rest"
	default:
		return "Off"
	}
}
