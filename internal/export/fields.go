package export

// MeasurementFields is the fixed, ordered set of measurement columns in
// every artifact. Changing the order changes the file format.
var MeasurementFields = []string{
	"ballSpeed",
	"ballSpin",
	"carry",
	"carryActual",
	"carrySide",
	"carrySideActual",
	"curve",
	"curveActual",
	"curveTotal",
	"curveTotalActual",
	"launchAngle",
	"launchDirection",
	"maxHeight",
	"spinAxis",
	"total",
	"totalActual",
	"totalSide",
	"totalSideActual",
	"ballSpinEffective",
	"targetDistance",
	"distanceFromPin",
	"distanceFromPinActual",
	"distanceFromPinTotal",
	"distanceFromPinTotalActual",
	"landingAngle",
	"reducedAccuracy",
}

// Header returns the full header row: shot ordinal, club, bay, then the
// measurement columns.
func Header() []string {
	h := make([]string, 0, 3+len(MeasurementFields))
	h = append(h, "Shot Number", "Club", "Bay")
	return append(h, MeasurementFields...)
}
