package layers

import "fmt"

// DateResolution selects how deep a DateLayer slices modification times.
type DateResolution int

const (
	ResolutionYear DateResolution = iota + 1
	ResolutionMonth
	ResolutionDay
)

// String returns the configuration name of the resolution.
func (r DateResolution) String() string {
	switch r {
	case ResolutionYear:
		return "year"
	case ResolutionMonth:
		return "month"
	case ResolutionDay:
		return "day"
	default:
		return "unknown"
	}
}

// ParseDateResolution maps a configuration string to a DateResolution.
func ParseDateResolution(s string) (DateResolution, error) {
	switch s {
	case "year":
		return ResolutionYear, nil
	case "month":
		return ResolutionMonth, nil
	case "day":
		return ResolutionDay, nil
	default:
		return 0, fmt.Errorf("invalid date resolution %q", s)
	}
}

// DateLayer is a hierarchical layer constrained to modification-time
// components: year, then zero-padded month and day depending on the
// resolution. Files with a zero modification time are indexed nowhere.
type DateLayer struct {
	*HierarchicalLayer
	resolution DateResolution
}

// NewDateLayer creates a date-sliced view at the given resolution.
func NewDateLayer(name string, resolution DateResolution) (*DateLayer, error) {
	var chain []Classifier
	switch resolution {
	case ResolutionYear:
		chain = []Classifier{ModTimeYearClassifier}
	case ResolutionMonth:
		chain = []Classifier{ModTimeYearClassifier, ModTimeMonthClassifier}
	case ResolutionDay:
		chain = []Classifier{ModTimeYearClassifier, ModTimeMonthClassifier, ModTimeDayClassifier}
	default:
		return nil, fmt.Errorf("invalid date resolution %d", resolution)
	}

	hl, err := NewHierarchicalLayer(name, chain...)
	if err != nil {
		return nil, err
	}
	return &DateLayer{HierarchicalLayer: hl, resolution: resolution}, nil
}

// Resolution returns the configured slicing depth.
func (dl *DateLayer) Resolution() DateResolution { return dl.resolution }
