package vd2yolo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CategoryMap maps VisDrone category ids to YOLO class ids. Categories without an entry are
// dropped during conversion.
type CategoryMap map[int]int

// The VisDrone-DET object categories.
const (
	VisDroneIgnoredRegion  = 0
	VisDronePedestrian     = 1
	VisDronePeople         = 2
	VisDroneBicycle        = 3
	VisDroneCar            = 4
	VisDroneVan            = 5
	VisDroneTruck          = 6
	VisDroneTricycle       = 7
	VisDroneAwningTricycle = 8
	VisDroneBus            = 9
	VisDroneMotor          = 10
	VisDroneOthers         = 11
)

var visDroneCategoryNames = map[int]string{
	VisDroneIgnoredRegion:  "ignored-regions",
	VisDronePedestrian:     "pedestrian",
	VisDronePeople:         "people",
	VisDroneBicycle:        "bicycle",
	VisDroneCar:            "car",
	VisDroneVan:            "van",
	VisDroneTruck:          "truck",
	VisDroneTricycle:       "tricycle",
	VisDroneAwningTricycle: "awning-tricycle",
	VisDroneBus:            "bus",
	VisDroneMotor:          "motor",
	VisDroneOthers:         "others",
}

// visDroneCategoryName returns the name of a VisDrone category, or its id for unknown ones.
func visDroneCategoryName(category int) string {
	if name, ok := visDroneCategoryNames[category]; ok {
		return name
	}
	return strconv.Itoa(category)
}

// DefaultCategoryMap returns the reduced mapping onto the classes in DefaultClassNames.
// Tricycles, awning-tricycles, ignored regions and others are dropped.
func DefaultCategoryMap() CategoryMap {
	return CategoryMap{
		VisDronePedestrian: 0, // person
		VisDronePeople:     0, // person
		VisDroneBicycle:    1,
		VisDroneCar:        2,
		VisDroneVan:        2, // car
		VisDroneTruck:      3,
		VisDroneBus:        4,
		VisDroneMotor:      5,
	}
}

// DefaultClassNames returns the YOLO class names, indexed by class id.
func DefaultClassNames() []string {
	return []string{"person", "bicycle", "car", "truck", "bus", "motor"}
}

// ParseCategoryMap parses category mappings in the format src=dst, e.g. "5=2".
func ParseCategoryMap(mappings []string) (CategoryMap, error) {
	categories := make(CategoryMap, len(mappings))
	for _, v := range mappings {
		a := strings.Split(v, "=")
		if len(a) != 2 {
			return nil, fmt.Errorf("invalid mapping: %v", v)
		}

		src, err := strconv.Atoi(strings.TrimSpace(a[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid source category in mapping %q: %v", v, err)
		}
		dst, err := strconv.Atoi(strings.TrimSpace(a[1]))
		if err != nil || dst < 0 {
			return nil, fmt.Errorf("invalid class id in mapping %q", v)
		}
		if _, dup := categories[src]; dup {
			return nil, fmt.Errorf("duplicate mapping for category %d", src)
		}

		categories[src] = dst
	}

	return categories, nil
}

// Validate checks that every class id has one of the numClasses names.
func (m CategoryMap) Validate(numClasses int) error {
	if len(m) == 0 {
		return fmt.Errorf("the category map is empty")
	}
	for src, dst := range m {
		if dst < 0 || dst >= numClasses {
			return fmt.Errorf("category %d maps to class %d, but only %d class names are defined",
				src, dst, numClasses)
		}
	}
	return nil
}

// String formats the mappings as sorted, comma-separated src=dst pairs.
func (m CategoryMap) String() string {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%d=%d", k, m[k])
	}
	return strings.Join(pairs, ",")
}
