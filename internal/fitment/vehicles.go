package fitment

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnknownVehicle is returned when a vehicle is not in the table.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// DefaultVehicle is the vehicle selected when none is given.
const DefaultVehicle = "Subaru BRZ, Toyota 86, Scion FR-S (13-20)"

// Vehicles is the read-only vehicle table.
type Vehicles struct {
	byName map[string]model.VehicleDescriptor
	names  []string
}

// NewVehicles builds a table from the given descriptors.
func NewVehicles(m map[string]model.VehicleDescriptor) *Vehicles {
	v := &Vehicles{byName: make(map[string]model.VehicleDescriptor, len(m))}
	for name, d := range m {
		v.byName[name] = d
		v.names = append(v.names, name)
	}
	sort.Strings(v.names)
	return v
}

// Get returns the descriptor for a vehicle.
func (v *Vehicles) Get(name string) (model.VehicleDescriptor, error) {
	d, ok := v.byName[name]
	if !ok {
		return model.VehicleDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownVehicle, name)
	}
	return d, nil
}

// Names returns all vehicle names in sorted order.
func (v *Vehicles) Names() []string {
	return append([]string(nil), v.names...)
}

// Search returns vehicle names fuzzily matching query, best match first.
// An empty query returns every name. limit <= 0 means no limit.
func (v *Vehicles) Search(query string, limit int) []string {
	if query == "" {
		return limitNames(v.Names(), limit)
	}

	ranks := fuzzy.RankFindFold(query, v.names)
	sort.Stable(ranks)

	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return limitNames(out, limit)
}

func limitNames(names []string, limit int) []string {
	if limit > 0 && len(names) > limit {
		return names[:limit]
	}
	return names
}

// Guide is the file form of a reference line. Offset guides follow
// offset = per_width*width + base + per_ride_height*rideheight. Vertical
// guides sit at x = base + per_width*width + per_offset*offset.
type Guide struct {
	Label         string  `toml:"label"`
	Color         string  `toml:"color"`
	Vertical      bool    `toml:"vertical"`
	Base          float64 `toml:"base"`
	PerWidth      float64 `toml:"per_width"`
	PerRideHeight float64 `toml:"per_ride_height"`
	PerOffset     float64 `toml:"per_offset"`
}

// Line converts the guide into a line descriptor.
func (g Guide) Line() model.LineDescriptor {
	l := model.LineDescriptor{Label: g.Label, Color: g.Color}
	if g.Vertical {
		l.X = func(width, offset float64) float64 {
			return g.Base + g.PerWidth*width + g.PerOffset*offset
		}
		return l
	}
	l.Offset = func(width, rideHeight float64) float64 {
		return g.PerWidth*width + g.Base + g.PerRideHeight*rideHeight
	}
	return l
}

type vehicleFile struct {
	Vehicle []struct {
		Name   string                          `toml:"name"`
		Stock  model.RequiredFitmentDescriptor `toml:"stock"`
		Guides []Guide                         `toml:"guide"`
	} `toml:"vehicle"`
}

// LoadVehicles reads a TOML vehicle table. If the file does not exist the
// built-in table is returned without error. Vehicles in the file replace
// built-in vehicles of the same name.
func LoadVehicles(path string) (*Vehicles, error) {
	m := Builtin()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewVehicles(m), nil
	}

	var f vehicleFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decoding vehicles: %w", err)
	}

	for _, v := range f.Vehicle {
		if v.Name == "" {
			return nil, fmt.Errorf("vehicle entry without a name in %s", path)
		}
		d := model.VehicleDescriptor{Stock: v.Stock}
		for _, g := range v.Guides {
			d.Guides = append(d.Guides, g.Line())
		}
		m[v.Name] = d
	}
	return NewVehicles(m), nil
}

// Builtin returns the vehicles compiled into the binary.
func Builtin() map[string]model.VehicleDescriptor {
	stockWheel := model.WheelDescriptor{Diameter: 17, Width: 7, Offset: 48}
	stockTire := model.TireDescriptor{Width: 215, Aspect: 45, Make: "Michelin", Model: "Primacy HP"}

	return map[string]model.VehicleDescriptor{
		DefaultVehicle: {
			Guides: []model.LineDescriptor{
				// +12.7mm per inch of width, -2mm per inch of drop
				Guide{Label: "Perfect Front Flushness", Color: "red", PerWidth: 12.7, Base: -64.3, PerRideHeight: -2}.Line(),
				// rear drops faster than the front
				Guide{Label: "Perfect Rear Flushness", Color: "green", PerWidth: 12.7, Base: -71.1, PerRideHeight: -5}.Line(),
			},
			Stock: model.RequiredFitmentDescriptor{
				Suspension:  "None",
				RideHeight:  0,
				Source:      "ft86club",
				Images:      []string{"http://i26.photobucket.com/albums/c135/BimmerR/17.jpg"},
				Link:        "https://www.ft86club.com/forums/showpost.php?p=231439&postcount=3",
				Description: "The stock layout for this car.",
				Wheel:       model.Square(stockWheel),
				Tire:        model.Square(stockTire),
			},
		},
	}
}
