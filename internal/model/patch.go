package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Patch is a partial update to a persisted record. Nil fields are left
// untouched.
type Patch struct {
	MedInc      *float64 `json:"med_inc,omitempty"`
	HouseAge    *float64 `json:"house_age,omitempty"`
	AveRooms    *float64 `json:"ave_rooms,omitempty"`
	AveBedrms   *float64 `json:"ave_bedrms,omitempty"`
	Population  *float64 `json:"population,omitempty"`
	AveOccup    *float64 `json:"ave_occup,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	MedHouseVal *float64 `json:"med_house_val,omitempty"`
}

// FullPatch returns a patch that sets every measurement of r.
func FullPatch(r HousingRecord) Patch {
	var p Patch
	src := r.Fields()
	for i, f := range p.Fields() {
		*f = *src[i]
	}
	return p
}

// Fields returns pointers to the patch fields in column order.
func (p *Patch) Fields() []**float64 {
	return []**float64{
		&p.MedInc,
		&p.HouseAge,
		&p.AveRooms,
		&p.AveBedrms,
		&p.Population,
		&p.AveOccup,
		&p.Latitude,
		&p.Longitude,
		&p.MedHouseVal,
	}
}

// Empty reports whether no field is set.
func (p Patch) Empty() bool {
	for _, f := range p.Fields() {
		if *f != nil {
			return false
		}
	}
	return true
}

// Set assigns value to the named column (case-insensitive).
func (p *Patch) Set(column string, value float64) error {
	i := ColumnIndex(column)
	if i < 0 {
		return eris.Errorf("model: unknown column %q", column)
	}
	*p.Fields()[i] = &value
	return nil
}

// ParseAssignment applies a "column=value" pair to p.
func (p *Patch) ParseAssignment(kv string) error {
	col, raw, ok := strings.Cut(kv, "=")
	if !ok {
		return eris.Errorf("model: expected column=value, got %q", kv)
	}
	v, err := ParseValue(raw)
	if err != nil {
		return eris.Wrapf(err, "model: %s", col)
	}
	return p.Set(col, v)
}

// Apply returns a copy of r with the patch fields overlaid.
func (p Patch) Apply(r HousingRecord) HousingRecord {
	out := r
	dst := out.Fields()
	for i, f := range p.Fields() {
		if *f != nil {
			v := **f
			*dst[i] = &v
		}
	}
	return out
}
