// Package model defines the housing price record and its column metadata.
package model

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

// Measurement column names, in table declaration order. They double as the
// CSV header names expected by the loader.
const (
	ColMedInc      = "MedInc"
	ColHouseAge    = "HouseAge"
	ColAveRooms    = "AveRooms"
	ColAveBedrms   = "AveBedrms"
	ColPopulation  = "Population"
	ColAveOccup    = "AveOccup"
	ColLatitude    = "Latitude"
	ColLongitude   = "Longitude"
	ColMedHouseVal = "MedHouseVal"
)

// Columns lists the nine measurement columns in declaration order.
var Columns = []string{
	ColMedInc,
	ColHouseAge,
	ColAveRooms,
	ColAveBedrms,
	ColPopulation,
	ColAveOccup,
	ColLatitude,
	ColLongitude,
	ColMedHouseVal,
}

// HousingRecord is one housing price observation. ID is nil until the store
// assigns one on insert.
type HousingRecord struct {
	ID          *int64   `csv:"-" json:"id,omitempty" yaml:"id,omitempty"`
	MedInc      *float64 `csv:"MedInc,omitempty" json:"med_inc" yaml:"med_inc" validate:"required"`
	HouseAge    *float64 `csv:"HouseAge,omitempty" json:"house_age" yaml:"house_age" validate:"required"`
	AveRooms    *float64 `csv:"AveRooms,omitempty" json:"ave_rooms" yaml:"ave_rooms" validate:"required"`
	AveBedrms   *float64 `csv:"AveBedrms,omitempty" json:"ave_bedrms" yaml:"ave_bedrms" validate:"required"`
	Population  *float64 `csv:"Population,omitempty" json:"population" yaml:"population" validate:"required"`
	AveOccup    *float64 `csv:"AveOccup,omitempty" json:"ave_occup" yaml:"ave_occup" validate:"required"`
	Latitude    *float64 `csv:"Latitude,omitempty" json:"latitude" yaml:"latitude" validate:"required"`
	Longitude   *float64 `csv:"Longitude,omitempty" json:"longitude" yaml:"longitude" validate:"required"`
	MedHouseVal *float64 `csv:"MedHouseVal,omitempty" json:"med_house_val" yaml:"med_house_val" validate:"required"`
}

var validate = validator.New()

// IsNew reports whether the record has not been persisted yet.
func (r HousingRecord) IsNew() bool {
	return r.ID == nil
}

// Fields returns pointers to the nine measurement fields in column order.
// Writing through them mutates r.
func (r *HousingRecord) Fields() []**float64 {
	return []**float64{
		&r.MedInc,
		&r.HouseAge,
		&r.AveRooms,
		&r.AveBedrms,
		&r.Population,
		&r.AveOccup,
		&r.Latitude,
		&r.Longitude,
		&r.MedHouseVal,
	}
}

// Values returns the measurement values in column order as bind arguments.
// Missing measurements bind as nil.
func (r HousingRecord) Values() []any {
	fields := r.Fields()
	out := make([]any, len(fields))
	for i, f := range fields {
		if *f != nil {
			out[i] = **f
		}
	}
	return out
}

// Validate checks that every measurement is populated.
func (r HousingRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			return eris.Errorf("model: missing measurements: %s", strings.Join(missing, ", "))
		}
		return eris.Wrap(err, "model: validate record")
	}
	return nil
}

// NewRecord builds a record from nine values given in column order.
func NewRecord(values ...float64) (HousingRecord, error) {
	if len(values) != len(Columns) {
		return HousingRecord{}, eris.Errorf("model: expected %d values, got %d", len(Columns), len(values))
	}
	var r HousingRecord
	for i, f := range r.Fields() {
		v := values[i]
		*f = &v
	}
	return r, nil
}

// ParseRecord parses nine numeric strings given in column order.
func ParseRecord(args []string) (HousingRecord, error) {
	if len(args) != len(Columns) {
		return HousingRecord{}, eris.Errorf("model: expected %d values, got %d", len(Columns), len(args))
	}
	values := make([]float64, len(args))
	for i, a := range args {
		v, err := ParseValue(a)
		if err != nil {
			return HousingRecord{}, eris.Wrapf(err, "model: %s", Columns[i])
		}
		values[i] = v
	}
	return NewRecord(values...)
}

// ParseValue parses a single measurement. All measurements, including
// Population, are floats.
func ParseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid number %q", s)
	}
	return v, nil
}

// ColumnIndex returns the position of name in Columns, matched
// case-insensitively, or -1.
func ColumnIndex(name string) int {
	for i, c := range Columns {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}
