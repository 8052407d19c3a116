package service

import (
	"CaseKeeper/internal/model"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field names accepted in create and update payloads.
const (
	FieldFarmerName      = "farmer_name"
	FieldFarmerAccountNo = "farmer_account_no"
	FieldCabinetNo       = "cabinet_no"
	FieldShelfNo         = "shelf_no"
	FieldSequenceNo      = "sequence_no"
)

// ParseCaseFields picks the five editable fields out of a decoded JSON
// object. Other keys are ignored. Numbers may arrive as JSON numbers or as
// strings holding an integer.
func ParseCaseFields(raw map[string]any) (model.CaseFields, error) {
	var f model.CaseFields
	var err error

	if f.FarmerName, err = stringField(raw, FieldFarmerName); err != nil {
		return f, err
	}
	if f.FarmerAccountNo, err = stringField(raw, FieldFarmerAccountNo); err != nil {
		return f, err
	}
	if f.CabinetNo, err = intField(raw, FieldCabinetNo); err != nil {
		return f, err
	}
	if f.ShelfNo, err = intField(raw, FieldShelfNo); err != nil {
		return f, err
	}
	if f.SequenceNo, err = intField(raw, FieldSequenceNo); err != nil {
		return f, err
	}
	return f, nil
}

func stringField(raw map[string]any, key string) (*string, error) {
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, validationf("%s must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, validationf("%s must not be empty", key)
	}
	return &s, nil
}

func intField(raw map[string]any, key string) (*int, error) {
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	n, ok := coerceInt(v)
	if !ok {
		return nil, validationf("%s must be an integer", key)
	}
	return &n, nil
}

// coerceInt accepts integers, integral floats such as 3.0 and strings
// holding an integer. Fractions, booleans and null are rejected.
func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return intFromInt64(x)
	case float64:
		return intFromFloat(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return intFromInt64(i)
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return intFromFloat(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return intFromInt64(i)
	}
	return 0, false
}

func intFromInt64(i int64) (int, bool) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return intFromInt64(int64(f))
}
