package filters

import (
	"fmt"
	"log"
	"strings"

	"estatedash/internal/jsonutil"
)

// Dataset row fields read by ApplyToData.
const (
	FieldPropertyType = "propertyType"
	FieldPrice        = "price"
	FieldState        = "state"
	FieldCounty       = "county"
)

// predicate reports whether a row passes one criterion.
type predicate func(row map[string]any) bool

// ApplyToData returns the rows of data that satisfy set, in their original
// order. Property type matches exactly, price is an inclusive range, state and
// county match case-insensitively. Missing or empty criteria impose no
// restriction. If the filter cannot be evaluated (for example a non-numeric
// price bound) the input is returned unmodified.
func ApplyToData(data []map[string]any, set FilterSet) (out []map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("filters.ApplyToData: failing open: %v", r)
			out = data
		}
	}()

	preds, err := compile(set)
	if err != nil {
		log.Printf("filters.ApplyToData: failing open: %v", err)
		return data
	}
	if len(preds) == 0 {
		return data
	}

	out = make([]map[string]any, 0, len(data))
	for _, row := range data {
		if matchesAll(row, preds) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAll(row map[string]any, preds []predicate) bool {
	for _, p := range preds {
		if !p(row) {
			return false
		}
	}
	return true
}

func compile(set FilterSet) ([]predicate, error) {
	var preds []predicate

	if prop := set[CategoryProperty]; prop != nil {
		if v, ok := prop[CriterionPropertyType]; ok && !jsonutil.IsEmpty(v) {
			want := jsonutil.ToString(v)
			preds = append(preds, func(row map[string]any) bool {
				return jsonutil.ToString(row[FieldPropertyType]) == want
			})
		}
		minPrice, hasMin, err := bound(prop, CriterionMinPrice)
		if err != nil {
			return nil, err
		}
		maxPrice, hasMax, err := bound(prop, CriterionMaxPrice)
		if err != nil {
			return nil, err
		}
		if hasMin || hasMax {
			preds = append(preds, func(row map[string]any) bool {
				price, ok := jsonutil.GetNumber(row, FieldPrice)
				if !ok {
					return false
				}
				if hasMin && price < minPrice {
					return false
				}
				if hasMax && price > maxPrice {
					return false
				}
				return true
			})
		}
	}

	if geo := set[CategoryGeographic]; geo != nil {
		for _, field := range []string{CriterionState, CriterionCounty} {
			v, ok := geo[field]
			if !ok || jsonutil.IsEmpty(v) {
				continue
			}
			want := strings.TrimSpace(jsonutil.ToString(v))
			preds = append(preds, func(row map[string]any) bool {
				return strings.EqualFold(strings.TrimSpace(jsonutil.ToString(row[field])), want)
			})
		}
	}

	return preds, nil
}

func bound(criteria map[string]any, key string) (float64, bool, error) {
	v, ok := criteria[key]
	if !ok || jsonutil.IsEmpty(v) {
		return 0, false, nil
	}
	n, ok := jsonutil.ToNumber(v)
	if !ok {
		return 0, false, fmt.Errorf("%s %v is not a number", key, v)
	}
	return n, true, nil
}
