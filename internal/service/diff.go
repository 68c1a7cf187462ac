package service

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// housekeepingFields change on every write and are left out of human readable details.
var housekeepingFields = map[string]struct{}{
	"updated_at": {},
	"created_at": {},
}

// DiffValues compares two snapshots and returns only the keys whose values differ.
// A key present on one side only is compared against nil.
func DiffValues(before, after map[string]interface{}) (map[string]interface{}, map[string]interface{}) {
	oldValues := map[string]interface{}{}
	newValues := map[string]interface{}{}

	keys := map[string]struct{}{}
	for key := range before {
		keys[key] = struct{}{}
	}
	for key := range after {
		keys[key] = struct{}{}
	}

	for key := range keys {
		previous := before[key]
		current := after[key]
		if reflect.DeepEqual(previous, current) {
			continue
		}
		oldValues[key] = previous
		newValues[key] = current
	}

	return oldValues, newValues
}

// PickValues restricts a snapshot to the given keys; missing keys map to nil.
func PickValues(values map[string]interface{}, keys ...string) map[string]interface{} {
	picked := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		picked[key] = values[key]
	}
	return picked
}

// ChangedFields lists the non-housekeeping keys of a diff in stable order.
func ChangedFields(values map[string]interface{}) []string {
	fields := make([]string, 0, len(values))
	for key := range values {
		if _, skip := housekeepingFields[key]; skip {
			continue
		}
		fields = append(fields, key)
	}
	sort.Strings(fields)
	return fields
}

// DescribeChanges renders "Updated <label>: field: old -> new, ..." for an update diff.
func DescribeChanges(label string, oldValues, newValues map[string]interface{}) string {
	fields := ChangedFields(newValues)
	if len(fields) == 0 {
		return fmt.Sprintf("Updated %s: no visible changes", label)
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", field, displayValue(oldValues[field]), displayValue(newValues[field])))
	}
	return fmt.Sprintf("Updated %s: %s", label, strings.Join(parts, ", "))
}

func displayValue(value interface{}) string {
	if value == nil {
		return "empty"
	}
	if s, ok := value.(string); ok && s == "" {
		return "empty"
	}
	return fmt.Sprintf("%v", value)
}
