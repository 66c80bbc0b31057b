// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"fmt"
	"reflect"
	"sort"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// OptionValues simplifies manipulation of properties that are arrays of
// vimtypes.BaseOptionValue, such as ExtraConfig.
type OptionValues []vimtypes.BaseOptionValue

// OptionValuesFromMap returns a new OptionValues object from the provided map.
// The elements are sorted by key.
func OptionValuesFromMap(in map[string]string) OptionValues {
	if len(in) == 0 {
		return nil
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(OptionValues, len(keys))
	for i, k := range keys {
		out[i] = &vimtypes.OptionValue{Key: k, Value: in[k]}
	}
	return out
}

// StringMap returns the list of option values as a map where the values are
// strings.
func (ov OptionValues) StringMap() map[string]string {
	if len(ov) == 0 {
		return nil
	}
	out := map[string]string{}
	for i := range ov {
		if optVal := ov[i].GetOptionValue(); optVal != nil {
			out[optVal.Key] = getOptionValueAsString(optVal.Value)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ExtraConfigDiff returns the entries of desired that are missing from
// current or that have a different value. Keys that exist only in current
// are never part of the diff.
func ExtraConfigDiff(current, desired map[string]string) map[string]string {
	var out map[string]string
	for k, v := range desired {
		if cv, ok := current[k]; ok && cv == v {
			continue
		}
		if out == nil {
			out = map[string]string{}
		}
		out[k] = v
	}
	return out
}

func getOptionValueAsString(val any) string {
	switch tval := val.(type) {
	case string:
		return tval
	default:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return ""
			}
			return fmt.Sprintf("%v", rv.Elem().Interface())
		}
		return fmt.Sprintf("%v", tval)
	}
}
