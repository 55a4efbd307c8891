package initchecker

import (
	"fmt"
	"reflect"
)

// CheckInit panics when one of the name/value pairs holds a nil dependency.
// Call it from NewHandler so a wrong init order fails at startup.
func CheckInit(component string, pairs ...any) {
	if len(pairs)%2 != 0 {
		panic("CheckInit: odd number of arguments")
	}
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("CheckInit: first argument of pair must be string")
		}
		if isNil(pairs[i+1]) {
			panic(fmt.Sprintf("%s: %s dependency not initialized", component, name))
		}
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan, reflect.Slice:
		return v.IsNil()
	}
	return false
}
