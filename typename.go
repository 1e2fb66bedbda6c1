package ordercore

import (
	"reflect"
	"strings"
)

// TypeName returns the bare, pointer-stripped type name of v, e.g.
// "OrderCreated" for both order.OrderCreated and *order.OrderCreated.
// It backs typedEventHandler's EventName(), which EventGroupProcessor
// routes on, and query.Dispatcher's route keys. The order and saga event
// types return literal EventType() strings instead.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
