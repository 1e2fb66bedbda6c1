package ordercore

// Command is a request to change aggregate state. Concrete commands are
// plain structs defined by each aggregate package (order.SubmitOrder,
// saga.StartFulfillment) and are dispatched by calling the matching method
// on the aggregate directly through CommandHandler.Execute, not through a
// reflective bus.
type Command interface {
	AggregateID() AggregateId
}
