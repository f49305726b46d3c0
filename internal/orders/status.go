package orders

// Status is the execution status of an order. The flow is strict:
//
//	StatusInitial -> StatusAccepted -> StatusCompleted | StatusCancelled | StatusExpired
//	StatusInitial -> StatusRejected
//
// Once a status is closed the order cannot be opened again and further
// updates are ignored.
type Status int

const (
	// StatusInitial is the status of an order that has just been created.
	StatusInitial Status = iota

	// StatusAccepted means the order was received and validated by the
	// broker and is waiting to be executed.
	StatusAccepted

	// StatusCompleted means the order executed successfully. End-state.
	StatusCompleted

	// StatusCancelled means the order was cancelled, normally by a cancel
	// order. End-state.
	StatusCancelled

	// StatusExpired means the order expired, normally through an external
	// time-in-force policy. End-state.
	StatusExpired

	// StatusRejected means the broker refused the order, for example when
	// settlement could not convert between currencies. End-state.
	StatusRejected
)

// Open reports whether the status still allows execution.
func (s Status) Open() bool {
	return s == StatusInitial || s == StatusAccepted
}

// Closed reports whether the status is an end-state.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired || s == StatusRejected
}

// Aborted reports whether the order ended without executing.
func (s Status) Aborted() bool {
	return s == StatusCancelled || s == StatusExpired || s == StatusRejected
}

func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "INITIAL"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusExpired:
		return "EXPIRED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
