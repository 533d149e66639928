package models

// Status is the closed set of attendance outcomes. NOT_RECORDED is virtual
// (the absence of a row) and NORMAL is only ever accepted by the class-wide
// override endpoint as "undo"; neither is stored.
type Status string

const (
	StatusNotRecorded  Status = "NOT_RECORDED"
	StatusPresent      Status = "PRESENT"
	StatusLate         Status = "LATE"
	StatusIncomplete   Status = "INCOMPLETE"
	StatusAbsent       Status = "ABSENT"
	StatusExcused      Status = "EXCUSED"
	StatusHoliday      Status = "HOLIDAY"
	StatusSuspended    Status = "SUSPENDED"
	StatusCancelled    Status = "CANCELLED"
	StatusAsynchronous Status = "ASYNCHRONOUS"
	StatusPending      Status = "PENDING"
	StatusCredited     Status = "CREDITED"
	StatusDropped      Status = "DROPPED"

	// StatusNormal reopens ordinary check-in by deleting synthetic rows.
	StatusNormal Status = "NORMAL"
)

// Rank orders competing writers. Every write path and every rendering path
// consults this one function: a writer must never overwrite a row that
// outranks the status it wants to store.
//
//	class-wide declarations > HOLIDAY > PENDING > EXCUSED >
//	CREDITED/DROPPED > ordinary lifecycle > NOT_RECORDED
func (s Status) Rank() int {
	switch s {
	case StatusSuspended, StatusCancelled, StatusAsynchronous:
		return 6
	case StatusHoliday:
		return 5
	case StatusPending:
		return 4
	case StatusExcused:
		return 3
	case StatusCredited, StatusDropped:
		return 2
	case StatusPresent, StatusLate, StatusAbsent, StatusIncomplete:
		return 1
	default:
		return 0
	}
}

// Synthetic reports whether a row with this status represents an override
// rather than a real attendance event.
func (s Status) Synthetic() bool {
	switch s {
	case StatusHoliday, StatusSuspended, StatusCancelled, StatusAsynchronous,
		StatusPending, StatusCredited, StatusDropped:
		return true
	}
	return false
}

// Valid reports whether s is a storable member of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusIncomplete, StatusAbsent,
		StatusExcused, StatusHoliday, StatusSuspended, StatusCancelled,
		StatusAsynchronous, StatusPending, StatusCredited, StatusDropped:
		return true
	}
	return false
}
