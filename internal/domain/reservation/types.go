package reservation

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled:
		return true
	default:
		return false
	}
}

// Field names a piece of booking information collected from the user.
type Field string

const (
	FieldDate      Field = "date"
	FieldStartTime Field = "start_time"
	FieldDuration  Field = "duration"
	FieldRoom      Field = "room"
	FieldRequester Field = "requester"
	FieldPurpose   Field = "purpose"
)

// RequiredFields lists every field a booking needs, in prompting order.
var RequiredFields = []Field{
	FieldDate,
	FieldStartTime,
	FieldDuration,
	FieldRoom,
	FieldRequester,
	FieldPurpose,
}

func (f Field) String() string {
	return string(f)
}
