package dto

import "time"

type RecordOutput struct {
	Day           string
	HasCheckedIn  bool
	HasCheckedOut bool
	InOvertime    bool
	CheckInTime   string
	CheckOutTime  string
}

type GatesOutput struct {
	CheckIn     bool
	CheckOut    bool
	Overtime    bool
	OvertimeEnd bool
}

type SectionsOutput struct {
	ShowCheckIn     bool
	CheckInNote     string
	ShowCheckOut    bool
	CheckOutNote    string
	ShowOvertime    bool
	ShowOvertimeEnd bool
}

type StatusOutput struct {
	Record      RecordOutput
	Gates       GatesOutput
	Sections    SectionsOutput
	LateStatus  string
	Late        bool
	Explanation string
	ServerNow   time.Time
}

type SubmitOutput struct {
	Kind            string
	Message         string
	RequestID       string
	Warning         string
	RefreshPresence bool
	Status          StatusOutput
}

type JournalEntry struct {
	ID        string
	RequestID string
	Kind      string
	At        time.Time
	OK        bool
	Message   string
}
