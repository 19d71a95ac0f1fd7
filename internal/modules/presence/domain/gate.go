package domain

// AttendanceFlags is the part of the attendance record the presence gates depend on.
type AttendanceFlags struct {
	HasCheckedIn  bool
	HasCheckedOut bool
}

func CheckInEnabled(v Verdict, f AttendanceFlags) bool {
	return v.Allowed && !f.HasCheckedIn
}

func CheckOutEnabled(v Verdict, f AttendanceFlags) bool {
	return v.Allowed && f.HasCheckedIn && !f.HasCheckedOut
}
