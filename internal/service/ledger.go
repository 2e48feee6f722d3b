package service

// Ledger is the single call surface the rest of the application uses. It
// orchestrates the four record ledgers; business rules live in them, never
// in the layers above.
type Ledger struct {
	Attendance    *AttendanceService
	Assessments   *AssessmentService
	Fees          *FeeService
	Announcements *AnnouncementService
}

// NewLedger wires the facade.
func NewLedger(attendance *AttendanceService, assessments *AssessmentService, fees *FeeService, announcements *AnnouncementService) *Ledger {
	return &Ledger{
		Attendance:    attendance,
		Assessments:   assessments,
		Fees:          fees,
		Announcements: announcements,
	}
}
