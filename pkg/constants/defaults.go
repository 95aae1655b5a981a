package constants

// Scheduler settings.
const (
	// ScheduleCheckInterval is how often (seconds) the scheduler polls for due jobs.
	ScheduleCheckInterval = 60
	// ScheduleMaxRuntimeMins caps a single scheduled job run.
	ScheduleMaxRuntimeMins = 10
)

// Certification lifecycle settings.
const (
	// CertValidityYears is the standard certification cycle length.
	CertValidityYears = 3
	// CertExpiryWarningDays is the window in which an active certification
	// is reported as expiring soon.
	CertExpiryWarningDays = 90
	// SurveillanceDueMonths is how long after certification (or the last
	// surveillance) the next surveillance audit becomes due.
	SurveillanceDueMonths = 11
)

// Upload settings.
const (
	DefaultUploadDir = "./uploads"
	MaxUploadBytes   = 25 << 20 // 25 MB
	DefaultListLimit = 50
	MaxListLimit     = 500
)
