package messaging

import "time"

// StudentForwardedEvent is published after an admin forwards a student to a college
type StudentForwardedEvent struct {
	ShortlistID      uint      `json:"shortlistId"`
	StudentID        uint      `json:"studentId"`
	CollegeProfileID uint      `json:"collegeProfileId"`
	CollegeFinalized string    `json:"collegeFinalized"`
	CourseFinalized  string    `json:"courseFinalized"`
	Courses          []string  `json:"courses"`
	ForwardedAt      time.Time `json:"forwardedAt"`
	ForwardedBy      uint      `json:"forwardedBy,omitempty"`
}

// StudentFinalizedEvent is published when an admin records a finalized choice
type StudentFinalizedEvent struct {
	StudentID uint   `json:"studentId"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}
