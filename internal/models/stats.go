package models

// AdminStats is the platform-wide aggregate for the admin dashboard
type AdminStats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalMentors      int `json:"totalMentors"`
	TotalBookings     int `json:"totalBookings"`
	CompletedBookings int `json:"completedBookings"`
	TotalRevenue      int `json:"totalRevenue"`
}

// MentorStats summarizes a mentor's sessions
type MentorStats struct {
	TotalSessions     int      `json:"totalSessions"`
	CompletedSessions int      `json:"completedSessions"`
	Earnings          int      `json:"earnings"`
	AverageRating     *float64 `json:"averageRating,omitempty"`
	ReviewCount       int      `json:"reviewCount"`
}

// MentorDashboard is the mentor dashboard payload
type MentorDashboard struct {
	Stats    MentorStats `json:"stats"`
	Upcoming []Booking   `json:"upcoming"`
}

// MenteeDashboard is the mentee dashboard payload
type MenteeDashboard struct {
	Upcoming []Booking `json:"upcoming"`
	Past     []Booking `json:"past"`
}
