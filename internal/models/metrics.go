package models

import "time"

// PlatformMetrics is the aggregate snapshot served to the admin dashboard
// and periodically broadcast over the realtime channel.
type PlatformMetrics struct {
	TotalUsers      int       `json:"totalUsers"`
	TotalMatches    int       `json:"totalMatches"`
	ActiveExchanges int       `json:"activeExchanges"`
	AvgRating       float64   `json:"avgRating"`
	Host            HostStats `json:"host"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// HostStats describes the health of the machine serving the API.
type HostStats struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
}

// AdminUserRow is one row of the admin user management table.
type AdminUserRow struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	SkillsOffered int    `json:"skillsOffered"`
	SkillsWanted  int    `json:"skillsWanted"`
	Matches       int    `json:"matches"`
	Status        string `json:"status"`
	JoinDate      string `json:"joinDate"`
}
