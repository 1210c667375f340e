package services

import (
	"math"
	"time"

	"github.com/jogivikas/skill-exchange/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// AdminServiceProvider defines the interface for admin dashboard services.
type AdminServiceProvider interface {
	GetMetrics() (models.PlatformMetrics, error)
	ListUsers() ([]models.AdminUserRow, error)
}

// AdminService aggregates platform-wide figures for the admin dashboard.
type AdminService struct {
	users    UserServiceProvider
	requests RequestServiceProvider
}

// NewAdminService creates a new AdminService.
func NewAdminService(users UserServiceProvider, requests RequestServiceProvider) *AdminService {
	return &AdminService{users: users, requests: requests}
}

// GetMetrics computes the current platform snapshot plus host health.
func (s *AdminService) GetMetrics() (models.PlatformMetrics, error) {
	users, err := s.users.GetAllUsers()
	if err != nil {
		return models.PlatformMetrics{}, err
	}

	accepted, err := s.requests.CountAccepted()
	if err != nil {
		return models.PlatformMetrics{}, err
	}

	var avgRating float64
	if len(users) > 0 {
		var sum float64
		for _, u := range users {
			sum += u.Rating
		}
		avgRating = math.Round(sum/float64(len(users))*10) / 10
	}

	return models.PlatformMetrics{
		TotalUsers:      len(users),
		TotalMatches:    accepted,
		ActiveExchanges: accepted,
		AvgRating:       avgRating,
		Host:            collectHostStats(),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// collectHostStats samples host health. Any probe failure leaves the field
// zeroed; the snapshot itself never fails on it.
func collectHostStats() models.HostStats {
	var stats models.HostStats

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = math.Round(percents[0]*10) / 10
	} else if err != nil {
		log.Warn().Err(err).Msg("Failed to sample CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = math.Round(vm.UsedPercent*10) / 10
	} else {
		log.Warn().Err(err).Msg("Failed to sample memory usage")
	}

	if uptime, err := host.Uptime(); err == nil {
		stats.UptimeSeconds = uptime
	}

	return stats
}

// ListUsers returns the per-user summary rows for the admin user table.
func (s *AdminService) ListUsers() ([]models.AdminUserRow, error) {
	users, err := s.users.GetAllUsers()
	if err != nil {
		return nil, err
	}

	rows := make([]models.AdminUserRow, 0, len(users))
	for _, u := range users {
		matches, err := s.requests.CountAcceptedFor(u.ID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", u.ID).Msg("Failed to count accepted exchanges")
		}
		rows = append(rows, models.AdminUserRow{
			ID:            u.ID,
			Name:          u.FullName,
			Email:         u.Email,
			SkillsOffered: len(u.SkillsOffered),
			SkillsWanted:  len(u.SkillsWanted),
			Matches:       matches,
			Status:        u.Status,
			JoinDate:      u.CreatedAt.Format("2006-01-02"),
		})
	}
	return rows, nil
}
