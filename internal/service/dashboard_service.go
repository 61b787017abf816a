package service

import (
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

// ContentCount is the total and published count of one content type.
type ContentCount struct {
	Total     int64
	Published int64
}

// DashboardStats feeds the dashboard landing page.
type DashboardStats struct {
	Content map[string]ContentCount
	Media   MediaStats
}

// DashboardService aggregates counters across content types.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a DashboardService instance.
func NewDashboardService(gdb *gorm.DB) *DashboardService {
	return &DashboardService{db: gdb}
}

// Stats counts every content type; keys match the admin resource names.
func (s *DashboardService) Stats() (DashboardStats, error) {
	models := []struct {
		name  string
		model any
	}{
		{"heroes", &db.HeroContent{}},
		{"events", &db.Event{}},
		{"programs", &db.Program{}},
		{"mentor-talks", &db.MentorTalk{}},
		{"team-members", &db.TeamMember{}},
		{"testimonials", &db.Testimonial{}},
		{"sections", &db.Section{}},
	}

	stats := DashboardStats{Content: make(map[string]ContentCount, len(models))}
	for _, entry := range models {
		var count ContentCount
		if err := s.db.Model(entry.model).Count(&count.Total).Error; err != nil {
			return stats, err
		}
		if err := s.db.Model(entry.model).Where("published = ?", true).Count(&count.Published).Error; err != nil {
			return stats, err
		}
		stats.Content[entry.name] = count
	}

	media, err := countMedia(s.db)
	if err != nil {
		return stats, err
	}
	stats.Media = media
	return stats, nil
}
