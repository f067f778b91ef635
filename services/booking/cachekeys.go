package booking

import (
	"fmt"

	"crewbook/models"
)

func detailsKey(id string) string {
	return "booking:details:" + id
}

func professionalListKey(professionalID string, status *models.BookingStatus) string {
	return fmt.Sprintf("booking:list:professional:%s:%s", professionalID, statusSegment(status))
}

func plannerListKey(plannerID string, status *models.BookingStatus) string {
	return fmt.Sprintf("booking:list:planner:%s:%s", plannerID, statusSegment(status))
}

func professionalListPattern(professionalID string) string {
	return "booking:list:professional:" + escapeGlob(professionalID) + ":*"
}

func plannerListPattern(plannerID string) string {
	return "booking:list:planner:" + escapeGlob(plannerID) + ":*"
}

func profileKey(role models.Role, id string) string {
	return fmt.Sprintf("profile:%s:%s", role, id)
}

func statusSegment(status *models.BookingStatus) string {
	if status == nil {
		return "all"
	}
	return string(*status)
}

// escapeGlob quotes glob metacharacters so an id is matched literally.
func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
