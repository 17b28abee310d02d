package domain

import "fmt"

// MilestoneStatus is the progress state of an ultrasound scan
type MilestoneStatus string

const (
	MilestoneCompleted MilestoneStatus = "completed"
	MilestoneCurrent   MilestoneStatus = "current"
	MilestoneUpcoming  MilestoneStatus = "upcoming"
)

// Pregnancy week bounds accepted by the milestone schedule
const (
	MinPregnancyWeek = 1
	MaxPregnancyWeek = 42

	// currentWindowWeeks is how far ahead a scan counts as current
	currentWindowWeeks = 4
)

// UltrasoundMilestone is one scan of the standard schedule
type UltrasoundMilestone struct {
	Week   int             `json:"week"`
	Title  string          `json:"title"`
	Status MilestoneStatus `json:"status"`
}

var scanSchedule = []struct {
	week  int
	title string
}{
	{12, "First Trimester Scan"},
	{20, "Anatomy Scan"},
	{24, "Growth Check"},
	{28, "Third Trimester Scan"},
	{32, "Growth Assessment"},
	{36, "Final Position Check"},
}

// MilestonesForWeek returns the scan schedule with statuses for the given
// pregnancy week. Scans before the week are completed; the next scan is
// current if it falls within the next four weeks; the rest are upcoming.
func MilestonesForWeek(week int) ([]UltrasoundMilestone, error) {
	if week < MinPregnancyWeek || week > MaxPregnancyWeek {
		return nil, fmt.Errorf("%w: week must be between %d and %d", ErrValidation, MinPregnancyWeek, MaxPregnancyWeek)
	}

	milestones := make([]UltrasoundMilestone, 0, len(scanSchedule))
	currentAssigned := false
	for _, scan := range scanSchedule {
		status := MilestoneUpcoming
		switch {
		case scan.week < week:
			status = MilestoneCompleted
		case !currentAssigned && scan.week-week < currentWindowWeeks:
			status = MilestoneCurrent
			currentAssigned = true
		}
		if scan.week >= week {
			currentAssigned = true
		}
		milestones = append(milestones, UltrasoundMilestone{
			Week:   scan.week,
			Title:  scan.title,
			Status: status,
		})
	}
	return milestones, nil
}
