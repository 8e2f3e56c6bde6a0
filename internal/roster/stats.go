package roster

// Stats summarizes a roster for the dashboard header
type Stats struct {
	Total            int                  `json:"total"`
	ByStatus         map[Status]int       `json:"byStatus"`
	ByType           map[HospitalType]int `json:"byType"`
	TotalBeds        int                  `json:"totalBeds"`
	TotalDoctors     int                  `json:"totalDoctors"`
	WithAdmin        int                  `json:"withAdmin"`
	AdminCoverage    float64              `json:"adminCoverage"`
	ActiveRatio      float64              `json:"activeRatio"`
	AverageRating    float64              `json:"averageRating"`
	AverageBeds      float64              `json:"averageBeds"`
	AdditionalAdmins int                  `json:"additionalAdmins"`
}

// Summarize computes roster stats. Ratios and averages are 0 for an empty roster.
func Summarize(hospitals []Hospital) Stats {
	s := Stats{
		Total:    len(hospitals),
		ByStatus: make(map[Status]int, len(statuses)),
		ByType:   make(map[HospitalType]int, len(hospitalTypes)),
	}
	for _, st := range statuses {
		s.ByStatus[st] = 0
	}
	for _, t := range hospitalTypes {
		s.ByType[t] = 0
	}

	var ratingSum float64
	for _, h := range hospitals {
		s.ByStatus[h.Status]++
		s.ByType[h.Type]++
		s.TotalBeds += h.Beds
		s.TotalDoctors += h.Doctors
		s.AdditionalAdmins += len(h.AdditionalAdmins)
		ratingSum += h.Rating
		if HasAdmin(h) {
			s.WithAdmin++
		}
	}

	s.AdminCoverage = ratio(float64(s.WithAdmin), s.Total)
	s.ActiveRatio = ratio(float64(s.ByStatus[StatusActive]), s.Total)
	s.AverageRating = ratio(ratingSum, s.Total)
	s.AverageBeds = ratio(float64(s.TotalBeds), s.Total)
	return s
}

func ratio(num float64, den int) float64 {
	if den == 0 {
		return 0
	}
	return num / float64(den)
}
