package model

type CaseTypeCount struct {
	CaseType string `json:"case_type"`
	Total    int64  `json:"total"`
}

type CaseStatusCount struct {
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

type MonthlyCaseCount struct {
	Month string `json:"month"` // YYYY-MM
	Total int64  `json:"total"`
}

// CaseStatistics backs the public case statistics page.
type CaseStatistics struct {
	Year     int                `json:"year"`
	Total    int64              `json:"total"`
	ByType   []CaseTypeCount    `json:"by_type"`
	ByStatus []CaseStatusCount  `json:"by_status"`
	ByMonth  []MonthlyCaseCount `json:"by_month"`
}
