package contracts

// IssueKind names one data quality problem
type IssueKind string

// Issue kinds in message priority order
const (
	IssueNoData             IssueKind = "no_data"
	IssueIncompleteHourly   IssueKind = "incomplete_hourly"
	IssueNoGeneration       IssueKind = "no_generation"
	IssueSparseGeneration   IssueKind = "sparse_generation"
	IssueUnusualDemandRange IssueKind = "unusual_demand_range"
)

// QualityAssessment is the diagnostic attached to a day's hourly series
type QualityAssessment struct {
	Complete        bool        `json:"complete"`
	TotalHours      int         `json:"total_hours"`
	GenerationHours int         `json:"generation_hours"`
	Issues          []IssueKind `json:"issues"`
}

// Has reports whether the assessment contains kind
func (q QualityAssessment) Has(kind IssueKind) bool {
	for _, issue := range q.Issues {
		if issue == kind {
			return true
		}
	}
	return false
}
