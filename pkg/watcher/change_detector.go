package watcher

// ChangeAnalysis describes what changed and what has to be reloaded before
// the scenario is compiled again
type ChangeAnalysis struct {
	NeedConfigReload bool
	NeedTableReload  bool
	ChangedFiles     []string
}

// AnalyzeChanges determines what needs to be reloaded for a batch of
// changes. The scenario is compiled once per batch.
func AnalyzeChanges(events []ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{}

	for _, event := range events {
		analysis.ChangedFiles = append(analysis.ChangedFiles, event.Paths...)

		switch event.Type {
		case ChangeTypeConfig:
			// The config may point to another input directory or year
			analysis.NeedConfigReload = true
			analysis.NeedTableReload = true

		case ChangeTypeTable:
			analysis.NeedTableReload = true
		}
	}

	return analysis
}

// Reason names the change types of the analysis for logs and reports
func (a *ChangeAnalysis) Reason() string {
	switch {
	case a.NeedConfigReload:
		return ChangeTypeConfig.String() + " changed"
	case a.NeedTableReload:
		return ChangeTypeTable.String() + " changed"
	default:
		return "nothing changed"
	}
}
