package model

// Niveaux de criticité des dépendances
const (
	LevelCritique = "critique"
	LevelModeree  = "modérée"
	LevelMineure  = "mineure"
)

// Sources de vélocité supportées
const (
	SourceGitHub = "github"
	SourceTrello = "trello"
	SourceJira   = "jira"
	SourceNotion = "notion"
)

// Dependency représente une dépendance technique déclarée par l'utilisateur
type Dependency struct {
	Name  string `json:"name" binding:"required"`
	Level string `json:"level"` // critique, modérée ou mineure
}

// IsCritical indique si la dépendance est critique
func (d Dependency) IsCritical() bool {
	return d.Level == LevelCritique
}

// TeamMember représente un membre de l'équipe avec sa capacité disponible
type TeamMember struct {
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"` // en % (0-100)
}

// VelocitySummary est le résumé normalisé de vélocité, quelle que soit la source
type VelocitySummary struct {
	Source            string  `json:"source"`
	UnitsPerWeek      float64 `json:"avg_per_week"`
	AvgResolutionDays float64 `json:"avg_duration"`
	TotalClosed       int     `json:"total_closed"`
	WeeksAnalyzed     int     `json:"weeks_analyzed"`
}

// EstimationRequest représente le payload d'entrée d'une estimation
type EstimationRequest struct {
	Feature         string           `json:"feature" binding:"required"`
	StartDate       string           `json:"start_date"` // format 2006-01-02
	TeamCapacity    float64          `json:"team_capacity"`
	TeamAbsences    int              `json:"team_absences"`
	ExcludeWeekends bool             `json:"exclude_weekends"`
	ExcludeHolidays bool             `json:"exclude_holidays"` // jours fériés français
	VelocitySource  string           `json:"velocity_source,omitempty"`
	Velocity        *VelocitySummary `json:"velocity,omitempty"`
	TeamMembers     []TeamMember     `json:"team_members,omitempty"`
	Dependencies    []Dependency     `json:"dependencies,omitempty"`
	Risks           string           `json:"risks,omitempty"`
	Sector          string           `json:"sector,omitempty"`
	Stack           string           `json:"stack,omitempty"`
	ClientType      string           `json:"client_type,omitempty"`
	Constraints     string           `json:"constraints,omitempty"`
}

// Task représente une tâche technique extraite de la réponse du modèle
type Task struct {
	Name string  `json:"name"`
	Days float64 `json:"days"`
}

// ScoreFactor est une ligne du détail du score de confiance
type ScoreFactor struct {
	Label string `json:"label"`
	Delta int    `json:"delta"`
}

// BiasResult est le signal de biais historique calculé sur les feedbacks
type BiasResult struct {
	AveragePercent float64 `json:"average_percent"`
	Trend          string  `json:"trend"` // "trop optimiste" ou "trop pessimiste"
	Count          int     `json:"count"`
}

// EstimationResult est le résultat structuré du pipeline d'estimation
type EstimationResult struct {
	Tasks           []Task        `json:"tasks"`
	TotalDays       float64       `json:"total_days"`
	BufferDays      int           `json:"buffer_days"`
	DeliveryDate    string        `json:"delivery_date,omitempty"` // jj/mm/aaaa
	ConfidenceScore int           `json:"confidence_score"`
	ScoreDetails    []ScoreFactor `json:"score_details"`
	AIText          string        `json:"ai_text"`
	AICorrection    string        `json:"ai_correction,omitempty"`
}
