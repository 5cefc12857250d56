package entity

// Shapes served to the dashboard. They are decoupled from StatisticsResult on
// purpose; transport/http owns the mapping.

type DateRangeDTO struct {
	From      string `json:"from"`
	To        string `json:"to"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

func NewDateRangeDTO(r DateRange) DateRangeDTO {
	return DateRangeDTO{From: r.FromISO(), To: r.ToISO(), IsDefault: r.IsDefault}
}

type RouteDetail struct {
	Route     string `json:"route"`
	From      string `json:"from"`
	To        string `json:"to"`
	Frequency int    `json:"frequency"`
	LastUsed  string `json:"lastUsed"`
}

type Card[T any] struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Details []T    `json:"details"`
}

type StatsCards struct {
	MostUsedAirline        Card[NamedStat]   `json:"mostUsedAirline"`
	MostVisitedDestination Card[NamedStat]   `json:"mostVisitedDestination"`
	UniqueRoutes           Card[RouteDetail] `json:"uniqueRoutes"`
}

type TotalSum struct {
	Value          string `json:"value"`
	Currency       string `json:"currency"`
	FormattedValue string `json:"formattedValue"`
}

type StatsResponse struct {
	Data         StatsCards    `json:"data"`
	TotalFlights int           `json:"totalFlights"`
	DateRange    *DateRangeDTO `json:"dateRange,omitempty"`
	TotalSum     *TotalSum     `json:"totalSum,omitempty"`
	Cached       bool          `json:"cached,omitempty"`
	IsDemo       bool          `json:"isDemo,omitempty"`
	Error        string        `json:"error,omitempty"`
	Message      string        `json:"message,omitempty"`
}

type FilesResponse struct {
	Files       []FileInfo    `json:"files"`
	CompanyName string        `json:"companyName"`
	TotalFiles  int           `json:"totalFiles"`
	DateRange   *DateRangeDTO `json:"dateRange,omitempty"`
	Cached      bool          `json:"cached,omitempty"`
	Error       string        `json:"error,omitempty"`
	Message     string        `json:"message,omitempty"`
}

type PreviewResponse struct {
	Preview          []map[string]any `json:"preview"`
	Columns          []string         `json:"columns"`
	TotalPreviewRows int              `json:"totalPreviewRows"`
	TotalRecords     int              `json:"totalRecords"`
	AccountNo        string           `json:"accno"`
	DateRange        DateRangeDTO     `json:"dateRange"`
}

// FunctionStatsPayload is the raw body of the data-access function for the
// stats action.
type FunctionStatsPayload struct {
	Stats        StatisticsResult `json:"stats"`
	TotalFlights int              `json:"totalFlights"`
	DateRange    DateRangeDTO     `json:"dateRange"`
	Cached       bool             `json:"cached,omitempty"`
}

type SessionResponse struct {
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	UserDomain   string `json:"userDomain"`
	MappedDomain string `json:"mappedDomain"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Action    string `json:"action,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
