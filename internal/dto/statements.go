package dto

// StatementPeriodParams defines the query range for period statements.
type StatementPeriodParams struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// StatementAsOfParams defines the as-of date for point-in-time statements.
type StatementAsOfParams struct {
	AsOf string `form:"asOf"`
}
