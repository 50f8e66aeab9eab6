package schedule

type ComputeInput struct {
	Principal float64 `json:"principal"`
	Term      int     `json:"term"`
	Rate      float64 `json:"rate"`
}

type RowDTO struct {
	Period        int     `json:"period"`
	PrincipalPaid float64 `json:"principal_paid"`
	Interest      float64 `json:"interest"`
	Balance       float64 `json:"balance"`
}

// ScheduleDTO carries the loan summary together with the per-period rows.
type ScheduleDTO struct {
	Principal     float64  `json:"principal"`
	Term          int      `json:"term"`
	AnnualRate    float64  `json:"annual_rate"`
	MonthlyRate   float64  `json:"monthly_rate"`
	Payment       float64  `json:"payment"`
	TotalInterest float64  `json:"total_interest"`
	TotalPayment  float64  `json:"total_payment"`
	FlatRate      float64  `json:"flat_rate"`
	Rows          []RowDTO `json:"rows"`
}
