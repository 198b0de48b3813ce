package dto

// Query parameter shapes for the companion API, bound and validated by
// the echo binder/validator.

type ListBusinessesRequest struct {
	State string `query:"state" validate:"omitempty,len=2"`
	City  string `query:"city"`
	Skip  int    `query:"skip" validate:"gte=0"`
	Limit int    `query:"limit" validate:"gte=0,lte=1000"`
}

type ViewportRequest struct {
	South float64 `query:"south" validate:"gte=-90,lte=90"`
	North float64 `query:"north" validate:"gte=-90,lte=90"`
	West  float64 `query:"west" validate:"gte=-180,lte=180"`
	East  float64 `query:"east" validate:"gte=-180,lte=180"`
	Limit int     `query:"limit" validate:"gte=0,lte=5000"`
}

type SearchRequest struct {
	Query string `query:"q" validate:"required,min=1"`
	Skip  int    `query:"skip" validate:"gte=0"`
	Limit int    `query:"limit" validate:"gte=0,lte=100"`
}

type ListReviewsRequest struct {
	Skip  int `query:"skip" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=1000"`
}

type AdminLoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type TimelineRequest struct {
	Period    string `query:"period" validate:"omitempty,oneof=day week month year"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}
