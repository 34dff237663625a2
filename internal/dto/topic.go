package dto

// TopicListResponse
// @Description Selectable historical periods in display order
type TopicListResponse struct {
	Topics []string `json:"topics"`
}

// AspectDetail
// @Description Study text and modernization criteria for one aspect
type AspectDetail struct {
	Aspect   string `json:"aspect"`
	Text     string `json:"text,omitempty"`
	Criteria string `json:"criteria,omitempty"`
}

// TopicDetailResponse
// @Description Summary and per-aspect study text of a historical period
type TopicDetailResponse struct {
	Name    string         `json:"name"`
	Summary string         `json:"summary"`
	Aspects []AspectDetail `json:"aspects"`
}
