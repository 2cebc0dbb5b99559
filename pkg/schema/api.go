package schema

type ResponseType string

const (
	ResponseSuccess ResponseType = "Success"
	ResponseWarning ResponseType = "Warning"
	ResponseError   ResponseType = "Error"
)

// APIResponse is the body of every job endpoint that reached the device.
type APIResponse struct {
	Type        ResponseType `json:"type"`
	Code        int          `json:"code"`
	Description string       `json:"description"`
}

// APIError is returned for requests rejected before reaching the device.
type APIError struct {
	ResponseType  ResponseType `json:"responseType"`
	ErrorMessages []string     `json:"errorMessages"`
	TraceID       string       `json:"traceId,omitempty"`
}

// ColoringModel is the JSON body accepted by the FromModel endpoint.
type ColoringModel struct {
	Red    int `json:"red"`
	Black  int `json:"black"`
	White  int `json:"white"`
	Yellow int `json:"yellow"`
	Blue   int `json:"blue"`
	Green  int `json:"green"`
}

// JobView is the diagnostic representation of a job.
type JobView struct {
	Code      int            `json:"code"`
	Dyes      map[string]int `json:"dyes"`
	CreatedAt string         `json:"createdAt"`
	State     string         `json:"state"`
}
