package restmachinery

// OutboundRequest models a request bound for a remote job-execution service.
// URL is absolute; the driver that built the request owns endpoint
// resolution.
type OutboundRequest struct {
	Method      string
	URL         string
	Headers     map[string]string
	ReqBodyObj  interface{}
	SuccessCode int
	RespObj     interface{}
}
