package capsolver

// API operations. Each is served at BaseURL + "/" + name.
const (
	opCreateTask    = "createTask"
	opGetTaskResult = "getTaskResult"
	opGetBalance    = "getBalance"
)

// getTaskResult statuses.
const (
	statusReady  = "ready"
	statusFailed = "failed"
)

// endpointURL returns the full URL of an operation.
func (c *Client) endpointURL(op string) string {
	return c.cfg.BaseURL + "/" + op
}
