package catalog

// Direction names one document of an endpoint.
type Direction string

const (
	Request  Direction = "request"
	Response Direction = "response"
)

// QueryParam is a query parameter as described by the endpoint page.
type QueryParam struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// Source is the raw input of one endpoint.
type Source struct {
	// Endpoint is the endpoint name, normally its directory name
	Endpoint string
	Method   string
	// Link is the URL template, with {name} placeholders for URL parameters
	Link        string
	QueryParams []QueryParam
	// Errors maps HTTP status codes to messages
	Errors map[string]string
	// Request and Response hold the raw documents; empty means absent
	Request  string
	Response string
}

// Document returns the raw document for the direction.
func (s *Source) Document(d Direction) string {
	if d == Request {
		return s.Request
	}
	return s.Response
}

// directions is the walk order within one endpoint.
var directions = []Direction{Request, Response}
