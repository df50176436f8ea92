package job

// Type is a closed discriminator selecting which registered handler
// processes a Record.
type Type string

const (
	Fetch    Type = "fetch"
	Crawl    Type = "crawl"
	Extract  Type = "extract"
	Workflow Type = "workflow"
)

// Valid reports whether t is one of the recognized job types.
func (t Type) Valid() bool {
	switch t {
	case Fetch, Crawl, Extract, Workflow:
		return true
	default:
		return false
	}
}
