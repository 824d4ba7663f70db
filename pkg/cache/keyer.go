package cache

// GraphKeyOpts holds the settings that change how a geometry file decodes.
type GraphKeyOpts struct {
	// Schema is bumped whenever the decoded graph encoding changes.
	Schema int `json:"schema"`
}

// GraphSchema is the current decoded graph encoding version.
const GraphSchema = 1

// Keyer builds cache keys.
type Keyer interface {
	// GraphKey returns the key for the graph decoded from a geometry file
	// whose content hashes to contentHash.
	GraphKey(contentHash string, opts GraphKeyOpts) string
}

// DefaultKeyer builds keys of the form "graph:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(contentHash string, opts GraphKeyOpts) string {
	return hashKey("graph", contentHash, opts)
}
