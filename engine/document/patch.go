package document

// Op enumerates the supported patch operations, mirroring RFC 6902.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpMove    Op = "move"
	OpCopy    Op = "copy"
	OpTest    Op = "test"
)

// Patch is a single edit instruction targeting a pointer path inside a
// Document. Value is any JSON value and is only meaningful for add, replace,
// and test; From is only meaningful for move and copy. Construction performs
// no validation: a malformed patch surfaces, if at all, during Apply.
type Patch struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}
