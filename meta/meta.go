package meta

// APIVersion represents the wire format version with which this version of
// the qjob client is compatible.
const APIVersion = "github.com/rfonseca/qjob"

// TypeMeta represents metadata about a serialized resource type to help
// readers and writers mutually head off potential confusion over types (and
// versions thereof) written to disk or sent over the wire.
type TypeMeta struct {
	// Kind specifies the type of a serialized resource.
	Kind string `json:"kind,omitempty"`
	// APIVersion specifies the version of the qjob wire format with which the
	// client having serialized the resource is compatible.
	APIVersion string `json:"apiVersion,omitempty"`
}
