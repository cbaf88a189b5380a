package loaders

// Resource is a file loaded from disk along with its decoded contents.
type Resource struct {
	Name     string
	FullPath string
	DataSize uint64
	Data     interface{}
}
