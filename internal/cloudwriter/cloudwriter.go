package cloudwriter

// CloudWriter buffers bytes for one remote object and uploads on Close.
type CloudWriter interface {
	Write(p []byte) (n int, err error)
	Close() error
}

// CloudWriterFactory creates writers bound to a bucket and object path.
type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}
